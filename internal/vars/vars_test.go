package vars

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitShort(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "da15c174cd2ada1ad247906536c101e8f6799def"
	assert.Equal(t, "da15c17", CommitShort())

	Commit = "abc"
	assert.Equal(t, "abc", CommitShort())
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf)

	assert.Contains(t, buf.String(), "name:     dzstatus")
	assert.Contains(t, buf.String(), "version:  "+Version)
}

func TestVer(t *testing.T) {
	info := Ver()
	assert.Equal(t, Name, info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, URL, info.URL)
}
