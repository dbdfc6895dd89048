package game

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/dzstatus/internal/config"
)

func TestProbeSilentServerTimesOut(t *testing.T) {
	// listener that never answers
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	prober := NewProber(config.A2S{Timeout: 100 * time.Millisecond, BufferSize: 1400})

	start := time.Now()
	probe, err := prober.Probe("127.0.0.1", port)

	assert.Error(t, err)
	assert.Nil(t, probe)
	assert.Less(t, time.Since(start), 5*time.Second)
}
