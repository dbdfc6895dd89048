package battlemetrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/dzstatus/internal/config"
)

func testConfig(baseURL string) config.Upstream {
	return config.Upstream{
		URL:      baseURL,
		Game:     "dayz",
		PageSize: 100,
	}
}

func TestSearchURL(t *testing.T) {
	c := New(testConfig("https://api.battlemetrics.com/"))

	u, err := url.Parse(c.SearchURL("172.96.164.77"))
	require.NoError(t, err)

	assert.Equal(t, "api.battlemetrics.com", u.Host)
	assert.Equal(t, "/servers", u.Path)
	assert.Equal(t, "dayz", u.Query().Get("filter[game]"))
	assert.Equal(t, "172.96.164.77", u.Query().Get("filter[search]"))
	assert.Equal(t, "100", u.Query().Get("page[size]"))
}

func TestSearchDecodesCandidates(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"type":"server","id":"1","attributes":{"ip":"1.2.3.4","port":2302,"portQuery":"2303","status":"online",
			 "players":12,"maxPlayers":60,"name":"Crew","map":"chernarusplus",
			 "addresses":["1.2.3.4:2302",7,null],"details":{"map":"enoch","addresses":"bogus"}}},
			{"type":"server","id":"2","attributes":{"ip":"1.2.3.4","port":null,"status":"dead"}}
		],"links":{}}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = "secret"
	c := New(cfg)

	set, err := c.Search(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.Len(t, set, 2)

	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))
	assert.Equal(t, "Bearer secret", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "1.2.3.4", gotReq.URL.Query().Get("filter[search]"))

	a := set[0].Attributes
	port, ok := a.Port.Int()
	assert.True(t, ok)
	assert.Equal(t, 2302, port)
	portQuery, ok := a.PortQuery.Int()
	assert.True(t, ok)
	assert.Equal(t, 2303, portQuery)
	assert.Equal(t, []string{"1.2.3.4:2302"}, []string(a.Addresses))
	require.NotNil(t, a.Details)
	assert.Empty(t, a.Details.Addresses)
	assert.Equal(t, "enoch", *a.Details.Map)

	_, ok = set[1].Attributes.Port.Int()
	assert.False(t, ok)
	assert.Nil(t, set[1].Attributes.Players.Ptr())
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Search(context.Background(), "1.2.3.4")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestSearchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Search(context.Background(), "1.2.3.4")
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestSearchRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Rate = 0.01
	cfg.Burst = 1
	c := New(cfg)

	_, err := c.Search(context.Background(), "1.2.3.4")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Search(ctx, "1.2.3.4")
	assert.Error(t, err, "second request must wait for the token bucket and give up with the context")
}
