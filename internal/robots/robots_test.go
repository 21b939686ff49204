package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrs-quests-scraper/internal/observability"
)

func newServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsAllowed(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusOK, "User-agent: *\nDisallow: /w/Special:\n", &hits)
	rc := NewCache(time.Hour, time.Second, "osrs-quests-scraper/1.0", observability.Discard())
	ctx := context.Background()

	allowed, err := rc.IsAllowed(ctx, srv.URL+"/w/Quests/List")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = rc.IsAllowed(ctx, srv.URL+"/w/Special:Random")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "robots.txt should be cached per host")
}

func TestIsAllowedMissingRobots(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusNotFound, "", &hits)
	rc := NewCache(time.Hour, time.Second, "bot", observability.Discard())

	allowed, err := rc.IsAllowed(context.Background(), srv.URL+"/w/Quests/List")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestIsAllowedUnreachable(t *testing.T) {
	rc := NewCache(time.Hour, 200*time.Millisecond, "bot", observability.Discard())

	allowed, err := rc.IsAllowed(context.Background(), "http://127.0.0.1:1/w/Quests/List")
	require.NoError(t, err)
	assert.True(t, allowed, "network errors are treated as allowed")
}

func TestIsAllowedInvalidURL(t *testing.T) {
	rc := NewCache(time.Hour, time.Second, "bot", observability.Discard())

	_, err := rc.IsAllowed(context.Background(), "not a url")
	assert.Error(t, err)
}
