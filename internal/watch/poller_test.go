package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/woozymasta/dzstatus/internal/models"
)

type scriptedResolver struct {
	mu       sync.Mutex
	statuses []models.ResolvedStatus
	queries  []models.Query
}

func (r *scriptedResolver) Resolve(_ context.Context, q models.Query) models.ResolvedStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queries = append(r.queries, q)
	s := r.statuses[0]
	if len(r.statuses) > 1 {
		r.statuses = r.statuses[1:]
	}

	return s
}

func (r *scriptedResolver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func intPtr(v int) *int { return &v }

func fixedQuery() models.Query { return models.Query{IP: "1.2.3.4", Port: 2312} }

func TestPollDetectsChanges(t *testing.T) {
	online := models.ResolvedStatus{Online: true, Players: intPtr(5), Map: "Chernarus", IP: "1.2.3.4", Port: 2312, Note: "ok"}
	morePlayers := online
	morePlayers.Players = intPtr(6)
	offline := models.ResolvedStatus{Players: intPtr(0), Map: "Chernarus", IP: "1.2.3.4", Port: 2312, Note: "down"}

	r := &scriptedResolver{statuses: []models.ResolvedStatus{online, online, morePlayers, offline}}

	var changes []models.ResolvedStatus
	p := New(r, fixedQuery, time.Minute, func(s models.ResolvedStatus) { changes = append(changes, s) })

	ctx := context.Background()
	assert.True(t, p.Poll(ctx), "first poll always reports")
	assert.False(t, p.Poll(ctx), "identical status is not a change")
	assert.True(t, p.Poll(ctx))
	assert.True(t, p.Poll(ctx))

	assert.Len(t, changes, 3)
	assert.False(t, changes[2].Online)
}

func TestPollFollowsQuery(t *testing.T) {
	r := &scriptedResolver{statuses: []models.ResolvedStatus{{Map: "Chernarus"}}}
	port := 2312
	p := New(r, func() models.Query { return models.Query{IP: "1.2.3.4", Port: port} }, time.Minute, nil)

	p.Poll(context.Background())
	port = 2402
	p.Poll(context.Background())

	assert.Equal(t, 2312, r.queries[0].Port)
	assert.Equal(t, 2402, r.queries[1].Port)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := &scriptedResolver{statuses: []models.ResolvedStatus{{Map: "Chernarus"}}}
	p := New(r, fixedQuery, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
