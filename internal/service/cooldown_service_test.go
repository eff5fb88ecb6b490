package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(durations map[string]time.Duration, start time.Time) (*CooldownTracker, *time.Time) {
	tracker := NewCooldownTracker(durations)
	current := start
	tracker.now = func() time.Time { return current }
	return tracker, &current
}

func TestCooldownTracker_FirstUseAllowed(t *testing.T) {
	tracker, _ := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	outcome := tracker.CheckAndMark("jviews", "user-1")
	assert.True(t, outcome.Allowed)
}

func TestCooldownTracker_SecondUseWithinWindowDenied(t *testing.T) {
	tracker, now := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)

	*now = now.Add(90 * time.Second)
	outcome := tracker.CheckAndMark("jviews", "user-1")
	require.False(t, outcome.Allowed)
	assert.Greater(t, outcome.Remaining, time.Duration(0))
	assert.Less(t, outcome.Remaining, 5*time.Minute)
	assert.Equal(t, 210*time.Second, outcome.Remaining)
}

func TestCooldownTracker_DenialDoesNotExtendCooldown(t *testing.T) {
	tracker, now := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)

	// A denied attempt must not refresh the stored timestamp.
	*now = now.Add(4 * time.Minute)
	require.False(t, tracker.CheckAndMark("jviews", "user-1").Allowed)

	*now = now.Add(time.Minute)
	assert.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
}

func TestCooldownTracker_ExactBoundaryAllowed(t *testing.T) {
	tracker, now := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)

	*now = now.Add(5 * time.Minute)
	assert.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed, "elapsed == duration must be allowed")
}

func TestCooldownTracker_CommandsIndependent(t *testing.T) {
	tracker, _ := newTestTracker(map[string]time.Duration{
		"jviews": 5 * time.Minute,
		"jlikes": 5 * time.Minute,
	}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
	assert.True(t, tracker.CheckAndMark("jlikes", "user-1").Allowed)
	assert.False(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
}

func TestCooldownTracker_UsersIndependent(t *testing.T) {
	tracker, _ := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
	assert.True(t, tracker.CheckAndMark("jviews", "user-2").Allowed)
}

func TestCooldownTracker_ConcurrentSameKeyOnlyOnePasses(t *testing.T) {
	tracker := NewCooldownTracker(map[string]time.Duration{"jviews": 5 * time.Minute})

	const attempts = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.CheckAndMark("jviews", "user-1").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed, "exactly one concurrent request may pass the cooldown check")
}

func TestCooldownTracker_StatusDoesNotMutate(t *testing.T) {
	tracker, now := newTestTracker(map[string]time.Duration{
		"jviews": 5 * time.Minute,
		"jlikes": 10 * time.Minute,
	}, time.Unix(1000, 0))

	rows := tracker.Status("user-1")
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.True(t, row.Ready, "never-used command must read ready")
	}

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
	*now = now.Add(time.Minute)

	for n := 0; n < 5; n++ {
		rows = tracker.Status("user-1")
	}
	require.Len(t, rows, 2)
	assert.Equal(t, "jlikes", rows[0].Command)
	assert.True(t, rows[0].Ready)
	assert.Equal(t, "jviews", rows[1].Command)
	assert.False(t, rows[1].Ready)
	assert.Equal(t, 4*time.Minute, rows[1].Remaining)

	// Repeated status reads must not have consumed anything.
	assert.False(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
}

func TestCooldownTracker_PruneDropsElapsedEntries(t *testing.T) {
	tracker, now := newTestTracker(map[string]time.Duration{"jviews": 5 * time.Minute}, time.Unix(1000, 0))

	require.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
	*now = now.Add(time.Minute)
	require.True(t, tracker.CheckAndMark("jviews", "user-2").Allowed)

	*now = now.Add(4 * time.Minute)
	tracker.prune()

	tracker.mu.Lock()
	_, user1Present := tracker.lastUsed["jviews"]["user-1"]
	_, user2Present := tracker.lastUsed["jviews"]["user-2"]
	tracker.mu.Unlock()

	assert.False(t, user1Present, "elapsed entry should be pruned")
	assert.True(t, user2Present, "active entry must survive pruning")

	// Pruning never changes observable behavior.
	assert.False(t, tracker.CheckAndMark("jviews", "user-2").Allowed)
	assert.True(t, tracker.CheckAndMark("jviews", "user-1").Allowed)
}

func TestCooldownTracker_StartPruningStopsWithContext(t *testing.T) {
	tracker := NewCooldownTracker(map[string]time.Duration{"jviews": time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	tracker.StartPruning(ctx, time.Millisecond)
	cancel()
	// Nothing to assert beyond not panicking or leaking; give the goroutine a
	// beat to observe cancellation.
	time.Sleep(5 * time.Millisecond)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{-5, "0s"},
		{59, "59s"},
		{60, "1m"},
		{61, "1m 1s"},
		{3600, "1h"},
		{3661, "1h 1m 1s"},
		{86400, "1d"},
		{90061, "1d 1h 1m 1s"},
		{172800, "2d"},
	}
	for _, tc := range cases {
		got := FormatDuration(time.Duration(tc.seconds) * time.Second)
		assert.Equal(t, tc.want, got, "seconds=%d", tc.seconds)
	}
}
