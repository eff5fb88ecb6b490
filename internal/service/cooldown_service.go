package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// CooldownTracker keeps the last-used timestamp per (command, user) pair and
// gates repeat use of a command until its configured duration has elapsed.
// State lives only in process memory; a restart clears all cooldowns.
type CooldownTracker struct {
	durations map[string]time.Duration
	now       func() time.Time

	mu       sync.Mutex
	lastUsed map[string]map[string]time.Time
}

// CooldownOutcome is the result of a CheckAndMark call. Remaining is only
// meaningful when Allowed is false, truncated to whole seconds for display.
type CooldownOutcome struct {
	Allowed   bool
	Remaining time.Duration
}

// CommandCooldown is one row of a user's read-only cooldown report.
type CommandCooldown struct {
	Command   string        `json:"command"`
	Ready     bool          `json:"ready"`
	Remaining time.Duration `json:"remaining_seconds"`
}

func NewCooldownTracker(durations map[string]time.Duration) *CooldownTracker {
	t := &CooldownTracker{
		durations: make(map[string]time.Duration, len(durations)),
		now:       time.Now,
		lastUsed:  make(map[string]map[string]time.Time, len(durations)),
	}
	for command, duration := range durations {
		t.durations[command] = duration
		t.lastUsed[command] = make(map[string]time.Time)
	}
	return t
}

// CheckAndMark atomically checks whether userID may use command and, if so,
// records the use. The check and the write happen under one lock so two
// concurrent requests cannot both pass. A user whose cooldown has elapsed
// exactly is allowed.
func (t *CooldownTracker) CheckAndMark(command, userID string) CooldownOutcome {
	duration, ok := t.durations[command]
	if !ok {
		// Unknown commands carry no cooldown.
		return CooldownOutcome{Allowed: true}
	}

	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.lastUsed[command][userID]; ok {
		elapsed := now.Sub(last)
		if elapsed < duration {
			remaining := (duration - elapsed).Truncate(time.Second)
			return CooldownOutcome{Allowed: false, Remaining: remaining}
		}
	}

	t.lastUsed[command][userID] = now
	return CooldownOutcome{Allowed: true}
}

// Status reports the remaining cooldown per command for userID without
// consuming anything. Rows come back in a stable command order.
func (t *CooldownTracker) Status(userID string) []CommandCooldown {
	now := t.now()

	commands := make([]string, 0, len(t.durations))
	for command := range t.durations {
		commands = append(commands, command)
	}
	sort.Strings(commands)

	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]CommandCooldown, 0, len(commands))
	for _, command := range commands {
		row := CommandCooldown{Command: command, Ready: true}
		if last, ok := t.lastUsed[command][userID]; ok {
			if remaining := t.durations[command] - now.Sub(last); remaining > 0 {
				row.Ready = false
				row.Remaining = remaining.Truncate(time.Second)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// StartPruning periodically drops entries whose cooldown has fully elapsed so
// the map does not grow with every user ever seen. Correctness never depends
// on pruning; elapsed entries already read as ready.
func (t *CooldownTracker) StartPruning(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.prune()
			}
		}
	}()
}

func (t *CooldownTracker) prune() {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	for command, users := range t.lastUsed {
		duration := t.durations[command]
		for userID, last := range users {
			if now.Sub(last) >= duration {
				delete(users, userID)
			}
		}
	}
}

// FormatDuration renders d as a compound duration like "1d 1h 1m 1s",
// omitting zero-valued units; a zero or negative duration reads "0s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return "0s"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
