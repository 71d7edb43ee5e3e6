package api

import (
	"context"
	"strings"
)

// LiveChecker reports which stream handles are currently live.
type LiveChecker interface {
	Live(ctx context.Context, handles []string) LiveStatus
}

type LiveStatus struct {
	OK       bool               `json:"ok"`
	Reason   string             `json:"reason,omitempty"`
	Live     map[string]bool    `json:"live"`
	Channels map[string]Channel `json:"channels"`
}

type Channel struct {
	Title       string `json:"title"`
	Game        string `json:"game"`
	StartedAt   string `json:"started_at"`
	ViewerCount int    `json:"viewer_count"`
}

// NormalizeHandles trims, lower-cases and de-duplicates handles, dropping empty ones.
func NormalizeHandles(handles []string) []string {
	seen := make(map[string]bool, len(handles))
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// offline has every handle present and false.
func offline(handles []string) map[string]bool {
	live := make(map[string]bool, len(handles))
	for _, h := range handles {
		live[h] = false
	}
	return live
}

func unavailable(reason string) LiveStatus {
	return LiveStatus{OK: false, Reason: reason, Live: map[string]bool{}, Channels: map[string]Channel{}}
}
