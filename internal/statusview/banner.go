// Package statusview renders the status surface in a terminal.
package statusview

import (
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/status"
)

// Tone picks the banner colour.
type Tone int

const (
	ToneNone Tone = iota
	ToneOffline
	ToneReconnected
)

// Banner returns the notice for snap and its tone. The text is empty when
// there is nothing to announce.
func Banner(snap status.Snapshot) (string, Tone) {
	switch {
	case !snap.Online:
		if snap.Pending > 0 {
			return fmt.Sprintf("You're offline · %s pending", changes(snap.Pending)), ToneOffline
		}
		return "You're offline", ToneOffline
	case snap.Reconnected && snap.Syncing:
		return fmt.Sprintf("Syncing %s...", changes(snap.Pending)), ToneReconnected
	case snap.Reconnected:
		return "Back online · all changes synced", ToneReconnected
	}
	return "", ToneNone
}

func changes(n int) string {
	if n == 1 {
		return "1 change"
	}
	return fmt.Sprintf("%d changes", n)
}
