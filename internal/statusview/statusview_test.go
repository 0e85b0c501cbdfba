package statusview

import (
	"strings"
	"testing"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/status"
)

func TestBanner(t *testing.T) {
	tests := []struct {
		name string
		snap status.Snapshot
		want string
		tone Tone
	}{
		{"offline empty", status.Snapshot{}, "You're offline", ToneOffline},
		{"offline one", status.Snapshot{Pending: 1}, "You're offline · 1 change pending", ToneOffline},
		{"offline many", status.Snapshot{Pending: 3}, "You're offline · 3 changes pending", ToneOffline},
		{"reconnected syncing", status.Snapshot{Online: true, Reconnected: true, Syncing: true, Pending: 2}, "Syncing 2 changes...", ToneReconnected},
		{"reconnected synced", status.Snapshot{Online: true, Reconnected: true}, "Back online · all changes synced", ToneReconnected},
		{"online quiet", status.Snapshot{Online: true, Pending: 4}, "", ToneNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tone := Banner(tt.snap)
			if got != tt.want || tone != tt.tone {
				t.Errorf("Banner() = (%q, %v), want (%q, %v)", got, tone, tt.want, tt.tone)
			}
		})
	}
}

func TestBarRendersSnapshot(t *testing.T) {
	b := NewBar("main")
	b.Set(status.Snapshot{Pending: 2})

	text := b.GetText(true)
	for _, want := range []string{"main", "offline", "2 queued", "You're offline"} {
		if !strings.Contains(text, want) {
			t.Errorf("bar %q missing %q", text, want)
		}
	}

	b.Set(status.Snapshot{Online: true, LastSync: time.Now(), LastFailed: 1})
	b.SetFlash("nothing to sync")
	text = b.GetText(true)
	for _, want := range []string{"online", "1 failed", "nothing to sync"} {
		if !strings.Contains(text, want) {
			t.Errorf("bar %q missing %q", text, want)
		}
	}
	if strings.Contains(text, "offline") {
		t.Errorf("online bar still says offline: %q", text)
	}
}

func TestQueueTableRows(t *testing.T) {
	q := NewQueueTable()
	if got := q.GetRowCount(); got != 2 {
		t.Fatalf("empty table rows = %d, want header + placeholder", got)
	}

	q.Update([]outbox.Operation{
		{ID: "a", Timestamp: time.Now(), Kind: outbox.KindInsert, Collection: "gifts", Payload: map[string]any{"x": 1}},
		{ID: "b", Timestamp: time.Now(), Kind: outbox.KindDelete, Collection: "people", RecordID: "p1"},
	})
	if got := q.GetRowCount(); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if got := q.GetCell(2, 2).Text; got != "people/p1" {
		t.Errorf("target cell = %q, want people/p1", got)
	}
}

func TestRenderQR(t *testing.T) {
	out, err := RenderQR("https://gifts.example.com/?invite=abc123")
	if err != nil {
		t.Fatalf("RenderQR() error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("QR has %d lines, want a full code", len(lines))
	}
	if !strings.ContainsAny(out, "█▀▄") {
		t.Error("QR output has no blocks")
	}
}
