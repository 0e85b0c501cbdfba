package statusview

import (
	"fmt"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/status"
	"github.com/rivo/tview"
)

// Bar displays the connectivity banner and queue counters.
type Bar struct {
	*tview.TextView
	profile string
	snap    status.Snapshot
	flash   string
}

// NewBar creates a status bar for a profile.
func NewBar(profile string) *Bar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	b := &Bar{TextView: tv, profile: profile}
	b.render()
	return b
}

// Set shows a new snapshot.
func (b *Bar) Set(snap status.Snapshot) {
	b.snap = snap
	b.render()
}

// SetFlash sets a temporary message; empty clears it.
func (b *Bar) SetFlash(msg string) {
	b.flash = msg
	b.render()
}

func (b *Bar) render() {
	b.Clear()

	conn := "[yellow]offline[-]"
	if b.snap.Online {
		conn = "[green]online[-]"
	}
	syncIcon := " "
	if b.snap.Syncing {
		syncIcon = "[green]~[-]"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s %s | %d queued", b.profile, conn, syncIcon, b.snap.Pending)
	if !b.snap.LastSync.IsZero() {
		line += " | synced " + b.snap.LastSync.Local().Format("15:04:05")
		if b.snap.LastFailed > 0 {
			line += fmt.Sprintf(" [red](%d failed)[-]", b.snap.LastFailed)
		}
	}
	if text, tone := Banner(b.snap); tone != ToneNone {
		color := "yellow"
		if tone == ToneReconnected {
			color = "green"
		}
		line += fmt.Sprintf(" | [%s::b]%s[-:-:-]", color, text)
	}
	if b.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", b.flash)
	}
	line += " | " + time.Now().Format("15:04")

	_, _ = fmt.Fprint(b, line)
}
