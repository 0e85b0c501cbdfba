package statusview

import (
	"context"
	"fmt"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/bus"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/status"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const flashFor = 3 * time.Second

// Surface is the status source the view follows.
type Surface interface {
	Snapshot() status.Snapshot
	DismissNotice(ctx context.Context) error
}

// Queue lists pending operations.
type Queue interface {
	Pending() []outbox.Operation
}

// Drainer replays the queue on demand.
type Drainer interface {
	Drain(ctx context.Context) outbox.DrainResult
}

// App is a full-screen live view of the status surface and the queue.
type App struct {
	app     *tview.Application
	bar     *Bar
	table   *QueueTable
	surface Surface
	queue   Queue
	drainer Drainer
	bus     *bus.Bus
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewApp creates the view. drainer may be nil to disable manual sync.
func NewApp(profile string, surface Surface, queue Queue, drainer Drainer, b *bus.Bus) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		app:     tview.NewApplication(),
		bar:     NewBar(profile),
		table:   NewQueueTable(),
		surface: surface,
		queue:   queue,
		drainer: drainer,
		bus:     b,
		ctx:     ctx,
		cancel:  cancel,
	}

	help := tview.NewTextView().SetDynamicColors(true).
		SetText(" [::b]q[-:-:-]:quit  [::b]s[-:-:-]:sync now  [::b]d[-:-:-]:hide reconnect notice")
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.bar, 1, 0, false).
		AddItem(a.table, 0, 1, true).
		AddItem(help, 1, 0, false)

	a.app.SetRoot(layout, true).SetInputCapture(a.onKey)
	return a
}

func (a *App) onKey(evt *tcell.EventKey) *tcell.EventKey {
	if evt.Key() != tcell.KeyRune {
		return evt
	}
	switch evt.Rune() {
	case 'q':
		a.Stop()
		return nil
	case 's':
		if a.drainer != nil {
			go a.syncNow()
		}
		return nil
	case 'd':
		go func() {
			if err := a.surface.DismissNotice(a.ctx); err != nil {
				a.flash("dismiss failed: " + err.Error())
			}
		}()
		return nil
	}
	return evt
}

func (a *App) syncNow() {
	res := a.drainer.Drain(a.ctx)
	switch {
	case res.Skipped:
		a.flash("another process is syncing")
	case res.Attempted == 0:
		a.flash("nothing to sync")
	default:
		a.flash(fmt.Sprintf("synced %d of %d", res.Succeeded, res.Attempted))
	}
}

func (a *App) flash(msg string) {
	a.app.QueueUpdateDraw(func() { a.bar.SetFlash(msg) })
	time.AfterFunc(flashFor, func() {
		a.app.QueueUpdateDraw(func() { a.bar.SetFlash("") })
	})
}

func (a *App) refresh() {
	snap := a.surface.Snapshot()
	ops := a.queue.Pending()
	a.app.QueueUpdateDraw(func() {
		a.bar.Set(snap)
		a.table.Update(ops)
	})
}

// Run draws the view until the user quits.
func (a *App) Run() error {
	statusCh, unsubStatus := a.bus.Subscribe(bus.StatusChanged, 32)
	outboxCh, unsubOutbox := a.bus.Subscribe("outbox.", 32)

	go func() {
		defer unsubStatus()
		defer unsubOutbox()

		a.refresh()
		// The clock in the bar and queue entries written by other
		// processes are picked up on the tick.
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statusCh:
				a.refresh()
			case <-outboxCh:
				a.refresh()
			case <-ticker.C:
				a.refresh()
			case <-a.ctx.Done():
				return
			}
		}
	}()

	return a.app.Run()
}

// Stop shuts the view down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
