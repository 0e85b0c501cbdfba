package statusview

import (
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// QueueTable lists the operations waiting to be replayed, oldest first.
type QueueTable struct {
	*tview.Table
}

// NewQueueTable creates an empty table.
func NewQueueTable() *QueueTable {
	t := tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	t.SetBorder(true).SetTitle(" Queued writes ")
	q := &QueueTable{Table: t}
	q.Update(nil)
	return q
}

// Update replaces the rows with ops.
func (q *QueueTable) Update(ops []outbox.Operation) {
	q.Clear()
	for col, h := range []string{"QUEUED", "KIND", "TARGET"} {
		q.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	if len(ops) == 0 {
		q.SetCell(1, 0, tview.NewTableCell("nothing queued").
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
		return
	}
	for i, op := range ops {
		row := i + 1
		q.SetCell(row, 0, tview.NewTableCell(op.Timestamp.Local().Format("01-02 15:04:05")))
		q.SetCell(row, 1, tview.NewTableCell(string(op.Kind)).SetTextColor(kindColor(op.Kind)))
		q.SetCell(row, 2, tview.NewTableCell(op.Target()).SetExpansion(1))
	}
}

func kindColor(k outbox.Kind) tcell.Color {
	switch k {
	case outbox.KindInsert:
		return tcell.ColorGreen
	case outbox.KindDelete:
		return tcell.ColorRed
	default:
		return tcell.ColorWhite
	}
}
