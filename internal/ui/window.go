package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/notification"
	"github.com/osa030/arena/internal/domain/track"
)

// Window layout constants
const (
	WindowTitle         = "Audio Arena"
	NameColumnWidth     = 460
	DurationColumnWidth = 90
)

// Scanner lists the audio files of a folder.
type Scanner interface {
	Scan(ctx context.Context, dir string) ([]track.AudioFile, error)
}

// Window is the fyne front end of a Controller.
type Window struct {
	window  fyne.Window
	ctrl    *Controller
	scanner Scanner

	// Only touched on the UI goroutine.
	loadSeq    uint64
	cancelLoad context.CancelFunc

	table  *widget.Table
	status *widget.Label
	total  *widget.Label
	hide   *widget.Check
}

// NewWindow creates the player window. Size is the initial window size.
func NewWindow(app fyne.App, ctrl *Controller, scanner Scanner, size fyne.Size) *Window {
	w := &Window{
		window:  app.NewWindow(WindowTitle),
		ctrl:    ctrl,
		scanner: scanner,
	}
	w.window.Resize(size)
	w.setupUI()
	return w
}

// setupUI creates and arranges all UI components
func (w *Window) setupUI() {
	w.table = widget.NewTableWithHeaders(
		func() (int, int) {
			return w.ctrl.Len(), 2
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			name, duration := w.ctrl.Row(id.Row)
			switch id.Col {
			case 0:
				if w.ctrl.IsPlaying(id.Row) {
					name = "▶ " + name
				}
				label.SetText(name)
			case 1:
				label.SetText(duration)
			}
		},
	)
	w.table.ShowHeaderColumn = false
	w.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		label := o.(*widget.Label)
		switch id.Col {
		case 0:
			label.SetText("Name")
		case 1:
			label.SetText("Duration")
		}
	}
	w.table.SetColumnWidth(0, NameColumnWidth)
	w.table.SetColumnWidth(1, DurationColumnWidth)
	w.table.OnSelected = func(id widget.TableCellID) {
		w.ctrl.Select(id.Row)
	}

	w.status = widget.NewLabel(w.ctrl.Status())
	w.total = widget.NewLabel(w.ctrl.TotalLabel())

	w.hide = widget.NewCheck("Hide names", func(hide bool) {
		w.ctrl.SetHideNames(hide)
		w.refresh()
	})
	w.hide.SetChecked(w.ctrl.HideNames())

	transport := container.NewHBox(
		w.button("Play", w.ctrl.Play),
		w.button("Pause", w.ctrl.Pause),
		w.button("Resume", w.ctrl.Resume),
		w.button("Stop", w.ctrl.Stop),
		w.button("Previous", w.ctrl.Previous),
		w.button("Next", w.ctrl.Next),
	)
	edit := container.NewHBox(
		widget.NewButton("Open folder", func() { w.pickFolder(w.Load) }),
		widget.NewButton("Add folder", func() { w.pickFolder(w.Add) }),
		w.button("Shuffle", w.ctrl.Shuffle),
		w.button("Clear", w.ctrl.Clear),
		w.hide,
	)

	top := container.NewVBox(edit, transport, widget.NewSeparator())
	bottom := container.NewVBox(widget.NewSeparator(), container.NewBorder(nil, nil, nil, w.total, w.status))
	w.window.SetContent(container.NewBorder(top, bottom, nil, nil, w.table))
}

// button creates a button running action on the controller and refreshing the view.
func (w *Window) button(label string, action func()) *widget.Button {
	return widget.NewButton(label, func() {
		action()
		w.refresh()
	})
}

// pickFolder shows the folder dialog and passes the chosen path to fn.
func (w *Window) pickFolder(fn func(dir string)) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if uri == nil {
			return
		}
		fn(uri.Path())
	}, w.window)
}

// Load scans dir in the background and replaces the playlist with the result.
func (w *Window) Load(dir string) {
	w.scan(dir, func(files []track.AudioFile) {
		w.table.UnselectAll()
		w.ctrl.SetFiles(dir, files)
	})
}

// Add scans dir in the background and appends the result to the playlist.
func (w *Window) Add(dir string) {
	w.scan(dir, w.ctrl.AddFiles)
}

// scan runs the scanner on a new goroutine and hands the files to apply on the UI goroutine.
// Starting a scan cancels the previous one; results of a superseded scan are dropped.
func (w *Window) scan(dir string, apply func([]track.AudioFile)) {
	if w.cancelLoad != nil {
		w.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelLoad = cancel
	w.loadSeq++
	seq := w.loadSeq

	w.status.SetText(fmt.Sprintf("Scanning %s...", dir))
	go func() {
		defer cancel()
		files, err := w.scanner.Scan(ctx, dir)
		fyne.Do(func() {
			if seq != w.loadSeq {
				zlog.Debug().Msgf("ui: dropping superseded scan of %s", dir)
				return
			}
			w.cancelLoad = nil
			if err != nil {
				zlog.Error().Err(err).Msgf("ui: scan of %s failed", dir)
				dialog.ShowError(err, w.window)
				w.status.SetText("Scan failed")
				return
			}
			apply(files)
			w.refresh()
		})
	}()
}

// Follow applies playback notifications until the channel is closed.
func (w *Window) Follow(notifications <-chan notification.Notification) {
	go func() {
		for n := range notifications {
			ev := n.Event
			fyne.Do(func() {
				w.ctrl.HandleEvent(ev)
				w.refresh()
			})
		}
	}()
}

func (w *Window) refresh() {
	w.table.Refresh()
	w.status.SetText(w.ctrl.Status())
	w.total.SetText(w.ctrl.TotalLabel())
}

// ShowAndRun shows the window and runs the fyne event loop until it is closed.
func (w *Window) ShowAndRun() {
	w.window.ShowAndRun()
}

// SetOnClosed sets a callback run when the window is closed.
func (w *Window) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}
