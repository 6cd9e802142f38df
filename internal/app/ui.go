package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dentai/analyzer"
	"dentai/report"
)

const logDebounceInterval = 150 * time.Millisecond

type uiState struct {
	cfg        analyzer.Config
	controller *analyzer.BatchController

	w        fyne.Window
	cards    *fyne.Container
	scroll   *container.Scroll
	status   *widget.Label
	progress *widget.ProgressBar
	log      *widget.Entry

	statusBind   binding.String
	logBind      binding.String
	progressBind binding.Float

	logLines    []string
	logMu       sync.Mutex
	logUpdateCh chan struct{}

	caseCount int

	loadBtn   *widget.Button
	folderBtn *widget.Button
	clearBtn  *widget.Button
	exportBtn *widget.Button
}

func buildUI(a fyne.App, cfg analyzer.Config) *uiState {
	u := &uiState{cfg: cfg}
	u.w = a.NewWindow("DentAI Pro - Dental X-Ray Analysis")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.progressBind = binding.NewFloat()
	u.logBind = binding.NewString()
	u.startLogUpdater()

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("Activity log")
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()

	u.loadBtn = widget.NewButtonWithIcon("Load Images", theme.MediaPhotoIcon(), func() { u.onLoadImages() })
	u.folderBtn = widget.NewButtonWithIcon("Load Folder", theme.FolderOpenIcon(), func() { u.onLoadFolder() })
	u.clearBtn = widget.NewButtonWithIcon("Clear All", theme.DeleteIcon(), func() { u.onClear() })
	u.exportBtn = widget.NewButtonWithIcon("Export Report", theme.DocumentSaveIcon(), func() { u.onExport() })

	u.cards = container.NewVBox()
	u.scroll = container.NewVScroll(u.cards)

	toolbar := container.NewGridWithColumns(4, u.loadBtn, u.folderBtn, u.clearBtn, u.exportBtn)
	top := container.NewVBox(
		widget.NewLabelWithStyle("Dental Radiograph Analysis", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		toolbar,
		u.progress,
		u.status,
		widget.NewSeparator(),
	)

	split := container.NewVSplit(u.scroll, container.NewMax(u.log))
	split.Offset = 0.78

	u.w.SetContent(container.NewBorder(top, nil, nil, nil, split))
	u.w.Resize(fyne.NewSize(1000, 760))
	return u
}

// batchCallbacks adapts controller events onto the fyne main thread. The
// bindings are safe to set from the collector goroutine; widget mutations go
// through fyne.Do.
func (u *uiState) batchCallbacks() analyzer.BatchCallbacks {
	return analyzer.BatchCallbacks{
		OnCaseAdded: func(c analyzer.Case) {
			fyne.Do(func() { u.addCard(c) })
		},
		OnProgress: func(done, total int) {
			u.configureProgress(0, float64(total))
			u.setProgressValue(float64(done))
			u.setStatus(fmt.Sprintf("Analyzing %d/%d", done, total))
		},
		OnTaskError: func(path string, err error) {
			u.appendLog(fmt.Sprintf("warning: %v", err))
		},
		OnSettled: func() {
			u.hideProgress()
			u.setBusy(false)
			u.setStatus(fmt.Sprintf("Analysis complete (%d cases)", len(u.controllerCases())))
		},
	}
}

func (u *uiState) controllerCases() []analyzer.Case {
	if u.controller == nil {
		return nil
	}
	return u.controller.Cases()
}

func (u *uiState) addCard(c analyzer.Case) {
	u.caseCount++
	u.cards.Add(newCaseCard(c, u.caseCount))
	u.cards.Refresh()
}

func (u *uiState) submitPaths(paths []string) {
	if len(paths) == 0 || u.controller == nil {
		return
	}
	u.setBusy(true)
	u.configureProgress(0, float64(len(paths)))
	u.setProgressValue(0)
	u.showProgress()
	u.setStatus(fmt.Sprintf("Analyzing %d images...", len(paths)))
	u.appendLog(fmt.Sprintf("submitted %d images", len(paths)))
	u.controller.Submit(paths)
}

func (u *uiState) onLoadImages() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		if !analyzer.IsSupportedImage(path) {
			dialog.ShowInformation("Unsupported file", "Select a PNG or JPEG radiograph", u.w)
			return
		}
		u.submitPaths([]string{path})
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter(analyzer.SupportedExtensions()))
	fd.Show()
}

func (u *uiState) onLoadFolder() {
	dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil || lu == nil {
			return
		}
		images, err := analyzer.CollectImages([]string{lu.Path()})
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if len(images) == 0 {
			dialog.ShowInformation("No images", "The folder contains no PNG or JPEG files", u.w)
			return
		}
		u.submitPaths(images)
	}, u.w)
}

func (u *uiState) onClear() {
	if u.controller != nil {
		u.controller.Clear()
	}
	u.caseCount = 0
	u.cards.Objects = nil
	u.cards.Refresh()
	u.setStatus("Ready")
	u.appendLog("cleared all cases")
}

func (u *uiState) onExport() {
	cases := u.controllerCases()
	if len(cases) == 0 {
		dialog.ShowInformation("Nothing to export", "Analyze images before exporting a report", u.w)
		return
	}
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()
		gen := report.NewGenerator(u.cfg.ReportTitle)
		if err := gen.Write(path, cases); err != nil {
			if errors.Is(err, report.ErrEmptyBatch) {
				dialog.ShowInformation("Nothing to export", "Every case in the batch failed analysis", u.w)
				return
			}
			u.appendLog(fmt.Sprintf("export failed: %v", err))
			dialog.ShowError(err, u.w)
			return
		}
		u.appendLog("report saved: " + path)
		u.setStatus("Report exported to " + filepath.Base(path))
	}, u.w)
	fd.SetFileName("dental_report.pdf")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		if b {
			u.loadBtn.Disable()
			u.folderBtn.Disable()
			u.clearBtn.Disable()
			u.exportBtn.Disable()
		} else {
			u.loadBtn.Enable()
			u.folderBtn.Enable()
			u.clearBtn.Enable()
			u.exportBtn.Enable()
		}
	})
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) configureProgress(min, max float64) {
	fyne.Do(func() {
		u.progress.Min = min
		u.progress.Max = max
	})
}

func (u *uiState) setProgressValue(value float64) {
	_ = u.progressBind.Set(value)
}

func (u *uiState) showProgress() {
	fyne.Do(func() { u.progress.Show() })
}

func (u *uiState) hideProgress() {
	fyne.Do(func() { u.progress.Hide() })
}

func (u *uiState) appendLog(msg string) {
	now := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", now, msg)

	u.logMu.Lock()
	u.logLines = append(u.logLines, line)
	if len(u.logLines) > 200 {
		u.logLines = u.logLines[len(u.logLines)-200:]
	}
	u.logMu.Unlock()

	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

func (u *uiState) flushLog() {
	u.logMu.Lock()
	text := strings.Join(u.logLines, "\n")
	u.logMu.Unlock()
	_ = u.logBind.Set(text)
}

// logSink splits logger output into log pane lines.
type logSink struct {
	u *uiState
}

func (s logSink) Write(p []byte) (int, error) {
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		s.u.appendLog(line)
	}
	return len(p), nil
}

func (u *uiState) logWriter() io.Writer {
	return logSink{u: u}
}
