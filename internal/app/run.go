package app

import (
	"io"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/joho/godotenv"

	"dentai/analyzer"
)

const fyneAppID = "studio.dentai.app"

// Run initializes required resources and starts the desktop UI.
func Run() error {
	_ = godotenv.Load()
	cfg, err := analyzer.LoadConfig("")
	if err != nil {
		return err
	}
	cfg = analyzer.FromEnv(cfg)

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, cfg)
	logger := log.New(io.MultiWriter(os.Stderr, u.logWriter()), "", 0)

	engine, err := analyzer.LoadEngine(cfg.Engine, logger)
	if err != nil {
		u.setStatus("Model load failed")
		d := dialog.NewError(err, u.w)
		d.SetOnClosed(func() { a.Quit() })
		d.Show()
		u.w.ShowAndRun()
		return err
	}
	defer engine.Close()

	controller, err := analyzer.NewBatchController(engine, cfg.TopK, u.batchCallbacks(), logger)
	if err != nil {
		return err
	}
	u.controller = controller

	// Outstanding tasks finish before the window goes away.
	u.w.SetCloseIntercept(func() {
		u.setStatus("Waiting for analysis to finish...")
		go func() {
			controller.Wait()
			fyne.Do(func() { u.w.Close() })
		}()
	})

	u.w.ShowAndRun()
	controller.Wait()
	return nil
}
