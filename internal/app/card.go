package app

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dentai/analyzer"
)

// newCaseCard renders one analyzed image as a self-contained card: thumbnail,
// primary diagnosis with confidence, then the static clinical sections. A
// failed case gets an error card instead.
func newCaseCard(c analyzer.Case, number int) fyne.CanvasObject {
	title := fmt.Sprintf("Case #%d", number)
	subtitle := filepath.Base(c.ImagePath)

	if c.Failed {
		msg := widget.NewLabel("Analysis failed. This case is excluded from the report.")
		msg.Wrapping = fyne.TextWrapWord
		body := container.NewHBox(widget.NewIcon(theme.ErrorIcon()), msg)
		return widget.NewCard(title, subtitle, body)
	}

	img := canvas.NewImageFromFile(c.ImagePath)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(400, 280))

	diag := widget.NewLabelWithStyle(
		"Diagnosis: "+analyzer.TitleLabel(c.PrimaryLabel()),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	conf := widget.NewLabel(fmt.Sprintf("Confidence: %.1f%%", c.Confidence()*100))

	body := container.NewVBox(
		img,
		container.NewHBox(diag, layout.NewSpacer(), conf),
	)
	addFindingSection(body, "Initial Radiographic Assessment", c.Findings)
	if !c.Management.IsZero() {
		addListSection(body, "Immediate Action Required", c.Management.Immediate)
		addListSection(body, "Long-term Management Plan", c.Management.LongTerm)
	}
	addFindingSection(body, "Clinical Recommendations", c.Recommendations)

	return widget.NewCard(title, subtitle, body)
}

func addFindingSection(box *fyne.Container, title string, items []analyzer.Finding) {
	if len(items) == 0 {
		return
	}
	box.Add(sectionTitle(title))
	for _, f := range items {
		row := widget.NewLabel(f.Icon + "  " + f.Text)
		row.Wrapping = fyne.TextWrapWord
		box.Add(row)
	}
}

func addListSection(box *fyne.Container, title string, items []string) {
	if len(items) == 0 {
		return
	}
	box.Add(sectionTitle(title))
	for _, item := range items {
		row := widget.NewLabel("• " + item)
		row.Wrapping = fyne.TextWrapWord
		box.Add(row)
	}
}

func sectionTitle(text string) fyne.CanvasObject {
	return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
}
