package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"dentai/analyzer"
)

// ErrEmptyBatch reports an export attempted with zero eligible cases.
var ErrEmptyBatch = errors.New("report: no eligible cases to export")

// ExportError reports an I/O failure writing the destination file. Partial
// output, if any, is not guaranteed valid.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export report %q: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Page geometry in points. A4 portrait with one inch margins.
const (
	pageMargin  = 72
	imageWidth  = 400
	caseSpacing = 30
	lineHeight  = 14
)

// Generator composes the analysis report PDF.
type Generator struct {
	Title string
}

// NewGenerator returns a Generator with the given header title, falling back
// to the default report title.
func NewGenerator(title string) *Generator {
	if title == "" {
		title = "DentAI Pro - Dental X-Ray Analysis Report"
	}
	return &Generator{Title: title}
}

// Write renders the eligible cases, in batch order, into a paginated PDF at
// path. Failed cases are excluded; ErrEmptyBatch is returned before any
// write when none remain. A per-case image load failure is replaced with a
// textual placeholder and the export continues.
func (g *Generator) Write(path string, cases []analyzer.Case) error {
	eligible := make([]analyzer.Case, 0, len(cases))
	for _, c := range cases {
		if !c.Failed {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return ErrEmptyBatch
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	g.header(pdf, tr)
	for i, c := range eligible {
		g.addCase(pdf, tr, c, i+1)
		pdf.Ln(caseSpacing)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

func (g *Generator) header(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 20, tr(g.Title), "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 12, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 12, "Powered by AI for accurate dental pathology detection", "", 1, "L", false, 0, "")
	pdf.Ln(caseSpacing)
}

func (g *Generator) addCase(pdf *fpdf.Fpdf, tr func(string) string, c analyzer.Case, number int) {
	usable, _ := pdf.GetPageSize()
	usable -= 2 * pageMargin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(25, 118, 210)
	pdf.CellFormat(0, 16, fmt.Sprintf("Case #%d", number), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	g.addImage(pdf, c.ImagePath)

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(25, 118, 210)
	pdf.CellFormat(usable*0.6, 18, tr("Diagnosis: "+analyzer.TitleLabel(c.PrimaryLabel())), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(usable*0.4, 18, fmt.Sprintf("Confidence: %.1f%%", c.Confidence()*100), "", 1, "R", false, 0, "")
	pdf.Ln(20)

	g.addSection(pdf, tr, "Initial Radiographic Assessment", findingTexts(c.Findings))
	if !c.Management.IsZero() {
		g.addSection(pdf, tr, "Immediate Action Required", c.Management.Immediate)
		g.addSection(pdf, tr, "Long-term Management Plan", c.Management.LongTerm)
	}
	g.addSection(pdf, tr, "Clinical Recommendations", findingTexts(c.Recommendations))
}

// addImage places the radiograph scaled to a fixed width, breaking the page
// first when it would not fit. An unreadable image yields the placeholder
// line instead of aborting the export.
func (g *Generator) addImage(pdf *fpdf.Fpdf, path string) {
	info := pdf.RegisterImageOptions(path, fpdf.ImageOptions{})
	if pdf.Err() || info == nil || info.Width() <= 0 {
		pdf.ClearError()
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, lineHeight, "Error: Could not load image", "", 1, "L", false, 0, "")
		pdf.Ln(6)
		return
	}
	height := imageWidth * info.Height() / info.Width()
	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height > pageHeight-pageMargin {
		pdf.AddPage()
	}
	pdf.ImageOptions(path, pageMargin, 0, imageWidth, 0, true, fpdf.ImageOptions{}, 0, "")
	pdf.Ln(20)
}

// addSection renders a titled list with alternating row fill. Empty lists
// are skipped entirely.
func (g *Generator) addSection(pdf *fpdf.Fpdf, tr func(string) string, title string, items []string) {
	if len(items) == 0 {
		return
	}
	usable, _ := pdf.GetPageSize()
	usable -= 2 * pageMargin

	pdf.Ln(15)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, lineHeight, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, item := range items {
		if i%2 == 1 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetX(pageMargin + 12)
		pdf.MultiCell(usable-24, lineHeight+4, tr("• "+item), "", "L", true)
	}
	pdf.Ln(6)
}

// findingTexts extracts the clinical text from findings rows; the icon
// glyphs stay in the UI.
func findingTexts(items []analyzer.Finding) []string {
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.Text)
	}
	return out
}
