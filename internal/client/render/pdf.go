package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	unsafeName = regexp.MustCompile(`[/\\:*?"<>|]`)
)

// FileName derives the artifact name from a CV title: whitespace runs
// become "_", path and shell-reserved characters become "-" and ".pdf" is
// appended.
func FileName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "CV"
	}
	name = unsafeName.ReplaceAllString(name, "-")
	return spaceRun.ReplaceAllString(name, "_") + ".pdf"
}

// WritePDF draws the laid out pages with the Helvetica core font.
func (d *Document) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(d.Title, true)
	pdf.SetCreator("eportfolio", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range d.Pages {
		pdf.AddPage()
		for _, it := range page.Items {
			switch it.Kind {
			case KindBanner:
				pdf.SetFillColor(it.Color.R, it.Color.G, it.Color.B)
				pdf.RoundedRect(it.X, it.Y, it.W, it.H, bannerRadius, "1234", "F")
			case KindRule:
				pdf.SetDrawColor(it.Color.R, it.Color.G, it.Color.B)
				pdf.SetLineWidth(0.2)
				pdf.Line(it.X, it.Y, it.X2, it.Y2)
			case KindText:
				pdf.SetFont("Helvetica", fontStyle(it.Bold), it.Size)
				pdf.SetTextColor(it.Color.R, it.Color.G, it.Color.B)
				pdf.Text(it.X, it.Y, tr(it.Text))
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
