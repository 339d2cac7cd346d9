package render

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

type measurer interface {
	Width(s string, bold bool, size float64) float64
}

// fpdfMeasurer uses the metrics of the Helvetica core font, the same font
// the writer draws with.
type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newMeasurer() *fpdfMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &fpdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *fpdfMeasurer) Width(s string, bold bool, size float64) float64 {
	m.pdf.SetFont("Helvetica", fontStyle(bold), size)
	return m.pdf.GetStringWidth(m.tr(s))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// wrap breaks text into lines no wider than width. Explicit newlines are
// kept; words longer than a line are split between characters.
func wrap(m measurer, text string, width float64, bold bool, size float64) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		cur := ""
		for _, w := range words {
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if m.Width(candidate, bold, size) <= width {
				cur = candidate
				continue
			}
			if cur != "" {
				out = append(out, cur)
			}
			cur = w
			for m.Width(cur, bold, size) > width {
				head, tail := splitAt(m, cur, width, bold, size)
				out = append(out, head)
				cur = tail
			}
		}
		out = append(out, cur)
	}
	return out
}

// splitAt returns the longest prefix of s (at least one rune) that fits.
func splitAt(m measurer, s string, width float64, bold bool, size float64) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && m.Width(string(runes[:n+1]), bold, size) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
