// Package render lays a CV document out on A4 pages and writes it as PDF.
//
// Layout is pure: the same document always yields the same pages. Every
// block reserves its whole height before it is placed, so a block never
// straddles a page break. A block taller than a page starts on a fresh page
// and continues line by line.
package render

import (
	"strings"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
)

// Page geometry in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 14.0
	ContentWidth = PageWidth - 2*Margin

	bannerTop    = 16.0
	bannerHeight = 30.0
	bannerRadius = 4.0
	afterBanner  = 38.0

	titleBlockHeight = 9.0
	skillLine        = 6.0
	detailLine       = 5.0
	bodySize         = 10.0
)

type Color struct{ R, G, B int }

var (
	BannerColor = Color{79, 70, 229}
	White       = Color{255, 255, 255}
	Ink         = Color{15, 23, 42}
	RuleColor   = Color{203, 213, 225}
)

type Kind int

const (
	KindText Kind = iota
	KindRule
	KindBanner
)

// Item is one drawing operation. Text is drawn with its baseline at Y.
// Rules run from (X, Y) to (X2, Y2); banners fill W×H from (X, Y).
type Item struct {
	Kind   Kind
	X, Y   float64
	X2, Y2 float64
	W, H   float64
	Text   string
	Bold   bool
	Size   float64
	Color  Color
}

type Page struct {
	Items []Item
}

// Document is a laid out CV ready to be written.
type Document struct {
	Title    string
	FileName string
	Pages    []Page
}

// Texts returns the text of every line on the page in drawing order.
func (p Page) Texts() []string {
	var out []string
	for _, it := range p.Items {
		if it.Kind == KindText {
			out = append(out, it.Text)
		}
	}
	return out
}

type line struct {
	text   string
	bold   bool
	height float64
}

type layout struct {
	m     measurer
	pages []Page
	y     float64
	fresh bool
}

// Layout places doc on pages.
func Layout(doc models.CvDocument) *Document {
	l := &layout{m: newMeasurer(), pages: []Page{{}}}
	l.banner(doc)

	l.section("Skills")
	l.skills(doc.Skills)

	l.section("Work Experience")
	if len(doc.Experiences) == 0 {
		l.block([]line{{text: "No work experience added.", height: 6}}, 0)
	}
	for _, e := range doc.Experiences {
		l.block(experienceLines(l.m, e), 2)
	}

	l.section("Education")
	if len(doc.Educations) == 0 {
		l.block([]line{{text: "No education added.", height: 6}}, 0)
	}
	for _, e := range doc.Educations {
		l.block(educationLines(e), 0)
	}

	return &Document{
		Title:    displayTitle(doc.Title),
		FileName: FileName(doc.Title),
		Pages:    l.pages,
	}
}

func (l *layout) banner(doc models.CvDocument) {
	l.add(Item{Kind: KindBanner, X: Margin, Y: bannerTop, W: ContentWidth, H: bannerHeight, Color: BannerColor})
	l.add(Item{Kind: KindText, X: Margin + 4, Y: bannerTop + 10, Text: displayTitle(doc.Title), Bold: true, Size: 17, Color: White})
	l.add(Item{Kind: KindText, X: Margin + 4, Y: bannerTop + 18, Size: bodySize, Color: White,
		Text: or(doc.Profession, "Profession not set") + " • " + or(doc.City, "City not set")})
	l.add(Item{Kind: KindText, X: Margin + 4, Y: bannerTop + 24, Size: bodySize, Color: White,
		Text: or(doc.ContactEmail, "Email not set") + " • " + or(doc.Phone, "Phone not set")})
	l.y = bannerTop + afterBanner
}

// section draws a heading with a rule under it, kept together with at least
// one body line.
func (l *layout) section(title string) {
	l.ensure(titleBlockHeight + skillLine)
	l.add(Item{Kind: KindText, X: Margin, Y: l.y, Text: title, Bold: true, Size: 12, Color: Ink})
	l.add(Item{Kind: KindRule, X: Margin, Y: l.y + 3, X2: PageWidth - Margin, Y2: l.y + 3, Color: RuleColor})
	l.y += titleBlockHeight
}

func (l *layout) skills(skills []models.CvSkill) {
	text := "No skills added."
	if len(skills) > 0 {
		parts := make([]string, 0, len(skills))
		for _, s := range skills {
			parts = append(parts, s.Name+" ("+string(s.Level)+")")
		}
		text = strings.Join(parts, ", ")
	}

	var lines []line
	for _, t := range wrap(l.m, text, ContentWidth, false, bodySize) {
		lines = append(lines, line{text: t, height: skillLine})
	}
	l.block(lines, skillLine)
}

func experienceLines(m measurer, e models.CvExperienceItem) []line {
	lines := []line{
		{text: or(e.Position, "Position") + " @ " + or(e.Company, "Company"), bold: true, height: 5},
		{text: e.Period(), height: 5},
	}
	if strings.TrimSpace(e.Description) != "" {
		details := wrap(m, e.Description, ContentWidth, false, bodySize)
		for _, d := range details {
			lines = append(lines, line{text: d, height: detailLine})
		}
		lines[len(lines)-1].height += 2
	}
	return lines
}

func educationLines(e models.CvEducationItem) []line {
	second := or(e.Profession, "Profession")
	if d := strings.TrimSpace(e.Degree); d != "" {
		second += " • " + d
	}
	return []line{
		{text: or(e.Institution, "Institution"), bold: true, height: 5},
		{text: second, height: 5},
		{text: e.Period(), height: 7},
	}
}

// block places lines as one unit followed by gap millimetres of space.
func (l *layout) block(lines []line, gap float64) {
	total := gap
	for _, ln := range lines {
		total += ln.height
	}

	if total < PageHeight-2*Margin {
		l.ensure(total)
		for _, ln := range lines {
			l.text(ln)
		}
	} else {
		if !l.fresh {
			l.newPage()
		}
		for _, ln := range lines {
			l.ensure(ln.height)
			l.text(ln)
		}
	}
	l.y += gap
}

func (l *layout) text(ln line) {
	if ln.text != "" {
		l.add(Item{Kind: KindText, X: Margin, Y: l.y, Text: ln.text, Bold: ln.bold, Size: bodySize, Color: Ink})
	}
	l.y += ln.height
	l.fresh = false
}

// ensure starts a new page unless h more millimetres fit above the bottom
// margin. A fresh page is never abandoned.
func (l *layout) ensure(h float64) {
	if l.y+h >= PageHeight-Margin && !l.fresh {
		l.newPage()
	}
}

func (l *layout) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = Margin
	l.fresh = true
}

func (l *layout) add(it Item) {
	p := &l.pages[len(l.pages)-1]
	p.Items = append(p.Items, it)
	l.fresh = false
}

func displayTitle(title string) string {
	return or(title, "CV")
}

func or(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
