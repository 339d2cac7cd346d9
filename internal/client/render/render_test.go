package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	pdfreader "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() models.CvDocument {
	return models.CvDocument{
		ID:           "a",
		Title:        "Backend CV",
		Profession:   "Engineer",
		City:         "Almaty",
		ContactEmail: "me@example.com",
		Skills: []models.CvSkill{
			{ID: "1", Name: "Go", Level: models.SkillHigh},
			{ID: "2", Name: "SQL", Level: models.SkillMedium},
		},
		Experiences: []models.CvExperienceItem{
			{ID: "e", Company: "Acme", Position: "Developer", StartDate: "2021", IsCurrent: true, Description: "Built services."},
		},
		Educations: []models.CvEducationItem{
			{ID: "d", Institution: "KBTU", Profession: "CS", Degree: "BSc", StartDate: "2015", EndDate: "2019"},
		},
	}
}

func allTexts(d *Document) []string {
	var out []string
	for _, p := range d.Pages {
		out = append(out, p.Texts()...)
	}
	return out
}

func TestLayout_SinglePageContent(t *testing.T) {
	d := Layout(sampleDoc())
	require.Len(t, d.Pages, 1)
	assert.Equal(t, "Backend_CV.pdf", d.FileName)

	texts := allTexts(d)
	for _, want := range []string{
		"Backend CV",
		"Engineer • Almaty",
		"me@example.com • Phone not set",
		"Skills",
		"Go (High), SQL (Medium)",
		"Work Experience",
		"Developer @ Acme",
		"2021 - Present",
		"Built services.",
		"Education",
		"KBTU",
		"CS • BSc",
		"2015 - 2019",
	} {
		assert.Contains(t, texts, want)
	}

	first := d.Pages[0].Items[0]
	assert.Equal(t, KindBanner, first.Kind)
	assert.Equal(t, BannerColor, first.Color)
	assert.Equal(t, bannerTop, first.Y)
}

func TestLayout_Placeholders(t *testing.T) {
	d := Layout(models.CvDocument{ID: "x"})
	texts := allTexts(d)
	assert.Equal(t, "CV", texts[0])
	assert.Contains(t, texts, "No skills added.")
	assert.Contains(t, texts, "No work experience added.")
	assert.Contains(t, texts, "No education added.")
	assert.Contains(t, texts, "Profession not set • City not set")
	assert.Equal(t, "CV.pdf", d.FileName)
}

func TestLayout_Deterministic(t *testing.T) {
	doc := sampleDoc()
	assert.Equal(t, Layout(doc), Layout(doc))
}

func TestLayout_EducationWithoutDegree(t *testing.T) {
	doc := models.CvDocument{Educations: []models.CvEducationItem{{ID: "d"}}}
	texts := allTexts(Layout(doc))
	assert.Contains(t, texts, "Institution")
	assert.Contains(t, texts, "Profession")
	assert.Contains(t, texts, "Start - End")
}

func manyExperiences(n int) models.CvDocument {
	doc := sampleDoc()
	doc.Experiences = nil
	for i := 0; i < n; i++ {
		doc.Experiences = append(doc.Experiences, models.CvExperienceItem{
			ID:          fmt.Sprint(i),
			Company:     fmt.Sprintf("Company %d", i),
			Position:    "Engineer",
			StartDate:   "2020",
			EndDate:     "2021",
			Description: strings.Repeat("Shipped features and fixed bugs. ", 6),
		})
	}
	return doc
}

func pageOf(d *Document, text string) int {
	for i, p := range d.Pages {
		for _, s := range p.Texts() {
			if s == text {
				return i
			}
		}
	}
	return -1
}

func TestLayout_PaginatesWithoutSplittingEntries(t *testing.T) {
	d := Layout(manyExperiences(40))
	require.Greater(t, len(d.Pages), 1)

	for i := 0; i < 40; i++ {
		head := fmt.Sprintf("Engineer @ Company %d", i)
		p := pageOf(d, head)
		require.GreaterOrEqual(t, p, 0, "entry %d missing", i)

		var entryTexts int
		items := d.Pages[p].Items
		for j, it := range items {
			if it.Kind == KindText && it.Text == head {
				// headline, period and every description line follow on the same page
				for _, next := range items[j+1:] {
					if next.Kind != KindText || strings.HasPrefix(next.Text, "Engineer @") || next.Text == "Education" {
						break
					}
					entryTexts++
				}
			}
		}
		assert.GreaterOrEqual(t, entryTexts, 2, "entry %d was split", i)
	}

	for _, p := range d.Pages {
		for _, it := range p.Items {
			assert.Less(t, it.Y, PageHeight-Margin)
			assert.GreaterOrEqual(t, it.Y, Margin)
		}
	}
}

func TestLayout_OversizedEntryContinuesOnNextPages(t *testing.T) {
	doc := sampleDoc()
	var desc []string
	for i := 0; i < 120; i++ {
		desc = append(desc, fmt.Sprintf("line %03d", i))
	}
	doc.Experiences = []models.CvExperienceItem{{ID: "e", Company: "Big", Position: "Role", Description: strings.Join(desc, "\n")}}

	d := Layout(doc)
	require.GreaterOrEqual(t, len(d.Pages), 3)

	start := pageOf(d, "Role @ Big")
	assert.Equal(t, 1, start, "oversized entry starts on a fresh page")
	assert.Equal(t, Margin, d.Pages[start].Items[0].Y)

	var got []string
	for _, s := range allTexts(d) {
		if strings.HasPrefix(s, "line ") {
			got = append(got, s)
		}
	}
	assert.Equal(t, desc, got)
}

func TestWrap_RespectsWidth(t *testing.T) {
	m := newMeasurer()
	text := strings.Repeat("lorem ipsum dolor ", 40) + strings.Repeat("x", 300)
	lines := wrap(m, text, 60, false, 10)
	require.Greater(t, len(lines), 5)
	for _, l := range lines {
		assert.LessOrEqual(t, m.Width(l, false, 10), 60.0)
	}
	assert.Equal(t, strings.Count(text, "x"), strings.Count(strings.Join(lines, ""), "x"))
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"Backend CV":        "Backend_CV.pdf",
		"  Senior   Go\tCV": "Senior_Go_CV.pdf",
		"":                  "CV.pdf",
		"a/b":               "a-b.pdf",
		`Go\Rust: 2026?`:    "Go-Rust-_2026-.pdf",
		`"Lead" <Ops>|*`:    "-Lead-_-Ops---.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, FileName(in), in)
	}
}

func TestWritePDF_PageCountMatchesLayout(t *testing.T) {
	for _, n := range []int{1, 40} {
		d := Layout(manyExperiences(n))

		var buf bytes.Buffer
		require.NoError(t, d.WritePDF(&buf))
		require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

		r, err := pdfreader.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		assert.Equal(t, len(d.Pages), r.NumPage())
	}
}
