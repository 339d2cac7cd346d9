package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/query"
	"github.com/dmitrijs2005/eportfolio/internal/client/services"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) List(ctx context.Context, search, sortBy, order string) error {
	p, err := query.ParseParams(search, sortBy, order, query.DocumentSortKeys)
	if err != nil {
		return err
	}
	docs := query.Documents(a.documents(ctx), p)
	if len(docs) == 0 {
		a.println("No CVs yet. Create one with 'create'.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tPROFESSION\tCITY\tUPDATED")
	for _, d := range docs {
		mark := ""
		if d.IsPrimary {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, d.ID, d.Title, d.Profession, d.City, d.UpdatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, id string) error {
	doc, err := a.find(ctx, id)
	if err != nil {
		return err
	}
	a.printDocument(doc)
	return nil
}

func (a *App) printDocument(d models.CvDocument) {
	title := d.Title
	if d.IsPrimary {
		title += " (primary)"
	}
	a.println(title)
	a.println(strings.Repeat("=", len(title)))
	a.printf("Profession: %s\nCity: %s\nEmail: %s\nPhone: %s\n", d.Profession, d.City, d.ContactEmail, d.Phone)

	a.println("\nSkills:")
	for _, s := range d.Skills {
		a.printf("  - %s (%s)\n", s.Name, s.Level)
	}
	a.println("\nWork Experience:")
	for _, e := range d.Experiences {
		a.printf("  - %s @ %s, %s\n", e.Position, e.Company, e.Period())
		if e.Description != "" {
			a.printf("    %s\n", e.Description)
		}
	}
	a.println("\nEducation:")
	for _, e := range d.Educations {
		a.printf("  - %s, %s %s, %s\n", e.Institution, e.Profession, e.Degree, e.Period())
	}
}

func (a *App) Create(ctx context.Context, d services.Draft) error {
	a.documents(ctx)
	res, err := a.cvs.Create(ctx, d)
	return a.report(res, err)
}

func (a *App) Edit(ctx context.Context, id string, d services.Draft) error {
	a.documents(ctx)
	res, err := a.cvs.Edit(ctx, id, d)
	return a.report(res, err)
}

func (a *App) Delete(ctx context.Context, id string) error {
	a.documents(ctx)
	res, err := a.cvs.Delete(ctx, id)
	return a.report(res, err)
}

func (a *App) SetPrimary(ctx context.Context, id string) error {
	a.documents(ctx)
	res, err := a.cvs.SetPrimary(ctx, id)
	return a.report(res, err)
}

func (a *App) Resync(ctx context.Context) error {
	a.documents(ctx)
	res, err := a.cvs.Resync(ctx)
	return a.report(res, err)
}

func (a *App) Compare(ctx context.Context, leftID, rightID string) error {
	left, err := a.find(ctx, leftID)
	if err != nil {
		return err
	}
	right, err := a.find(ctx, rightID)
	if err != nil {
		return err
	}
	c := query.Compare(left, right)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\t%s\tDELTA\n", left.Title, right.Title)
	for _, row := range []struct {
		name string
		n    query.Count
	}{{"Skills", c.Skills}, {"Experience", c.Experiences}, {"Education", c.Educations}} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%+d\n", row.name, row.n.Left, row.n.Right, row.n.Delta())
	}
	return tw.Flush()
}

// report prints the outcome of a mutation. When only the sync failed the
// local change is announced and the sync error returned.
func (a *App) report(res services.Result, err error) error {
	if err == nil {
		a.println(res.Message)
		return nil
	}
	if res.Saved {
		a.println("Changes saved locally, but the backend sync failed.")
	}
	return err
}

func (a *App) find(ctx context.Context, id string) (models.CvDocument, error) {
	a.documents(ctx)
	if id == "" {
		if d, ok := a.store.Primary(); ok {
			return d, nil
		}
		return models.CvDocument{}, fmt.Errorf("no CVs yet")
	}
	d, ok := a.store.Get(id)
	if !ok {
		return models.CvDocument{}, fmt.Errorf("cv %s: %w", id, common.ErrNotFound)
	}
	return d, nil
}

// draftFlags binds the editable CV fields to a command.
type draftFlags struct {
	title, profession, city, email, phone string
	skills, experiences, educations       []string
	interactive                           bool
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "CV title")
	fs.StringVar(&f.profession, "profession", "", "profession shown in the header")
	fs.StringVar(&f.city, "city", "", "city")
	fs.StringVar(&f.email, "email", "", "contact email")
	fs.StringVar(&f.phone, "phone", "", "phone")
	fs.StringArrayVar(&f.skills, "skill", nil, "skill as Name[:Low|Medium|High], repeatable")
	fs.StringArrayVar(&f.experiences, "experience", nil, "experience as Company|Position|Start|End|Description, repeatable")
	fs.StringArrayVar(&f.educations, "education", nil, "education as Institution|Profession|Degree|Start|End, repeatable")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "prompt for every field")
}

// apply overlays the flags that were set on d.
func (f *draftFlags) apply(cmd *cobra.Command, d *services.Draft) error {
	fs := cmd.Flags()
	for name, dst := range map[string]*string{
		"title": &d.Title, "profession": &d.Profession, "city": &d.City, "email": &d.ContactEmail, "phone": &d.Phone,
	} {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}

	var err error
	if fs.Changed("skill") {
		if d.Skills, err = parseRows(f.skills, parseSkill); err != nil {
			return err
		}
	}
	if fs.Changed("experience") {
		if d.Experiences, err = parseRows(f.experiences, parseExperience); err != nil {
			return err
		}
	}
	if fs.Changed("education") {
		if d.Educations, err = parseRows(f.educations, parseEducation); err != nil {
			return err
		}
	}
	return nil
}

// prompt asks for every field, offering the values in d as defaults.
func (a *App) prompt(d *services.Draft) error {
	var err error
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Title", &d.Title}, {"Profession", &d.Profession}, {"City", &d.City},
		{"Contact email", &d.ContactEmail}, {"Phone", &d.Phone},
	} {
		if *f.dst, err = GetDefaultText(a.reader, f.label, *f.dst, a.out); err != nil {
			return err
		}
	}

	skills, err := promptRows(a, "Skills, one Name[:Level] per line", d.Skills, formatSkill)
	if err != nil {
		return err
	}
	if skills != nil {
		if d.Skills, err = parseRows(skills, parseSkill); err != nil {
			return err
		}
	}

	exps, err := promptRows(a, "Work experience, one Company|Position|Start|End|Description per line", d.Experiences, formatExperience)
	if err != nil {
		return err
	}
	if exps != nil {
		if d.Experiences, err = parseRows(exps, parseExperience); err != nil {
			return err
		}
	}

	edus, err := promptRows(a, "Education, one Institution|Profession|Degree|Start|End per line", d.Educations, formatEducation)
	if err != nil {
		return err
	}
	if edus != nil {
		if d.Educations, err = parseRows(edus, parseEducation); err != nil {
			return err
		}
	}
	return nil
}

// promptRows shows the current rows and reads replacements. nil means keep.
func promptRows[T any](a *App, label string, current []T, format func(T) string) ([]string, error) {
	if len(current) > 0 {
		a.println(label + " (current values below, empty input keeps them):")
		for _, r := range current {
			a.println("  " + format(r))
		}
	}
	lines, err := GetLines(a.reader, label, a.out)
	if err != nil || len(lines) == 0 {
		return nil, err
	}
	return lines, nil
}
