package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/eportfolio/internal/client/analytics"
	"github.com/dmitrijs2005/eportfolio/internal/client/export"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/query"
)

// Export writes the CV id (the primary one when id is empty) as a PDF, or
// every CV when all is set.
func (a *App) Export(ctx context.Context, id string, all bool) error {
	if all {
		docs := a.documents(ctx)
		if len(docs) == 0 {
			return errors.New("no CVs yet")
		}
		locs, err := a.exporter.ExportAll(ctx, a.userID, docs)
		if err != nil {
			return err
		}
		for _, l := range locs {
			a.printf("PDF written to %s\n", l.Path)
		}
		return nil
	}

	doc, err := a.find(ctx, id)
	if err != nil {
		return err
	}
	loc, err := a.exporter.Export(ctx, a.userID, doc)
	if err != nil {
		return err
	}
	a.printf("PDF written to %s\n", loc.Path)
	return nil
}

// Publish uploads the PDF of a CV and prints a share link.
func (a *App) Publish(ctx context.Context, id string) error {
	doc, err := a.find(ctx, id)
	if err != nil {
		return err
	}
	loc, err := a.exporter.Publish(ctx, a.userID, doc)
	if errors.Is(err, export.ErrNoShareSink) {
		return fmt.Errorf("%w: set EPORTFOLIO_S3_BUCKET or --s3-bucket", err)
	}
	if err != nil {
		return err
	}
	a.printf("Share link (valid for %s):\n%s\n", a.cfg.S3.LinkTTL, loc.URL)
	return nil
}

// Stats prints the local activity counters and achievement badges. Project
// and certificate totals come from the public profile when it is reachable.
func (a *App) Stats(ctx context.Context) error {
	if a.userID == "" {
		return errors.New("statistics need a user; sign in or pass --user")
	}
	snap, err := a.tracker.Read(ctx, a.userID)
	if err != nil {
		return err
	}

	tot := analytics.Totals{Documents: len(a.documents(ctx))}
	if p, err := a.remote.FetchPortfolio(ctx, a.userID); err != nil {
		a.logger.Debug(ctx, "portfolio totals unavailable", "error", err)
	} else if p != nil {
		tot.Projects, tot.Certificates = len(p.Projects), len(p.Certificates)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, c := range analytics.Counters {
		fmt.Fprintf(tw, "%s\t%d\n", c, snap.Get(c))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if months := snap.Months(); len(months) > 0 {
		a.println("\nMonthly activity:")
		for _, m := range months {
			a.printf("  %s  %d\n", m.Month, m.Count)
		}
	}

	a.println("\nBadges:")
	for _, b := range analytics.Badges(tot, snap) {
		mark := "[ ]"
		if b.Unlocked {
			mark = "[x]"
		}
		a.printf("  %s %s: %s\n", mark, b.Title, b.Description)
	}
	return nil
}

// ShowPublic prints the public profile of userID with its project and
// certificate lists ordered by p.
func (a *App) ShowPublic(ctx context.Context, userID string, projects, certs query.Params) error {
	p, err := a.cvs.Public(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		a.printf("User %s has no public profile.\n", userID)
		return nil
	}

	a.printf("%s <%s>\n", p.FullName, p.Email)
	if p.CV == nil {
		a.println("No CV published.")
	} else {
		printRecord(a, *p.CV)
	}

	a.println("\nProjects:")
	for _, pr := range query.Projects(p.Projects, projects) {
		a.printf("  %s%s  %s\n", pin(pr.IsPinnedItem()), pr.Title, pr.StackSummary)
	}
	a.println("\nCertificates:")
	for _, c := range query.Certificates(p.Certificates, certs) {
		a.printf("  %s%s  %s %s\n", pin(c.IsPinnedItem()), c.Name, c.IssuedBy, c.IssueDate)
	}
	return nil
}

func printRecord(a *App, r models.CvRecord) {
	a.printf("%s, %s\n", r.Profession, r.City)
	if r.ContactEmail != "" || r.Phone != "" {
		a.printf("%s %s\n", r.ContactEmail, r.Phone)
	}
	for _, s := range r.Skills {
		a.printf("  * %s\n", s)
	}
	for _, e := range r.Experiences {
		a.printf("  %s @ %s (%s)\n", e.Position, e.Company, e.Period)
	}
	for _, e := range r.Educations {
		a.printf("  %s, %s (%s)\n", e.Institution, e.Degree, e.Year)
	}
}

func pin(pinned bool) string {
	if pinned {
		return "[pinned] "
	}
	return ""
}

func (a *App) Login(ctx context.Context, token string) error {
	if token == "" {
		var err error
		if token, err = GetSecret(a.reader, "Paste your access token", a.out); err != nil {
			return err
		}
	}
	id, err := a.auth.Login(ctx, token)
	if err != nil {
		return err
	}
	if id.UserID != "" && a.cfg.UserID == "" {
		name := a.cfg.UserName
		if name == "" {
			name = id.Name
		}
		a.setUser(id.UserID, name)
	}
	a.println("Token saved.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Token removed.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	id, err := a.auth.Whoami(ctx)
	if err != nil {
		return err
	}
	if id.UserID == "" {
		a.println("Signed in with an opaque token.")
		return nil
	}
	a.printf("User: %s\n", id.UserID)
	if id.Email != "" {
		a.printf("Email: %s\n", id.Email)
	}
	if !id.ExpiresAt.IsZero() {
		a.printf("Expires: %s\n", id.ExpiresAt.Local().Format(timeLayout))
	}
	return nil
}
