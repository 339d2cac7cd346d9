package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/eportfolio/internal/client/analytics"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/render"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ErrNoShareSink is returned by Publish when no S3 bucket is configured.
var ErrNoShareSink = errors.New("publishing is not configured")

const bulkLimit = 4

type Exporter struct {
	files   Sink
	share   Sink
	tracker *analytics.Tracker
	logger  logging.Logger
}

// NewExporter wires the sinks. share may be nil; tracker may be nil to
// skip counting.
func NewExporter(files, share Sink, tracker *analytics.Tracker, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{files: files, share: share, tracker: tracker, logger: logger}
}

// Render lays doc out and returns the PDF bytes with the file name.
func Render(doc models.CvDocument) ([]byte, string, error) {
	layout := render.Layout(doc)
	var buf bytes.Buffer
	if err := layout.WritePDF(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), layout.FileName, nil
}

// Export writes doc as a PDF file and counts a CV download.
func (e *Exporter) Export(ctx context.Context, userID string, doc models.CvDocument) (Location, error) {
	return e.export(ctx, userID, doc, "")
}

func (e *Exporter) export(ctx context.Context, userID string, doc models.CvDocument, name string) (Location, error) {
	loc, err := e.deliver(ctx, e.files, doc, name)
	if err != nil {
		return Location{}, err
	}
	e.count(ctx, userID, analytics.CVDownloads)
	return loc, nil
}

// ExportAll exports every document concurrently. Locations are returned in
// the order of docs. Documents sharing a title get numbered file names
// ("My_CV.pdf", "My_CV-2.pdf") so no export replaces another.
func (e *Exporter) ExportAll(ctx context.Context, userID string, docs []models.CvDocument) ([]Location, error) {
	locs := make([]Location, len(docs))
	names := uniqueNames(docs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkLimit)
	for i, d := range docs {
		g.Go(func() error {
			loc, err := e.export(gctx, userID, d, names[i])
			if err != nil {
				return fmt.Errorf("export %q: %w", d.Title, err)
			}
			locs[i] = loc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locs, nil
}

// Publish uploads doc to the share sink and counts a share.
func (e *Exporter) Publish(ctx context.Context, userID string, doc models.CvDocument) (Location, error) {
	if e.share == nil {
		return Location{}, ErrNoShareSink
	}
	loc, err := e.deliver(ctx, e.share, doc, "")
	if err != nil {
		return Location{}, err
	}
	e.count(ctx, userID, analytics.ShareClicks)
	return loc, nil
}

// deliver renders doc and hands it to sink under name, or under the name
// derived from the title when name is empty.
func (e *Exporter) deliver(ctx context.Context, sink Sink, doc models.CvDocument, name string) (Location, error) {
	data, derived, err := Render(doc)
	if err != nil {
		return Location{}, fmt.Errorf("render %s: %w", doc.ID, err)
	}
	if name == "" {
		name = derived
	}
	loc, err := sink.Put(ctx, name, data)
	if err != nil {
		return Location{}, err
	}
	e.logger.Info(ctx, "cv exported", "id", doc.ID, "path", loc.Path)
	return loc, nil
}

// uniqueNames returns one file name per document, numbering repeats in
// document order.
func uniqueNames(docs []models.CvDocument) []string {
	names := make([]string, len(docs))
	taken := make(map[string]bool, len(docs))
	for i, d := range docs {
		name := render.FileName(d.Title)
		base := strings.TrimSuffix(name, ".pdf")
		for n := 2; taken[name]; n++ {
			name = base + "-" + strconv.Itoa(n) + ".pdf"
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func (e *Exporter) count(ctx context.Context, userID string, c analytics.Counter) {
	if e.tracker == nil || userID == "" {
		return
	}
	if _, err := e.tracker.Bump(ctx, userID, c); err != nil {
		e.logger.Warn(ctx, "analytics not updated", "counter", c, "error", err)
	}
}
