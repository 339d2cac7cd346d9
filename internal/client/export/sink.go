// Package export renders CV documents to PDF and delivers the files to a
// local directory or an S3 bucket.
package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/eportfolio/internal/filex"
)

// Location tells where an artifact ended up. URL is set when the artifact
// can be fetched over HTTP.
type Location struct {
	Path string
	URL  string
}

type Sink interface {
	Put(ctx context.Context, name string, data []byte) (Location, error)
}

// DirSink writes artifacts into a local directory, replacing files with the
// same name.
type DirSink struct {
	Dir string
}

func (s DirSink) Put(ctx context.Context, name string, data []byte) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return Location{}, err
	}
	path, err := filex.WriteFileAtomic(dir, filepath.Base(name), data)
	if err != nil {
		return Location{}, fmt.Errorf("export %s: %w", name, err)
	}
	return Location{Path: path}, nil
}
