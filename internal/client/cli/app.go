package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/eportfolio/internal/client/analytics"
	"github.com/dmitrijs2005/eportfolio/internal/client/auth"
	"github.com/dmitrijs2005/eportfolio/internal/client/config"
	"github.com/dmitrijs2005/eportfolio/internal/client/documents"
	"github.com/dmitrijs2005/eportfolio/internal/client/export"
	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/remote"
	"github.com/dmitrijs2005/eportfolio/internal/client/services"
	"github.com/dmitrijs2005/eportfolio/internal/client/storage"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
)

// App wires the client layers for one user session.
type App struct {
	cfg    *config.Config
	logger logging.Logger

	kv       *storage.SQLite
	tokens   auth.TokenSource
	remote   remote.Client
	store    *documents.Store
	tracker  *analytics.Tracker
	cvs      services.CvService
	auth     services.AuthService
	exporter *export.Exporter

	userID   string
	userName string
	loaded   bool

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	kv, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	tokens := auth.Chain{auth.Static(cfg.Token), auth.File{Path: cfg.TokenFile}}

	var share export.Sink
	if cfg.PublishEnabled() {
		share = export.NewS3Sink(export.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			LinkTTL:      cfg.S3.LinkTTL,
		})
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		tokens:  tokens,
		remote:  remote.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, tokens, logger),
		store:   documents.New(kv, documents.WithLogger(logger)),
		tracker: analytics.NewTracker(kv, logger),
		auth:    services.NewAuthService(cfg.TokenFile, tokens),
		reader:  bufio.NewReader(in),
		out:     out,
	}
	a.exporter = export.NewExporter(export.DirSink{Dir: cfg.ExportDir}, share, a.tracker, logger)
	a.setUser(a.identity(ctx))
	return a, nil
}

// identity resolves the user from config, falling back to the token claims.
func (a *App) identity(ctx context.Context) (string, string) {
	userID, userName := a.cfg.UserID, a.cfg.UserName
	tok, err := a.tokens.Token(ctx)
	if err != nil || tok == "" {
		return userID, userName
	}
	if id, err := auth.Inspect(tok); err == nil {
		if userID == "" {
			userID = id.UserID
		}
		if userName == "" {
			userName = id.Name
		}
	}
	return userID, userName
}

func (a *App) setUser(userID, userName string) {
	a.userID, a.userName = userID, userName
	a.cvs = services.NewCvService(a.store, a.remote,
		services.WithUser(userID, userName),
		services.WithLogger(a.logger.With("user", userID)),
		services.WithTracker(a.tracker),
	)
	a.loaded = false
}

func (a *App) Close() error {
	return a.kv.Close()
}

// documents loads the collection on first use. A failed seed is reported
// and the local collection is used as it is.
func (a *App) documents(ctx context.Context) []models.CvDocument {
	if !a.loaded {
		if _, err := a.cvs.Bootstrap(ctx); err != nil {
			a.printf("Could not import your published CV: %s\n", services.Describe(err))
		}
		a.loaded = true
	}
	return a.store.List()
}

func (a *App) status() string {
	user := a.userID
	if a.userName != "" {
		user = a.userName
	}
	if user == "" {
		return ""
	}
	return "(" + user + ")"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
