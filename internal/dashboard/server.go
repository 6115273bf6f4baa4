// Package dashboard serves the planning board over HTTP: a browser UI,
// a JSON API, and per-variant SSE streams fed by the store's push
// subscriptions.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/config"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Store  *store.Store
	Config *config.Config
	Port   int
	Out    io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully and closes its boards.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("dashboard: store is required")
	}
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	boards := make(map[string]*board.Board, len(models.Variants))
	for _, variant := range models.Variants {
		b, err := board.Open(opts.Store, board.Opts{Variant: variant, Gap: opts.Config.Ordering.Gap})
		if err != nil {
			for _, open := range boards {
				open.Close()
			}
			return fmt.Errorf("dashboard: open %s board: %w", variant, err)
		}
		boards[variant] = b
	}
	defer func() {
		for _, b := range boards {
			b.Close()
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	a := &api{store: opts.Store, cfg: opts.Config, boards: boards}
	registerRoutes(router, a)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Kontent board running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
