package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bookworld/internal/catalog"
	"bookworld/internal/config"
	"bookworld/internal/detail"
	"bookworld/internal/discovery"
	"bookworld/internal/notify"
	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/readinglist"

	"go.uber.org/zap"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	storePath string
	baseURL   string
	timeout   time.Duration
	verbose   bool

	// client overrides the Open Library client built from flags.
	client catalog.Client
	log    *zap.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, log: zap.NewNop()}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "bookworld", "lists.json")
}

func (a *app) setup() error {
	config.LoadEnvFiles()
	if a.verbose {
		log, err := config.NewLogger(config.Config{Env: config.EnvDevelopment, LogLevel: "debug"})
		if err != nil {
			return err
		}
		a.log = log
	}
	if a.client == nil {
		a.client = openlibrary.NewClient(openlibrary.Options{
			BaseURL:   a.baseURL,
			UserAgent: "BookWorld-CLI/1.0",
			Timeout:   a.timeout,
		})
	}
	return nil
}

func (a *app) newCatalog() *catalog.Service {
	return catalog.NewService(a.client, a.log.Named("catalog"))
}

func (a *app) store() *readinglist.Store {
	return readinglist.NewStore(readinglist.NewFileKV(a.storePath), readinglist.StorageKey, a.log.Named("readinglist"))
}

func (a *app) newDiscovery() *discovery.Service {
	return discovery.NewService(a.newCatalog(), a.log.Named("discovery"))
}

func (a *app) newDetail() *detail.Service {
	return detail.NewService(a.newCatalog(), a.log.Named("detail"))
}

// withNotifier runs fn with a notifier and prints whatever it collected.
func (a *app) withNotifier(ctx context.Context, fn func(ctx context.Context) error) error {
	n := notify.New()
	err := fn(notify.NewContext(ctx, n))
	for _, item := range n.Drain() {
		if item.Variant == notify.VariantDestructive {
			fmt.Fprintf(a.errOut, "! %s: %s\n", item.Title, item.Description)
			continue
		}
		fmt.Fprintf(a.errOut, "* %s: %s\n", item.Title, item.Description)
	}
	return err
}
