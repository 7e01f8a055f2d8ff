package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"bookworld/internal/catalog"
	"bookworld/internal/config"
	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/readinglist"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type options struct {
	Visitors   int
	PerVisitor int
	Subjects   []string
	// Legacy writes every list with each entry doubled, as lists were
	// stored before adds were deduplicated.
	Legacy bool
}

// searcher is the part of catalog.Service the seeder needs.
type searcher interface {
	Search(ctx context.Context, params openlibrary.SearchParams) ([]catalog.BookSummary, error)
}

func main() {
	var (
		visitors   = flag.Int("visitors", 10, "Number of visitor lists to create")
		perVisitor = flag.Int("per-visitor", 5, "Books per list")
		subjects   = flag.String("subjects", "fantasy,mystery,history", "Comma separated subjects to draw books from")
		legacy     = flag.Bool("legacy", false, "Write lists with duplicate entries")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN is required to seed reading lists")
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	client := openlibrary.NewClient(openlibrary.Options{
		BaseURL:   cfg.OpenLibraryBaseURL,
		UserAgent: cfg.OpenLibraryUserAgent,
		RPS:       cfg.OpenLibraryRPS,
		Timeout:   cfg.OpenLibraryTimeout,
	})
	kv := readinglist.NewPostgresKV(pool, 5*time.Second)

	ids, err := seed(ctx, catalog.NewService(client, logger), kv, options{
		Visitors:   *visitors,
		PerVisitor: *perVisitor,
		Subjects:   splitSubjects(*subjects),
		Legacy:     *legacy,
	}, logger)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	logger.Info("seeded reading lists", zap.Int("visitors", len(ids)))
}

// seed draws a pool of works from the subjects and writes a random sample
// of them to each new visitor's list. It returns the visitor IDs.
func seed(ctx context.Context, s searcher, kv readinglist.KV, opts options, logger *zap.Logger) ([]string, error) {
	var pool []string
	seen := make(map[string]bool)
	for _, subject := range opts.Subjects {
		books, err := s.Search(ctx, openlibrary.SearchParams{Q: "subject:" + subject, Limit: 100})
		if err != nil {
			return nil, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		for _, b := range books {
			if !seen[b.ID] {
				seen[b.ID] = true
				pool = append(pool, b.ID)
			}
		}
		logger.Debug("collected works", zap.String("subject", subject), zap.Int("pool", len(pool)))
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no works found for subjects %v", opts.Subjects)
	}

	svc := readinglist.NewService(kv, logger)
	visitors := make([]string, 0, opts.Visitors)
	for i := 0; i < opts.Visitors; i++ {
		visitorID := uuid.NewString()
		store := svc.For(visitorID)

		n := min(opts.PerVisitor, len(pool))
		for _, j := range rand.Perm(len(pool))[:n] {
			if err := store.Add(ctx, pool[j]); err != nil {
				return nil, err
			}
		}
		if opts.Legacy {
			if err := doubleEntries(ctx, kv, store); err != nil {
				return nil, err
			}
		}
		visitors = append(visitors, visitorID)
	}
	return visitors, nil
}

// doubleEntries rewrites the list bypassing Store so duplicates survive.
func doubleEntries(ctx context.Context, kv readinglist.KV, store *readinglist.Store) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	doubled := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		doubled = append(doubled, id, id)
	}
	b, err := json.Marshal(doubled)
	if err != nil {
		return err
	}
	return kv.Set(ctx, store.Key(), string(b))
}

func splitSubjects(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
