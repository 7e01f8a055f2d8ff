package catalog

import (
	"context"

	"bookworld/internal/platform/openlibrary"

	"go.uber.org/zap"
)

const maxResolvedAuthors = 3

// Client is the subset of the Open Library client the catalog needs.
type Client interface {
	Search(ctx context.Context, params openlibrary.SearchParams) (*openlibrary.SearchResponse, error)
	GetWork(ctx context.Context, id string) (*openlibrary.Work, error)
	GetAuthor(ctx context.Context, authorKey string) (*openlibrary.AuthorDetails, error)
	CoverURL(id int, size openlibrary.CoverSize) string
}

type Service struct {
	client Client
	log    *zap.Logger
}

func NewService(client Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// Search runs a catalog query and returns only results that carry a cover.
func (s *Service) Search(ctx context.Context, params openlibrary.SearchParams) ([]BookSummary, error) {
	res, err := s.client.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]BookSummary, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if doc.CoverI <= 0 {
			continue
		}
		b := BookSummary{
			ID:               WorkID(doc.Key),
			Title:            doc.Title,
			CoverID:          doc.CoverI,
			CoverURL:         s.client.CoverURL(doc.CoverI, openlibrary.CoverMedium),
			Rating:           roundRating(doc.RatingsAverage),
			Subjects:         firstN(doc.Subjects, summarySubjectMax),
			FirstPublishYear: doc.FirstPublishYear,
		}
		if len(doc.AuthorNames) > 0 {
			b.Author = doc.AuthorNames[0]
		}
		out = append(out, b)
	}
	return out, nil
}

// GetByID loads one work. Author names are resolved best effort.
func (s *Service) GetByID(ctx context.Context, id string) (BookDetail, error) {
	work, err := s.client.GetWork(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}

	d := BookDetail{
		ID:               WorkID(id),
		Title:            work.Title,
		CoverIDs:         work.Covers,
		Description:      NormalizeDescription(work.Description.String()),
		Subjects:         firstN(work.Subjects, detailSubjectMax),
		FirstPublishDate: work.FirstPublishDate,
		PageCount:        work.NumberOfPages,
	}
	if len(work.Covers) > 0 {
		d.CoverURL = s.client.CoverURL(work.Covers[0], openlibrary.CoverLarge)
	}
	d.Authors = s.resolveAuthors(ctx, work.Authors)
	return d, nil
}

func (s *Service) resolveAuthors(ctx context.Context, refs []openlibrary.AuthorRef) []string {
	var names []string
	for _, ref := range refs {
		if len(names) == maxResolvedAuthors {
			break
		}
		if ref.Name != "" {
			names = append(names, ref.Name)
			continue
		}
		if ref.Author.Key == "" {
			continue
		}
		author, err := s.client.GetAuthor(ctx, ref.Author.Key)
		if err != nil {
			s.log.Warn("resolve author", zap.String("author_key", ref.Author.Key), zap.Error(err))
			continue
		}
		if author.Name != "" {
			names = append(names, author.Name)
		}
	}
	return names
}
