// Package detail drives the work detail page: one catalog work plus the
// add/remove control for the visitor's reading list.
package detail

import (
	"context"
	"errors"

	"bookworld/internal/catalog"
	"bookworld/internal/notify"
	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/readinglist"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateNotFound State = "not_found"
)

const (
	LabelAdd    = "Add to List"
	LabelInList = "In List"
)

// View is the detail page at one moment.
type View struct {
	ID     string              `json:"id"`
	State  State               `json:"state"`
	Book   *catalog.BookDetail `json:"book,omitempty"`
	InList bool                `json:"in_list"`
	Label  string              `json:"label"`
}

func newView(id string) View {
	return View{ID: id, State: StateLoading, Label: LabelAdd}
}

func (v *View) setMembership(inList bool) {
	v.InList = inList
	v.Label = LabelAdd
	if inList {
		v.Label = LabelInList
	}
}

// Catalog loads a single work.
type Catalog interface {
	GetByID(ctx context.Context, id string) (catalog.BookDetail, error)
}

type Service struct {
	catalog Catalog
	log     *zap.Logger
}

func NewService(c Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{catalog: c, log: log}
}

// Load fetches the work and reads its list membership at the same time.
// A failed fetch of any kind leaves the view not found with exactly one
// notification; a failed membership read only logs.
func (s *Service) Load(ctx context.Context, id string, list *readinglist.Store) View {
	v := newView(id)

	var (
		book      catalog.BookDetail
		fetchErr  error
		inList    bool
		memberErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		book, fetchErr = s.catalog.GetByID(ctx, id)
		return nil
	})
	g.Go(func() error {
		inList, memberErr = list.IsMember(ctx, id)
		return nil
	})
	_ = g.Wait()

	if memberErr != nil {
		s.log.Warn("read reading list membership", zap.String("work_id", id), zap.Error(memberErr))
		inList = false
	}
	v.setMembership(inList)

	if fetchErr != nil {
		if errors.Is(fetchErr, openlibrary.ErrNotFound) {
			s.log.Info("work not found", zap.String("work_id", id))
		} else {
			s.log.Warn("fetch work", zap.String("work_id", id), zap.Error(fetchErr))
		}
		notify.FromContext(ctx).Error("Error", "Failed to fetch book details.")
		v.State = StateNotFound
		return v
	}

	v.Book = &book
	v.State = StateReady
	return v
}

// Toggle flips the work's membership and updates v from the store's answer
// without reading the list again.
func (s *Service) Toggle(ctx context.Context, v *View, list *readinglist.Store) error {
	inList, err := list.Toggle(ctx, v.ID)
	if err != nil {
		s.log.Error("toggle reading list", zap.String("work_id", v.ID), zap.Error(err))
		notify.FromContext(ctx).Error("Error", "Failed to update your list.")
		return err
	}
	v.setMembership(inList)

	if inList {
		notify.FromContext(ctx).Info("Added to list", "Book has been added to your list.")
	} else {
		notify.FromContext(ctx).Info("Removed from list", "Book has been removed from your list.")
	}
	return nil
}
