package profile

import (
	"context"

	"bookworld/internal/readinglist"
)

type Service struct {
	readingListService *readinglist.Service
}

func NewService(readingListService *readinglist.Service) *Service {
	return &Service{readingListService: readingListService}
}

// Get summarises the reading list stored for visitorID.
func (s *Service) Get(ctx context.Context, visitorID string) (Profile, error) {
	ids, err := s.readingListService.For(visitorID).List(ctx)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		VisitorID: visitorID,
		Items:     ids,
		Stats:     Stats{ListCount: len(ids)},
	}, nil
}
