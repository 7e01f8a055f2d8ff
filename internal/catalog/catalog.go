package catalog

import (
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	UnknownAuthor     = "Unknown Author"
	NoDescription     = "No description available."
	summarySubjectMax = 2
	detailSubjectMax  = 8
)

// BookSummary is one search result card.
type BookSummary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Author           string   `json:"author,omitempty"`
	CoverID          int      `json:"cover_id,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
}

// BookDetail is a single work as shown on its detail page.
type BookDetail struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	CoverIDs         []int    `json:"cover_ids,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	Description      string   `json:"description"`
	Subjects         []string `json:"subjects,omitempty"`
	FirstPublishDate string   `json:"first_publish_date,omitempty"`
	PageCount        int      `json:"page_count,omitempty"`
}

// WorkID strips the "/works/" prefix the catalog puts on keys.
func WorkID(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/works/")
}

// descriptionPolicy strips every tag; descriptions are plain text or markdown.
var descriptionPolicy = bluemonday.StrictPolicy()

// plainText strips markup and decodes entities, repeating until stable so
// escaped tags cannot survive as live markup.
func plainText(s string) string {
	for i := 0; i < 8; i++ {
		next := html.UnescapeString(descriptionPolicy.Sanitize(s))
		if next == s {
			return next
		}
		s = next
	}
	// still changing: give up on decoding and keep the escaped form
	return descriptionPolicy.Sanitize(s)
}

// NormalizeDescription returns the display text for a work description.
func NormalizeDescription(s string) string {
	s = strings.TrimSpace(plainText(s))
	if s == "" {
		return NoDescription
	}
	return s
}

// DisplayAuthor returns the card author line.
func (b BookSummary) DisplayAuthor() string {
	if b.Author == "" {
		return UnknownAuthor
	}
	return b.Author
}

func roundRating(r float64) float64 {
	return math.Round(r*10) / 10
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
