// Package discovery turns the discover page filters into one catalog query
// and tracks what each visitor's discover page is showing.
package discovery

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"bookworld/internal/httpx"
	"bookworld/internal/platform/openlibrary"

	"github.com/go-playground/validator/v10"
)

type SortMode string

const (
	SortRating SortMode = "rating"
	SortNew    SortMode = "new"
	SortOld    SortMode = "old"
	SortTitle  SortMode = "title"
)

var SortModes = []SortMode{SortRating, SortNew, SortOld, SortTitle}

const GenreAll = "all"

// Genres are the discover page tabs. Each maps to a catalog subject.
var Genres = []string{
	GenreAll, "fiction", "fantasy", "science_fiction", "mystery", "romance",
	"horror", "thriller", "biography", "history", "poetry", "young_adult",
}

const (
	GenreLimit = 24
	AllLimit   = 300

	newReleaseWindow = 5
	oldestYear       = 1800
	oldCutoffYear    = 1990
)

var defaultTerms = map[SortMode]string{
	SortRating: "bestseller",
	SortNew:    "new releases",
	SortOld:    "classic literature",
	SortTitle:  "novel",
}

func init() {
	httpx.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return isGenre(fl.Field().String())
	})
}

func isGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

// Filters is everything the discover page lets the user change.
type Filters struct {
	Query string   `json:"q" validate:"max=200"`
	Genre string   `json:"genre" validate:"genre"`
	Sort  SortMode `json:"sort" validate:"oneof=rating new old title"`
}

// Normalize trims the text and fills in default genre and sort.
func (f Filters) Normalize() Filters {
	f.Query = strings.TrimSpace(f.Query)
	f.Genre = strings.ToLower(strings.TrimSpace(f.Genre))
	if f.Genre == "" {
		f.Genre = GenreAll
	}
	f.Sort = SortMode(strings.ToLower(strings.TrimSpace(string(f.Sort))))
	if f.Sort == "" {
		f.Sort = SortRating
	}
	return f
}

// FiltersFromValues reads q, genre and sort from a discover URL query.
func FiltersFromValues(v url.Values) (Filters, []httpx.ErrorDetail) {
	f := Filters{
		Query: v.Get("q"),
		Genre: v.Get("genre"),
		Sort:  SortMode(v.Get("sort")),
	}.Normalize()
	if details := httpx.ValidateStruct(f); len(details) > 0 {
		return Filters{}, details
	}
	return f, nil
}

// Values is the inverse of FiltersFromValues. Defaults are left out so a
// shared link stays short.
func (f Filters) Values() url.Values {
	f = f.Normalize()
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Genre != GenreAll {
		v.Set("genre", f.Genre)
	}
	if f.Sort != SortRating {
		v.Set("sort", string(f.Sort))
	}
	return v
}

// URL is the navigable discover link for these filters.
func (f Filters) URL() string {
	if enc := f.Values().Encode(); enc != "" {
		return "/discover?" + enc
	}
	return "/discover"
}

// WithQuery returns a copy with the search text changed and the other filters untouched.
func (f Filters) WithQuery(q string) Filters {
	f.Query = q
	return f.Normalize()
}

func (f Filters) WithGenre(g string) Filters {
	f.Genre = g
	return f.Normalize()
}

func (f Filters) WithSort(s SortMode) Filters {
	f.Sort = s
	return f.Normalize()
}

// SearchTerm builds the q parameter.
func (f Filters) SearchTerm() string {
	f = f.Normalize()
	var subject string
	if f.Genre != GenreAll {
		subject = "subject:" + f.Genre
	}

	switch {
	case f.Query != "" && subject != "":
		return f.Query + " AND " + subject
	case f.Query != "":
		return f.Query
	case subject != "":
		return subject
	default:
		return defaultTerms[f.Sort]
	}
}

// Params builds the full catalog query. now fixes the new-release window.
func (f Filters) Params(now time.Time) openlibrary.SearchParams {
	f = f.Normalize()
	p := openlibrary.SearchParams{
		Q:     f.SearchTerm(),
		Limit: AllLimit,
		Sort:  string(f.Sort),
	}
	if f.Genre != GenreAll {
		p.Limit = GenreLimit
	}

	switch f.Sort {
	case SortNew:
		year := now.Year()
		p.PublishYear = fmt.Sprintf("%d-%d", year-newReleaseWindow, year)
	case SortOld:
		p.PublishYear = fmt.Sprintf("%d-%d", oldestYear, oldCutoffYear)
	}
	return p
}
