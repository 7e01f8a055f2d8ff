package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org"
	DefaultTimeout   = 15 * time.Second
)

var (
	ErrNotFound = errors.New("openlibrary: not found")
	ErrNetwork  = errors.New("openlibrary: network error")
	ErrDecode   = errors.New("openlibrary: decode error")
)

type Options struct {
	BaseURL    string
	CoversURL  string
	UserAgent  string
	RPS        float64
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = DefaultCoversURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		httpClient: httpClient,
		userAgent:  opts.UserAgent,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		coversURL:  strings.TrimRight(opts.CoversURL, "/"),
	}
	// RPS of zero leaves the client unthrottled.
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return c
}

// SearchParams is the query string of search.json.
type SearchParams struct {
	Q           string
	Limit       int
	Sort        string
	PublishYear string // "YYYY-YYYY", omitted when empty
}

func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Q)
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.PublishYear != "" {
		v.Set("publish_year", p.PublishYear)
	}
	return v
}

// SearchDoc is a single entry of the search.json docs array.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	CoverI           int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	RatingsAverage   float64  `json:"ratings_average"`
	Subjects         []string `json:"subject"`
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

type AuthorRef struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
	Name string `json:"name"`
}

// Work matches works/{id}.json
type Work struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Authors          []AuthorRef `json:"authors"`
	Covers           []int       `json:"covers"`
	Description      TextValue   `json:"description"`
	Subjects         []string    `json:"subjects"`
	FirstPublishDate string      `json:"first_publish_date"`
	NumberOfPages    int         `json:"number_of_pages"`
}

func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	u := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Values().Encode())

	var res SearchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetWork(ctx context.Context, id string) (*Work, error) {
	// id is usually "OL..W" but "/works/OL..W" is accepted too
	key := strings.TrimPrefix(id, "/works/")
	if key == "" {
		return nil, fmt.Errorf("work %q: %w", id, ErrNotFound)
	}
	u := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(key))

	var res Work
	if err := c.get(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("work %s: %w", key, err)
	}
	return &res, nil
}

// AuthorDetails matches authors/{key}.json
type AuthorDetails struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	PersonalName string    `json:"personal_name"`
	BirthDate    string    `json:"birth_date"`
	Bio          TextValue `json:"bio"`
}

func (c *Client) GetAuthor(ctx context.Context, authorKey string) (*AuthorDetails, error) {
	// authorKey is usually "/authors/OL..." or just "OL..."
	key := strings.TrimPrefix(authorKey, "/authors/")
	u := fmt.Sprintf("%s/authors/%s.json", c.baseURL, url.PathEscape(key))

	var res AuthorDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("author %s: %w", key, err)
	}
	return &res, nil
}

type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

// CoverURL returns the image address for a numeric cover id, or "" when id is not positive.
func (c *Client) CoverURL(id int, size CoverSize) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, id, size)
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status code: %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
