package openlibrary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:   srv.URL,
		CoversURL: "https://covers.example.org",
		UserAgent: "bookworld-test",
		Timeout:   2 * time.Second,
	})
}

func TestClient_Search(t *testing.T) {
	t.Run("encodes params and decodes docs", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search.json", r.URL.Path)
			assert.Equal(t, "dune AND subject:fantasy", r.URL.Query().Get("q"))
			assert.Equal(t, "24", r.URL.Query().Get("limit"))
			assert.Equal(t, "new", r.URL.Query().Get("sort"))
			assert.Equal(t, "2021-2026", r.URL.Query().Get("publish_year"))
			assert.Equal(t, "bookworld-test", r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"numFound": 1,
				"docs": []map[string]any{{
					"key":             "/works/OL1W",
					"title":           "Dune",
					"author_name":     []string{"Frank Herbert"},
					"cover_i":         42,
					"ratings_average": 4.26,
					"subject":         []string{"Fantasy", "Science Fiction"},
				}},
			})
		})

		res, err := client.Search(context.Background(), SearchParams{
			Q: "dune AND subject:fantasy", Limit: 24, Sort: "new", PublishYear: "2021-2026",
		})
		require.NoError(t, err)
		require.Len(t, res.Docs, 1)
		assert.Equal(t, "/works/OL1W", res.Docs[0].Key)
		assert.Equal(t, 42, res.Docs[0].CoverI)
		assert.InDelta(t, 4.26, res.Docs[0].RatingsAverage, 0.001)
	})

	t.Run("publish_year omitted when empty", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, ok := r.URL.Query()["publish_year"]
			assert.False(t, ok)
			_, _ = w.Write([]byte(`{"docs":[]}`))
		})

		res, err := client.Search(context.Background(), SearchParams{Q: "bestseller", Limit: 300, Sort: "rating"})
		require.NoError(t, err)
		assert.Empty(t, res.Docs)
	})

	t.Run("non-json body is a decode error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := client.Search(context.Background(), SearchParams{Q: "x"})
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("server error is a network error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Search(context.Background(), SearchParams{Q: "x"})
		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestClient_GetWork(t *testing.T) {
	t.Run("wrapped description", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works/OL45804W.json", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"key": "/works/OL45804W",
				"title": "Fantastic Mr Fox",
				"covers": [6498519],
				"description": {"type": "/type/text", "value": "text"},
				"subjects": ["Foxes"],
				"first_publish_date": "1970"
			}`))
		})

		work, err := client.GetWork(context.Background(), "/works/OL45804W")
		require.NoError(t, err)
		assert.Equal(t, "Fantastic Mr Fox", work.Title)
		assert.Equal(t, "text", work.Description.String())
		assert.Equal(t, []int{6498519}, work.Covers)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		_, err := client.GetWork(context.Background(), "OLxxxxxxW")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		client := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second})

		_, err := client.GetWork(context.Background(), "OL1W")
		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestClient_CoverURL(t *testing.T) {
	client := NewClient(Options{})

	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", client.CoverURL(42, CoverMedium))
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-L.jpg", client.CoverURL(42, CoverLarge))
	assert.Empty(t, client.CoverURL(0, CoverLarge))
}

func TestTextValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare string", in: `{"description": "text"}`, want: "text"},
		{name: "wrapped value", in: `{"description": {"value": "text"}}`, want: "text"},
		{name: "null", in: `{"description": null}`, want: ""},
		{name: "missing", in: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Work
			require.NoError(t, json.Unmarshal([]byte(tt.in), &w))
			assert.Equal(t, tt.want, w.Description.String())
		})
	}
}

func TestClient_GetAuthor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors/OL34184A.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"key": "/authors/OL34184A", "name": "Roald Dahl", "bio": {"value": "Author"}}`))
	})

	author, err := client.GetAuthor(context.Background(), "/authors/OL34184A")
	require.NoError(t, err)
	assert.Equal(t, "Roald Dahl", author.Name)
	assert.Equal(t, "Author", author.Bio.String())
}
