package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookworld/internal/catalog"
	"bookworld/internal/config"
	"bookworld/internal/detail"
	"bookworld/internal/discovery"
	"bookworld/internal/httpx"
	"bookworld/internal/pages"
	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/profile"
	"bookworld/internal/readinglist"
	"bookworld/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, client *testutil.MockOpenLibrary, ready pinger) http.Handler {
	t.Helper()
	return newLimitedTestServer(t, client, ready, 1000, 1000)
}

func newLimitedTestServer(t *testing.T, client *testutil.MockOpenLibrary, ready pinger, rps float64, burst int) http.Handler {
	t.Helper()
	cat := catalog.NewService(client, nil)
	lists := readinglist.NewService(readinglist.NewMemoryKV(), nil)

	router := newRouter(handlers{
		pages:     pages.NewHTTPHandler(),
		discovery: discovery.NewHTTPHandler(discovery.NewService(cat, nil)),
		detail:    detail.NewHTTPHandler(detail.NewService(cat, nil), lists),
		lists:     readinglist.NewHTTPHandler(lists, nil),
		profile:   profile.NewHTTPHandler(profile.NewService(lists), nil),
		ready:     ready,
	})

	rl := httpx.NewRateLimitMiddleware(rps, burst)
	t.Cleanup(rl.Stop)
	cfg := config.Config{OpenLibraryCoversURL: "https://covers.test"}
	return withMiddleware(router, cfg, []byte("0123456789abcdef0123456789abcdef"), rl, zap.NewNop())
}

func serve(h http.Handler, method, path string, cookies ...*http.Cookie) (testutil.RecordResponse, []*http.Cookie) {
	req := testutil.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return testutil.RecordHTTPResponse(w), w.Result().Cookies()
}

func TestRouting_Pages(t *testing.T) {
	h := newTestServer(t, new(testutil.MockOpenLibrary), nil)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/login", http.StatusOK},
		{http.MethodPost, "/login", http.StatusNotImplemented},
		{http.MethodGet, "/profile", http.StatusOK},
		{http.MethodGet, "/lists", http.StatusOK},
		{http.MethodGet, "/does/not/exist", http.StatusNotFound},
		{http.MethodGet, "/works/OL1W-x", http.StatusBadRequest},
		{http.MethodGet, "/discover?sort=popular", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			res, _ := serve(h, tt.method, tt.path)
			assert.Equal(t, tt.code, res.Code)
			assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
		})
	}
}

func TestRouting_Health(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		h := newTestServer(t, new(testutil.MockOpenLibrary), nil)
		res, _ := serve(h, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("database down", func(t *testing.T) {
		h := newTestServer(t, new(testutil.MockOpenLibrary), fakePinger{err: errors.New("down")})
		res, _ := serve(h, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, res.Code)

		res, _ = serve(h, http.MethodGet, "/healthz")
		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestRouting_ReadingListFollowsVisitorCookie(t *testing.T) {
	work := testutil.TestWork
	client := new(testutil.MockOpenLibrary)
	client.On("GetWork", mock.Anything, "OL45804W").Return(&work, nil)
	h := newTestServer(t, client, nil)

	res, cookies := serve(h, http.MethodGet, "/works/OL45804W")
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, cookies)
	visitor := cookies[0]
	assert.Equal(t, httpx.VisitorCookieName, visitor.Name)
	assert.Equal(t, false, res.Data()["in_list"])

	res, _ = serve(h, http.MethodPost, "/works/OL45804W/toggle", visitor)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Data()["in_list"])
	require.Len(t, res.Notifications(), 1)

	res, _ = serve(h, http.MethodGet, "/works/OL45804W", visitor)
	assert.Equal(t, "In List", res.Data()["label"])

	res, _ = serve(h, http.MethodGet, "/lists", visitor)
	items, _ := res.Body["data"].([]interface{})
	require.Len(t, items, 1)

	res, _ = serve(h, http.MethodGet, "/profile")
	stats, _ := res.Data()["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["list_count"], "a new visitor starts empty")

	res, _ = serve(h, http.MethodDelete, "/lists/OL45804W", visitor)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res, _ = serve(h, http.MethodGet, "/profile", visitor)
	stats, _ = res.Data()["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["list_count"])
}

func TestRouting_DetailNotFound(t *testing.T) {
	client := new(testutil.MockOpenLibrary)
	client.On("GetWork", mock.Anything, "OLxxxxxxW").Return(nil, openlibrary.ErrNotFound)
	h := newTestServer(t, client, nil)

	res, _ := serve(h, http.MethodGet, "/works/OLxxxxxxW")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "not_found", res.Data()["state"])
	assert.Len(t, res.Notifications(), 1)
}

func TestRouting_Discover(t *testing.T) {
	client := new(testutil.MockOpenLibrary)
	client.On("Search", mock.Anything, mock.MatchedBy(func(p openlibrary.SearchParams) bool {
		return p.Q == "bestseller" && p.Limit == discovery.AllLimit && p.Sort == "rating"
	})).Return(testutil.Docs(1, 0, 3), nil)
	h := newTestServer(t, client, nil)

	res, _ := serve(h, http.MethodGet, "/discover")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "loaded", res.Data()["state"])
	assert.Len(t, res.Data()["results"], 2)
	client.AssertExpectations(t)
}

func TestRouting_RateLimit(t *testing.T) {
	t.Run("requests without a cookie share the client address bucket", func(t *testing.T) {
		h := newLimitedTestServer(t, new(testutil.MockOpenLibrary), nil, 1, 2)

		limited := 0
		for i := 0; i < 50; i++ {
			res, _ := serve(h, http.MethodGet, "/login")
			if res.Code == http.StatusTooManyRequests {
				limited++
			}
		}
		assert.Equal(t, 48, limited)
	})

	t.Run("returning visitor has its own bucket", func(t *testing.T) {
		h := newLimitedTestServer(t, new(testutil.MockOpenLibrary), nil, 1, 2)

		_, cookies := serve(h, http.MethodGet, "/login")
		require.NotEmpty(t, cookies)
		serve(h, http.MethodGet, "/login")
		res, _ := serve(h, http.MethodGet, "/login")
		assert.Equal(t, http.StatusTooManyRequests, res.Code, "address bucket is spent")

		for i := 0; i < 2; i++ {
			res, _ = serve(h, http.MethodGet, "/login", cookies[0])
			assert.Equal(t, http.StatusOK, res.Code)
		}
		res, _ = serve(h, http.MethodGet, "/login", cookies[0])
		assert.Equal(t, http.StatusTooManyRequests, res.Code)
	})
}
