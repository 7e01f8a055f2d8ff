package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"bookworld/internal/platform/openlibrary"

	"github.com/stretchr/testify/mock"
)

// TestWork is a catalog work with a wrapped description and one cover.
var TestWork = openlibrary.Work{
	Key:              "/works/OL45804W",
	Title:            "Fantastic Mr Fox",
	Covers:           []int{6498519},
	Description:      "A fox outwits three farmers.",
	Subjects:         []string{"Foxes", "Farmers", "Juvenile fiction"},
	FirstPublishDate: "1970",
	NumberOfPages:    96,
}

// MockOpenLibrary is a testify mock of the Open Library client.
type MockOpenLibrary struct {
	mock.Mock
}

func (m *MockOpenLibrary) Search(ctx context.Context, params openlibrary.SearchParams) (*openlibrary.SearchResponse, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*openlibrary.SearchResponse)
	return res, args.Error(1)
}

func (m *MockOpenLibrary) GetWork(ctx context.Context, id string) (*openlibrary.Work, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*openlibrary.Work)
	return res, args.Error(1)
}

func (m *MockOpenLibrary) GetAuthor(ctx context.Context, authorKey string) (*openlibrary.AuthorDetails, error) {
	args := m.Called(ctx, authorKey)
	res, _ := args.Get(0).(*openlibrary.AuthorDetails)
	return res, args.Error(1)
}

// CoverURL is deterministic and not recorded.
func (m *MockOpenLibrary) CoverURL(id int, size openlibrary.CoverSize) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.test/b/id/%d-%s.jpg", id, size)
}

// Docs builds a search response; a zero cover id yields a coverless doc.
func Docs(coverIDs ...int) *openlibrary.SearchResponse {
	res := &openlibrary.SearchResponse{NumFound: len(coverIDs)}
	for i, id := range coverIDs {
		res.Docs = append(res.Docs, openlibrary.SearchDoc{
			Key:         fmt.Sprintf("/works/OL%dW", i+1),
			Title:       fmt.Sprintf("Book %d", i+1),
			AuthorNames: []string{"Author"},
			CoverI:      id,
		})
	}
	return res
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// Data returns the "data" object of a success envelope.
func (r RecordResponse) Data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

// Notifications returns meta.notifications of an envelope.
func (r RecordResponse) Notifications() []interface{} {
	meta, _ := r.Body["meta"].(map[string]interface{})
	n, _ := meta["notifications"].([]interface{})
	return n
}
