package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookworld/internal/platform/openlibrary"
	"bookworld/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_Search(t *testing.T) {
	t.Run("drops results without a cover", func(t *testing.T) {
		client := new(testutil.MockOpenLibrary)
		client.On("Search", mock.Anything, mock.Anything).Return(testutil.Docs(11, 0, 33), nil)
		svc := NewService(client, nil)

		books, err := svc.Search(context.Background(), openlibrary.SearchParams{Q: "bestseller"})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "OL1W", books[0].ID)
		assert.Equal(t, "OL3W", books[1].ID)
		for _, b := range books {
			assert.NotEmpty(t, b.CoverURL)
		}
	})

	t.Run("maps card fields", func(t *testing.T) {
		client := new(testutil.MockOpenLibrary)
		client.On("Search", mock.Anything, mock.Anything).Return(&openlibrary.SearchResponse{
			Docs: []openlibrary.SearchDoc{{
				Key:            "/works/OL27448W",
				Title:          "The Lord of the Rings",
				CoverI:         9255566,
				RatingsAverage: 4.4567,
				Subjects:       []string{"Fiction", "Fantasy", "Hobbits"},
			}},
		}, nil)
		svc := NewService(client, nil)

		books, err := svc.Search(context.Background(), openlibrary.SearchParams{})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, 4.5, books[0].Rating)
		assert.Equal(t, []string{"Fiction", "Fantasy"}, books[0].Subjects)
		assert.Equal(t, UnknownAuthor, books[0].DisplayAuthor())
		assert.Equal(t, "https://covers.test/b/id/9255566-M.jpg", books[0].CoverURL)
	})

	t.Run("propagates client errors", func(t *testing.T) {
		client := new(testutil.MockOpenLibrary)
		client.On("Search", mock.Anything, mock.Anything).Return(nil, openlibrary.ErrNetwork)
		svc := NewService(client, nil)

		_, err := svc.Search(context.Background(), openlibrary.SearchParams{})
		assert.ErrorIs(t, err, openlibrary.ErrNetwork)
	})
}

func TestService_GetByID(t *testing.T) {
	t.Run("normalizes description and resolves authors", func(t *testing.T) {
		work := testutil.TestWork
		work.Authors = []openlibrary.AuthorRef{{}, {}}
		work.Authors[0].Author.Key = "/authors/OL34184A"
		work.Authors[1].Author.Key = "/authors/OLbrokenA"

		client := new(testutil.MockOpenLibrary)
		client.On("GetWork", mock.Anything, "OL45804W").Return(&work, nil)
		client.On("GetAuthor", mock.Anything, "/authors/OL34184A").Return(&openlibrary.AuthorDetails{Name: "Roald Dahl"}, nil)
		client.On("GetAuthor", mock.Anything, "/authors/OLbrokenA").Return(nil, errors.New("boom"))
		svc := NewService(client, nil)

		d, err := svc.GetByID(context.Background(), "OL45804W")
		require.NoError(t, err)
		assert.Equal(t, "OL45804W", d.ID)
		assert.Equal(t, []string{"Roald Dahl"}, d.Authors)
		assert.Equal(t, "A fox outwits three farmers.", d.Description)
		assert.Equal(t, "https://covers.test/b/id/6498519-L.jpg", d.CoverURL)
		assert.Equal(t, 96, d.PageCount)
		client.AssertExpectations(t)
	})

	t.Run("empty description gets placeholder", func(t *testing.T) {
		work := testutil.TestWork
		work.Description = ""

		client := new(testutil.MockOpenLibrary)
		client.On("GetWork", mock.Anything, "OL45804W").Return(&work, nil)
		svc := NewService(client, nil)

		d, err := svc.GetByID(context.Background(), "OL45804W")
		require.NoError(t, err)
		assert.Equal(t, NoDescription, d.Description)
	})

	t.Run("not found", func(t *testing.T) {
		client := new(testutil.MockOpenLibrary)
		client.On("GetWork", mock.Anything, "OLxxxxxxW").Return(nil, openlibrary.ErrNotFound)
		svc := NewService(client, nil)

		_, err := svc.GetByID(context.Background(), "OLxxxxxxW")
		assert.ErrorIs(t, err, openlibrary.ErrNotFound)
	})
}

func TestWorkID(t *testing.T) {
	assert.Equal(t, "OL1W", WorkID("/works/OL1W"))
	assert.Equal(t, "OL1W", WorkID("OL1W"))
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, NoDescription, NormalizeDescription("   "))
	assert.Equal(t, "Fox & hound", NormalizeDescription("<p>Fox &amp; <b>hound</b></p>"))
	assert.Equal(t, "a < b", NormalizeDescription("a < b"))
	assert.Equal(t, NoDescription, NormalizeDescription("<script>alert(1)</script>"))
	assert.Equal(t, "a < b", NormalizeDescription("a &lt; b"))

	t.Run("escaped tags do not come back as markup", func(t *testing.T) {
		for _, in := range []string{
			"Use &lt;script&gt;alert(1)&lt;/script&gt; carefully",
			"Use &amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt; carefully",
			"Use &lt;b onclick=&quot;x()&quot;&gt;bold&lt;/b&gt; carefully",
		} {
			got := NormalizeDescription(in)
			assert.NotContains(t, got, "<script", in)
			assert.NotContains(t, got, "<b", in)
			assert.True(t, strings.HasPrefix(got, "Use "), got)
			assert.True(t, strings.HasSuffix(got, " carefully"), got)
		}
	})
}
