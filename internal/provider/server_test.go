package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHandlerRequiresQuery(t *testing.T) {
	s := NewServer(NewYouTubeClient(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/youtube/search", nil)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerWithoutKeysIs503(t *testing.T) {
	s := NewServer(NewYouTubeClient(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/youtube/search?q=rick", nil)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchHandlerReturnsItems(t *testing.T) {
	yt := newTestClient([]string{"key-one"}, func(req *http.Request) *http.Response {
		if req.URL.Query().Get("part") == "contentDetails" {
			return jsonResponse(http.StatusOK, `{"items":[]}`)
		}
		return jsonResponse(http.StatusOK, `{"items":[{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"rick","channelTitle":"RickAstleyVEVO","thumbnails":{}}}]}`)
	})
	s := NewServer(yt)

	req := httptest.NewRequest(http.MethodGet, "/youtube/search?q=rick&limit=5", nil)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dQw4w9WgXcQ")
}
