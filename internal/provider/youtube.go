package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID pulls the video id out of the common YouTube URL
// shapes, or accepts a bare 11-character id. Empty string on no match.
func ExtractVideoID(raw string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// ThumbnailURL is the predictable medium-quality thumbnail for a video.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/mqdefault.jpg"
}

// YouTubeClient resolves video metadata and searches the catalog via
// the YouTube Data API, rotating across multiple API keys when one
// runs out of quota, with the public oEmbed endpoint as a last resort
// for metadata.
type YouTubeClient struct {
	apiKeys   []string
	searchURL string
	videosURL string
	oembedURL string
	http      *http.Client
	cache     *metadataCache
}

func NewYouTubeClient(apiKeys []string, rdb *redis.Client) *YouTubeClient {
	return &YouTubeClient{
		apiKeys:   apiKeys,
		searchURL: "https://www.googleapis.com/youtube/v3/search",
		videosURL: "https://www.googleapis.com/youtube/v3/videos",
		oembedURL: "https://www.youtube.com/oembed",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newMetadataCache(rdb),
	}
}

type ytErrorResponse struct {
	Error struct {
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// getWithKeyRotation issues the request once per API key until one
// succeeds; a quota 403 moves on to the next key, any other response
// is returned as-is for the caller to judge.
func (c *YouTubeClient) getWithKeyRotation(ctx context.Context, build func(key string) string) (*http.Response, error) {
	if len(c.apiKeys) == 0 {
		return nil, ErrNoAPIKey
	}

	var lastErr error
	for _, key := range c.apiKeys {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, build(key), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusForbidden {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			var apiErr ytErrorResponse
			quota := false
			if json.Unmarshal(body, &apiErr) == nil {
				for _, e := range apiErr.Error.Errors {
					if e.Reason == "quotaExceeded" {
						quota = true
						break
					}
				}
			}
			if quota {
				log.Printf("jukebox-service: youtube key %s... exceeded quota, trying next", keyPrefix(key))
				lastErr = fmt.Errorf("youtube quota exceeded")
				continue
			}
			return nil, fmt.Errorf("youtube status %d", resp.StatusCode)
		}

		return resp, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all youtube api keys failed")
	}
	return nil, lastErr
}

func keyPrefix(key string) string {
	if len(key) > 5 {
		return key[:5]
	}
	return key
}

type ytVideoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// VideoMetadata resolves title and thumbnail for a video id. The Data
// API is preferred; when keys are missing or exhausted the public
// oEmbed endpoint answers instead. Results are cached.
func (c *YouTubeClient) VideoMetadata(ctx context.Context, videoID string) (VideoMetadata, error) {
	if meta, ok := c.cache.get(ctx, videoID); ok {
		return meta, nil
	}

	meta, err := c.videoMetadataFromAPI(ctx, videoID)
	if err != nil {
		log.Printf("jukebox-service: youtube api metadata for %s: %v, falling back to oembed", videoID, err)
		meta, err = c.videoMetadataFromOEmbed(ctx, videoID)
	}
	if err != nil {
		return VideoMetadata{}, ErrMetadataUnavailable
	}

	c.cache.set(ctx, meta)
	return meta, nil
}

func (c *YouTubeClient) videoMetadataFromAPI(ctx context.Context, videoID string) (VideoMetadata, error) {
	resp, err := c.getWithKeyRotation(ctx, func(key string) string {
		val := url.Values{}
		val.Set("part", "snippet")
		val.Set("id", videoID)
		val.Set("key", key)
		return c.videosURL + "?" + val.Encode()
	})
	if err != nil {
		return VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoMetadata{}, fmt.Errorf("youtube status %d", resp.StatusCode)
	}

	var body ytVideoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VideoMetadata{}, err
	}
	if len(body.Items) == 0 {
		return VideoMetadata{}, fmt.Errorf("video %s not found", videoID)
	}

	item := body.Items[0]
	thumb := item.Snippet.Thumbnails.Medium.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	if thumb == "" {
		thumb = ThumbnailURL(videoID)
	}

	return VideoMetadata{
		VideoID:      videoID,
		Title:        item.Snippet.Title,
		ThumbnailURL: thumb,
	}, nil
}

func (c *YouTubeClient) videoMetadataFromOEmbed(ctx context.Context, videoID string) (VideoMetadata, error) {
	val := url.Values{}
	val.Set("url", "https://www.youtube.com/watch?v="+videoID)
	val.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oembedURL+"?"+val.Encode(), nil)
	if err != nil {
		return VideoMetadata{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoMetadata{}, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VideoMetadata{}, err
	}
	if body.Title == "" {
		body.Title = "Unknown Title"
	}

	return VideoMetadata{
		VideoID:      videoID,
		Title:        body.Title,
		ThumbnailURL: ThumbnailURL(videoID),
	}, nil
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search queries the catalog. Requires at least one API key.
func (c *YouTubeClient) Search(ctx context.Context, query string, limit int) ([]SearchItem, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	resp, err := c.getWithKeyRotation(ctx, func(key string) string {
		val := url.Values{}
		val.Set("part", "snippet")
		val.Set("type", "video")
		val.Set("maxResults", fmt.Sprint(limit))
		val.Set("q", query)
		val.Set("key", key)
		return c.searchURL + "?" + val.Encode()
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube status %d", resp.StatusCode)
	}

	var body ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]SearchItem, 0, len(body.Items))
	var videoIDs []string
	for _, it := range body.Items {
		thumb := it.Snippet.Thumbnails.Medium.URL
		if thumb == "" {
			thumb = it.Snippet.Thumbnails.Default.URL
		}
		out = append(out, SearchItem{
			VideoID:      it.ID.VideoID,
			Title:        it.Snippet.Title,
			ChannelTitle: it.Snippet.ChannelTitle,
			ThumbnailURL: thumb,
		})
		videoIDs = append(videoIDs, it.ID.VideoID)
	}

	if len(videoIDs) > 0 {
		durations, err := c.fetchDurations(ctx, videoIDs)
		if err != nil {
			log.Printf("jukebox-service: youtube fetch durations: %v", err)
		} else {
			for i := range out {
				if d, ok := durations[out[i].VideoID]; ok {
					out[i].DurationMs = d
				}
			}
		}
	}

	return out, nil
}

type ytDurationsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (c *YouTubeClient) fetchDurations(ctx context.Context, ids []string) (map[string]int, error) {
	resp, err := c.getWithKeyRotation(ctx, func(key string) string {
		val := url.Values{}
		val.Set("part", "contentDetails")
		val.Set("id", strings.Join(ids, ","))
		val.Set("key", key)
		return c.videosURL + "?" + val.Encode()
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube videos status %d", resp.StatusCode)
	}

	var body ytDurationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	durations := make(map[string]int)
	for _, item := range body.Items {
		durations[item.ID] = parseISO8601Duration(item.ContentDetails.Duration)
	}
	return durations, nil
}

var iso8601Re = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

func parseISO8601Duration(duration string) int {
	matches := iso8601Re.FindStringSubmatch(duration)
	if len(matches) < 4 {
		return 0
	}

	var h, m, s int
	fmt.Sscanf(matches[1], "%d", &h)
	fmt.Sscanf(matches[2], "%d", &m)
	fmt.Sscanf(matches[3], "%d", &s)

	return (h*3600 + m*60 + s) * 1000
}
