package provider

import "errors"

// VideoMetadata is the resolved metadata for a single video.
type VideoMetadata struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail"`
}

// SearchItem is one result of a catalog search.
type SearchItem struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	ThumbnailURL string `json:"thumbnail"`
	DurationMs   int    `json:"durationMs"`
}

var (
	// ErrMetadataUnavailable means every API key and the oEmbed
	// fallback failed for a video.
	ErrMetadataUnavailable = errors.New("video metadata unavailable")

	// ErrNoAPIKey means an operation that cannot fall back to oEmbed
	// (search) was attempted without any configured API key.
	ErrNoAPIKey = errors.New("no youtube api key configured")
)
