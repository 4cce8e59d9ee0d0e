package provider

import (
	"context"

	"jukebox-service/internal/jukebox"
)

// Resolve satisfies jukebox.Resolver: URL in, validated reference out.
func (c *YouTubeClient) Resolve(ctx context.Context, raw string) (jukebox.VideoRef, error) {
	videoID := ExtractVideoID(raw)
	if videoID == "" {
		return jukebox.VideoRef{}, jukebox.ErrInvalidSubmission
	}

	meta, err := c.VideoMetadata(ctx, videoID)
	if err != nil {
		return jukebox.VideoRef{}, err
	}

	return jukebox.VideoRef{
		VideoID:      videoID,
		Title:        meta.Title,
		ThumbnailURL: meta.ThumbnailURL,
	}, nil
}
