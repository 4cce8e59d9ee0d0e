package jukebox

import (
	"time"
)

// Song statuses. A song is created queued and flips to played when the
// queue advances past it; the replay fallback can flip it back.
const (
	StatusQueued = "queued"
	StatusPlayed = "played"
)

// Song is one submitted YouTube video. Queued songs are ordered by
// (Position, CreatedAt); Position values need not be contiguous.
type Song struct {
	ID            string     `json:"id"`
	YouTubeURL    string     `json:"youtubeUrl"`
	VideoID       string     `json:"videoId"`
	Title         string     `json:"title"`
	ThumbnailURL  string     `json:"thumbnailUrl"`
	AddedBy       string     `json:"addedBy,omitempty"`
	AddedByName   string     `json:"addedByName"`
	AddedByAvatar string     `json:"addedByAvatar,omitempty"`
	Message       string     `json:"message,omitempty"`
	Position      int        `json:"position"`
	Status        string     `json:"status"`
	PlayedAt      *time.Time `json:"playedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewSong carries a resolved submission into the engine.
type NewSong struct {
	YouTubeURL    string
	VideoID       string
	Title         string
	ThumbnailURL  string
	AddedBy       string
	AddedByName   string
	AddedByAvatar string
	Message       string
}

// Playback is the singleton now-playing record. CurrentSongID stays
// nil until the first enqueue auto-starts playback.
type Playback struct {
	CurrentSongID *string    `json:"currentSongId"`
	StartedAt     *time.Time `json:"startedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Pagination describes one page of the played-song history.
type Pagination struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// HistoryPage is the paginated history response.
type HistoryPage struct {
	Songs      []Song     `json:"songs"`
	Pagination Pagination `json:"pagination"`
}

// VideoRef is a validated video reference produced by the submission
// resolver before a song is enqueued.
type VideoRef struct {
	VideoID      string
	Title        string
	ThumbnailURL string
}
