package jukebox

import "errors"

var (
	// ErrDuplicateSong means the submitted video is already waiting in
	// the queue. Callers show a non-error "already in queue" notice for
	// this case, so it must stay distinguishable.
	ErrDuplicateSong = errors.New("song is already in the queue")

	// ErrNoCurrentSong means advance was called with nothing queued.
	ErrNoCurrentSong = errors.New("no song is currently playing")

	// ErrSongNotFound means a delete targeted an id that does not exist.
	ErrSongNotFound = errors.New("song not found")

	// ErrInvalidSubmission means the submitted URL or id could not be
	// parsed into a video reference.
	ErrInvalidSubmission = errors.New("invalid youtube url")
)
