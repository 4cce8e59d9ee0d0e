package jukebox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine owns the queue state transitions. It talks only to the song
// and playback tables; HTTP concerns stay in the handlers.
type Engine struct {
	db DB
}

func NewEngine(db DB) *Engine {
	return &Engine{db: db}
}

const songColumns = `
      id, youtube_url, video_id, title, thumbnail_url,
      COALESCE(added_by::text, ''), added_by_name, added_by_avatar,
      message, position, status, played_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (Song, error) {
	var s Song
	err := row.Scan(
		&s.ID,
		&s.YouTubeURL,
		&s.VideoID,
		&s.Title,
		&s.ThumbnailURL,
		&s.AddedBy,
		&s.AddedByName,
		&s.AddedByAvatar,
		&s.Message,
		&s.Position,
		&s.Status,
		&s.PlayedAt,
		&s.CreatedAt,
	)
	return s, err
}

// Queue returns all queued songs ordered by (position, created_at).
// This ordering is the single source of truth for play sequence.
func (e *Engine) Queue(ctx context.Context) ([]Song, error) {
	rows, err := e.db.Query(ctx, `
      SELECT `+songColumns+`
      FROM songs
      WHERE status = 'queued'
      ORDER BY position ASC, created_at ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// Enqueue appends a resolved submission to the queue. A video that is
// already queued is rejected; one that only appears in history may be
// re-added. When nothing is playing the new song auto-starts.
func (e *Engine) Enqueue(ctx context.Context, sub NewSong) (Song, error) {
	var exists bool
	err := e.db.QueryRow(ctx, `
      SELECT EXISTS (
          SELECT 1 FROM songs WHERE video_id = $1 AND status = 'queued'
      )
    `, sub.VideoID).Scan(&exists)
	if err != nil {
		return Song{}, err
	}
	if exists {
		return Song{}, ErrDuplicateSong
	}

	var addedBy any
	if _, err := uuid.Parse(sub.AddedBy); err == nil {
		addedBy = sub.AddedBy
	}

	song, err := scanSong(e.db.QueryRow(ctx, `
      INSERT INTO songs (
          youtube_url, video_id, title, thumbnail_url,
          added_by, added_by_name, added_by_avatar, message, position
      )
      VALUES (
          $1, $2, $3, $4, $5, $6, $7, $8,
          COALESCE((SELECT MAX(position)+1 FROM songs WHERE status = 'queued'), 0)
      )
      RETURNING `+songColumns,
		sub.YouTubeURL,
		sub.VideoID,
		sub.Title,
		sub.ThumbnailURL,
		addedBy,
		sub.AddedByName,
		sub.AddedByAvatar,
		sub.Message,
	))
	if err != nil {
		return Song{}, err
	}

	if _, err := e.db.Exec(ctx, `
      INSERT INTO playback (id) VALUES (1) ON CONFLICT (id) DO NOTHING
    `); err != nil {
		return Song{}, err
	}
	// Auto-start: only claims the pointer while nothing is playing.
	if _, err := e.db.Exec(ctx, `
      UPDATE playback
      SET current_song_id = $1, started_at = now(), updated_at = now()
      WHERE id = 1 AND current_song_id IS NULL
    `, song.ID); err != nil {
		return Song{}, err
	}

	return song, nil
}

// Advance marks the head of the queue played and points playback at
// the next song. The queue head is authoritative, not the stored
// pointer. With radio mode on, queued songs carrying a dedication
// message are preferred; with the queue empty, the oldest played song
// is recycled back in.
func (e *Engine) Advance(ctx context.Context, radioMode bool) (Playback, error) {
	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Playback{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
      INSERT INTO playback (id) VALUES (1) ON CONFLICT (id) DO NOTHING
    `); err != nil {
		return Playback{}, err
	}
	// Serializes concurrent advance/reorder against the singleton row.
	var cur Playback
	if err := tx.QueryRow(ctx, `
      SELECT current_song_id, started_at, updated_at
      FROM playback WHERE id = 1
      FOR UPDATE
    `).Scan(&cur.CurrentSongID, &cur.StartedAt, &cur.UpdatedAt); err != nil {
		return Playback{}, err
	}

	var headID, headVideoID string
	err = tx.QueryRow(ctx, `
      SELECT id, video_id FROM songs
      WHERE status = 'queued'
      ORDER BY position ASC, created_at ASC
      LIMIT 1
      FOR UPDATE
    `).Scan(&headID, &headVideoID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playback{}, ErrNoCurrentSong
	}
	if err != nil {
		return Playback{}, err
	}

	// A played copy of the same video makes this queue entry redundant
	// history; drop it instead of recording it twice.
	var inHistory bool
	if err := tx.QueryRow(ctx, `
      SELECT EXISTS (
          SELECT 1 FROM songs
          WHERE video_id = $1 AND status = 'played' AND id <> $2
      )
    `, headVideoID, headID).Scan(&inHistory); err != nil {
		return Playback{}, err
	}

	if inHistory {
		if _, err := tx.Exec(ctx, `DELETE FROM songs WHERE id = $1`, headID); err != nil {
			return Playback{}, err
		}
	} else {
		if _, err := tx.Exec(ctx, `
          UPDATE songs SET status = 'played', played_at = now() WHERE id = $1
        `, headID); err != nil {
			return Playback{}, err
		}
	}

	nextID, err := e.pickNext(ctx, tx, radioMode)
	if err != nil {
		return Playback{}, err
	}

	var pb Playback
	if nextID != "" {
		err = tx.QueryRow(ctx, `
          UPDATE playback
          SET current_song_id = $1, started_at = now(), updated_at = now()
          WHERE id = 1
          RETURNING current_song_id, started_at, updated_at
        `, nextID).Scan(&pb.CurrentSongID, &pb.StartedAt, &pb.UpdatedAt)
	} else {
		err = tx.QueryRow(ctx, `
          UPDATE playback
          SET current_song_id = NULL, started_at = NULL, updated_at = now()
          WHERE id = 1
          RETURNING current_song_id, started_at, updated_at
        `).Scan(&pb.CurrentSongID, &pb.StartedAt, &pb.UpdatedAt)
	}
	if err != nil {
		return Playback{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Playback{}, err
	}
	return pb, nil
}

func (e *Engine) pickNext(ctx context.Context, tx pgx.Tx, radioMode bool) (string, error) {
	var nextID string

	if radioMode {
		err := tx.QueryRow(ctx, `
          SELECT id FROM songs
          WHERE status = 'queued' AND message <> ''
          ORDER BY position ASC, created_at ASC
          LIMIT 1
        `).Scan(&nextID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return "", err
		}
		if nextID != "" {
			return nextID, nil
		}
	}

	err := tx.QueryRow(ctx, `
      SELECT id FROM songs
      WHERE status = 'queued'
      ORDER BY position ASC, created_at ASC
      LIMIT 1
    `).Scan(&nextID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	if nextID != "" {
		return nextID, nil
	}

	// Replay fallback: recycle the oldest history entry to the end of
	// the queue so playback loops over history when nothing new comes.
	var replayID string
	err = tx.QueryRow(ctx, `
      SELECT id FROM songs
      WHERE status = 'played'
      ORDER BY played_at ASC
      LIMIT 1
    `).Scan(&replayID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, `
      UPDATE songs
      SET status = 'queued',
          position = COALESCE((SELECT MAX(position)+1 FROM songs WHERE status = 'queued'), 0)
      WHERE id = $1
    `, replayID); err != nil {
		return "", err
	}
	return replayID, nil
}

// Reorder rewrites queue positions so that each id's position becomes
// its index in orderedIds. Unknown ids update nothing; no attempt is
// made to verify the set matches the queue, so partial reorders are
// allowed and position collisions fall back to the created_at
// tie-break.
func (e *Engine) Reorder(ctx context.Context, orderedIds []string) error {
	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range orderedIds {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, err := tx.Exec(ctx, `
          UPDATE songs SET position = $2 WHERE id = $1
        `, id, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ClearQueue deletes every song except the one playback points at.
// History rows are not exempt; ClearHistory exists for targeted wipes.
func (e *Engine) ClearQueue(ctx context.Context) (int64, error) {
	var currentID *string
	err := e.db.QueryRow(ctx, `
      SELECT current_song_id FROM playback WHERE id = 1
    `).Scan(&currentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if currentID != nil {
		tag, err := e.db.Exec(ctx, `DELETE FROM songs WHERE id <> $1`, *currentID)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}

	tag, err := e.db.Exec(ctx, `DELETE FROM songs`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteSong hard-deletes by id regardless of status.
func (e *Engine) DeleteSong(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSongNotFound
	}
	tag, err := e.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotFound
	}
	return nil
}

// History returns played songs, newest first. Pages are 1-indexed.
func (e *Engine) History(ctx context.Context, page, pageSize int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	var total int
	if err := e.db.QueryRow(ctx, `
      SELECT COUNT(*) FROM songs WHERE status = 'played'
    `).Scan(&total); err != nil {
		return HistoryPage{}, err
	}

	rows, err := e.db.Query(ctx, `
      SELECT `+songColumns+`
      FROM songs
      WHERE status = 'played'
      ORDER BY played_at DESC, created_at DESC
      LIMIT $1 OFFSET $2
    `, pageSize, (page-1)*pageSize)
	if err != nil {
		return HistoryPage{}, err
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return HistoryPage{}, err
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return HistoryPage{}, err
	}

	return HistoryPage{
		Songs: songs,
		Pagination: Pagination{
			Current: page,
			Total:   total,
			Pages:   (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// ClearHistory deletes all played songs.
func (e *Engine) ClearHistory(ctx context.Context) error {
	_, err := e.db.Exec(ctx, `DELETE FROM songs WHERE status = 'played'`)
	return err
}

// State returns the playback singleton, creating it on first use.
func (e *Engine) State(ctx context.Context) (Playback, error) {
	if _, err := e.db.Exec(ctx, `
      INSERT INTO playback (id) VALUES (1) ON CONFLICT (id) DO NOTHING
    `); err != nil {
		return Playback{}, err
	}
	var pb Playback
	err := e.db.QueryRow(ctx, `
      SELECT current_song_id, started_at, updated_at FROM playback WHERE id = 1
    `).Scan(&pb.CurrentSongID, &pb.StartedAt, &pb.UpdatedAt)
	return pb, err
}
