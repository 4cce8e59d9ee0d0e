package jukebox

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL, migrates, and wipes the
// jukebox tables. Tests are skipped when no database is available.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, AutoMigrate(ctx, pool))

	_, err = pool.Exec(ctx, `UPDATE playback SET current_song_id = NULL, started_at = NULL WHERE id = 1`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM songs`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM system_settings`)
	require.NoError(t, err)

	return pool
}

func TestIntegrationQueueLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	e := NewEngine(pool)

	first, err := e.Enqueue(ctx, NewSong{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:    "dQw4w9WgXcQ",
		Title:      "first",
	})
	require.NoError(t, err)
	require.Equal(t, 0, first.Position)

	// First song auto-starts.
	pb, err := e.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, pb.CurrentSongID)
	require.Equal(t, first.ID, *pb.CurrentSongID)

	second, err := e.Enqueue(ctx, NewSong{
		YouTubeURL: "https://www.youtube.com/watch?v=9bZkp7q19f0",
		VideoID:    "9bZkp7q19f0",
		Title:      "second",
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Position)

	// Second song must not steal the pointer.
	pb, err = e.State(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, *pb.CurrentSongID)

	_, err = e.Enqueue(ctx, NewSong{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		VideoID:    "dQw4w9WgXcQ",
		Title:      "first again",
	})
	require.ErrorIs(t, err, ErrDuplicateSong)

	pb, err = e.Advance(ctx, false)
	require.NoError(t, err)
	require.Equal(t, second.ID, *pb.CurrentSongID)

	queue, err := e.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	page, err := e.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Songs, 1)
	require.Equal(t, first.ID, page.Songs[0].ID)
	require.NotNil(t, page.Songs[0].PlayedAt)

	// Once the video has moved into history the same video_id may be
	// queued again.
	again, err := e.Enqueue(ctx, NewSong{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		VideoID:    "dQw4w9WgXcQ",
		Title:      "first again",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, again.ID)
	require.Equal(t, 2, again.Position)
}

func TestIntegrationAdvanceReplaysHistory(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	e := NewEngine(pool)

	song, err := e.Enqueue(ctx, NewSong{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:    "dQw4w9WgXcQ",
		Title:      "only one",
	})
	require.NoError(t, err)

	// With nothing else queued the only song loops back onto itself.
	pb, err := e.Advance(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, pb.CurrentSongID)
	require.Equal(t, song.ID, *pb.CurrentSongID)

	queue, err := e.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
}

func TestIntegrationReorderAndClear(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	e := NewEngine(pool)

	ids := make([]string, 0, 3)
	for _, v := range []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "kJQP7kiw5Fk"} {
		s, err := e.Enqueue(ctx, NewSong{
			YouTubeURL: "https://www.youtube.com/watch?v=" + v,
			VideoID:    v,
			Title:      v,
		})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	require.NoError(t, e.Reorder(ctx, []string{ids[2], ids[0], ids[1]}))

	queue, err := e.Queue(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{ids[2], ids[0], ids[1]},
		[]string{queue[0].ID, queue[1].ID, queue[2].ID})

	// Clear spares the current song (the first enqueued auto-started).
	deleted, err := e.ClearQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	queue, err = e.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, ids[0], queue[0].ID)
}

func TestIntegrationSettingsRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	st := NewSettingsStore(pool)

	radio := true
	theme := ThemeValentine
	s, err := st.Apply(ctx, SettingsPatch{RadioMode: &radio, Theme: &theme})
	require.NoError(t, err)
	require.True(t, s.RadioMode)
	require.Equal(t, ThemeValentine, s.Theme)

	s, err = st.Load(ctx)
	require.NoError(t, err)
	require.True(t, s.RadioMode)
	require.False(t, s.ClientPlayback)
	require.Equal(t, ThemeValentine, s.Theme)
}
