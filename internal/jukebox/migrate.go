package jukebox

import (
	"context"
	"log"
)

// AutoMigrate creates the songs, playback and system_settings tables.
// Safe to run on every start.
func AutoMigrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("jukebox-service: migrate pgcrypto: %v", err)
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          youtube_url     TEXT NOT NULL,
          video_id        TEXT NOT NULL,
          title           TEXT NOT NULL,
          thumbnail_url   TEXT NOT NULL DEFAULT '',
          added_by        uuid,
          added_by_name   TEXT NOT NULL DEFAULT '',
          added_by_avatar TEXT NOT NULL DEFAULT '',
          message         TEXT NOT NULL DEFAULT '',
          position        INT NOT NULL,
          status          TEXT NOT NULL DEFAULT 'queued',
          played_at       TIMESTAMPTZ,
          created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("jukebox-service: migrate songs: %v", err)
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_songs_status_position
      ON songs(status, position, created_at)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playback (
          id              INT PRIMARY KEY CHECK (id = 1),
          current_song_id uuid REFERENCES songs(id) ON DELETE SET NULL,
          started_at      TIMESTAMPTZ,
          updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("jukebox-service: migrate playback: %v", err)
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS system_settings (
          key        TEXT PRIMARY KEY,
          value      JSONB NOT NULL,
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("jukebox-service: migrate system_settings: %v", err)
		return err
	}

	return nil
}
