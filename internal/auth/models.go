package auth

import (
	"context"
	"errors"
	"log"
	"time"
)

// User is a party participant. Admins additionally carry a username
// and a bcrypt password hash.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username,omitempty"`
	AvatarURL string    `json:"avatar"`
	IsAdmin   bool      `json:"isAdmin"`
	SessionID string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
      id, name, COALESCE(username, ''), avatar_url, is_admin, session_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.AvatarURL,
		&u.IsAdmin,
		&u.SessionID,
		&u.CreatedAt,
	)
	return u, err
}

// AutoMigrate creates the users table. Safe to run on every start.
func AutoMigrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          name          TEXT NOT NULL,
          username      TEXT UNIQUE,
          password_hash TEXT NOT NULL DEFAULT '',
          avatar_url    TEXT NOT NULL DEFAULT '',
          is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
          session_id    TEXT UNIQUE NOT NULL,
          created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("jukebox-service: migrate users: %v", err)
		return err
	}
	return nil
}
