// Package store persists the session's credential material and the
// authenticated user profile between runs, the terminal counterpart of
// what a browser keeps in local storage. Nothing else survives a restart;
// feed, likes and topic snapshots are rebuilt from the server.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

const (
	keyAccessToken = "access_token"
	keyUser        = "user"
)

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (s *Store) set(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SaveToken stores the bearer credential.
func (s *Store) SaveToken(token string) error {
	if err := s.set(keyAccessToken, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Token returns the stored bearer credential, or "" when absent. The empty
// return doubles as the anonymous signal for the transport, so read errors
// collapse to "no credential".
func (s *Store) Token() string {
	value, ok, err := s.get(keyAccessToken)
	if err != nil || !ok {
		return ""
	}
	return value
}

// SaveUser stores the authenticated user entity, subscribed topics included.
func (s *Store) SaveUser(user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.set(keyUser, string(data)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// User returns the stored user entity when one exists.
func (s *Store) User() (model.User, bool, error) {
	value, ok, err := s.get(keyUser)
	if err != nil {
		return model.User{}, false, fmt.Errorf("reading user: %w", err)
	}
	if !ok {
		return model.User{}, false, nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return model.User{}, false, fmt.Errorf("decoding user: %w", err)
	}
	return user, true, nil
}

// ClearCredentials wipes the token and the stored profile. Called by the
// session guard when the server rejects the session, and by explicit logout.
func (s *Store) ClearCredentials() error {
	_, err := s.writeDB.Exec("DELETE FROM session WHERE key IN (?, ?)", keyAccessToken, keyUser)
	if err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}
