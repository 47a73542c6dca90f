package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/models"
)

const characterColumns = `id, name, birthday, source, image, user_birthday_message, created_at, updated_at`

// CreateCharacter inserts a new character and returns its generated id.
func (db *DB) CreateCharacter(c models.Character) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := db.conn.Exec(`
		INSERT INTO characters (id, name, birthday, source, image, user_birthday_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, c.Name, c.Birthday, c.Source, c.Image, c.UserBirthdayMessage, now, now)
	if err != nil {
		return "", fmt.Errorf("store: create character: %w", err)
	}
	return id, nil
}

// UpdateCharacter replaces every mutable field of an existing character.
// Returns apperr.ErrNotFound when id does not exist.
func (db *DB) UpdateCharacter(id string, c models.Character) error {
	res, err := db.conn.Exec(`
		UPDATE characters
		SET name = ?, birthday = ?, source = ?, image = ?, user_birthday_message = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Birthday, c.Source, c.Image, c.UserBirthdayMessage, time.Now(), id)
	if err != nil {
		return fmt.Errorf("store: update character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update character: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteCharacter removes a character. Deleting a nonexistent id is not an
// error; deletion is idempotent.
func (db *DB) DeleteCharacter(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM characters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete character: %w", err)
	}
	return nil
}

// GetCharacter returns a single character by id.
func (db *DB) GetCharacter(id string) (*models.Character, error) {
	row := db.conn.QueryRow(`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get character: %w", err)
	}
	return c, nil
}

// ListCharacters returns every character in insertion (rowid) order.
// The order carries no semantic meaning; callers sort as needed.
func (db *DB) ListCharacters() ([]models.Character, error) {
	return db.queryCharacters(`SELECT ` + characterColumns + ` FROM characters ORDER BY rowid`)
}

// ListByBirthday returns every character whose birthday equals key ("MM-DD"),
// in insertion order. This backs the daily birthday scan.
func (db *DB) ListByBirthday(key string) ([]models.Character, error) {
	return db.queryCharacters(`SELECT `+characterColumns+` FROM characters WHERE birthday = ? ORDER BY rowid`, key)
}

// BulkCreateCharacters inserts records one by one and returns the number
// inserted. A failure mid-batch leaves earlier rows in place; import is
// explicitly best-effort, validation having already happened upstream.
func (db *DB) BulkCreateCharacters(cs []models.Character) (int, error) {
	stmt, err := db.conn.Prepare(`
		INSERT INTO characters (id, name, birthday, source, image, user_birthday_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("store: prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range cs {
		now := time.Now()
		if _, err := stmt.Exec(uuid.NewString(), c.Name, c.Birthday, c.Source, c.Image, c.UserBirthdayMessage, now, now); err != nil {
			return inserted, fmt.Errorf("store: bulk insert after %d rows: %w", inserted, err)
		}
		inserted++
	}
	return inserted, nil
}

// GetSetting returns the value stored under key, or apperr.ErrNotFound when
// the key has never been set. Absence is a valid state for callers.
func (db *DB) GetSetting(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get setting: %w", err)
	}
	return v, nil
}

// PutSetting creates or overwrites a setting.
func (db *DB) PutSetting(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: put setting: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(r rowScanner) (*models.Character, error) {
	var c models.Character
	if err := r.Scan(&c.ID, &c.Name, &c.Birthday, &c.Source, &c.Image, &c.UserBirthdayMessage, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) queryCharacters(query string, args ...any) ([]models.Character, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query characters: %w", err)
	}
	defer rows.Close()

	var out []models.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan character: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
