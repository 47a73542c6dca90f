package store

import "github.com/mizutama/koyomi/internal/models"

// Registry defines the record-store contract for characters and settings.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Registry interface {
	CreateCharacter(c models.Character) (string, error)
	UpdateCharacter(id string, c models.Character) error
	DeleteCharacter(id string) error
	GetCharacter(id string) (*models.Character, error)
	ListCharacters() ([]models.Character, error)
	ListByBirthday(key string) ([]models.Character, error)
	BulkCreateCharacters(cs []models.Character) (int, error)
	GetSetting(key string) (string, error)
	PutSetting(key, value string) error
	Close() error
}

// Verify *DB satisfies Registry at compile time.
var _ Registry = (*DB)(nil)
