package sqlite

import (
	"database/sql"

	"filmwise/internal/domain"
)

// UserStore implements repository.UserStore on a local sqlite file
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Load returns the persisted user for a chat, or nil if none is stored
func (s *UserStore) Load(chatID int64) (*domain.User, error) {
	var name string
	query := `SELECT name FROM users WHERE chat_id = ?`
	err := s.db.QueryRow(query, chatID).Scan(&name)

	if err == sql.ErrNoRows {
		// Logged out
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.User{Name: name}, nil
}

// Save stores the user for a chat, replacing any previous record
func (s *UserStore) Save(chatID int64, user domain.User) error {
	query := `
		INSERT INTO users (chat_id, name)
		VALUES (?, ?)
		ON CONFLICT (chat_id)
		DO UPDATE SET name = excluded.name
	`
	_, err := s.db.Exec(query, chatID, user.Name)
	return err
}

// Delete removes the persisted user for a chat
func (s *UserStore) Delete(chatID int64) error {
	query := `DELETE FROM users WHERE chat_id = ?`
	_, err := s.db.Exec(query, chatID)
	return err
}
