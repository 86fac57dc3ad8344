package repository

import "filmwise/internal/domain"

// UserStore persists the logged-in user for a chat. Load returns nil
// when no user is stored, which means logged out.
type UserStore interface {
	Load(chatID int64) (*domain.User, error)
	Save(chatID int64, user domain.User) error
	Delete(chatID int64) error
}
