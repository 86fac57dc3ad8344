package testutil

import (
	"fmt"

	"filmwise/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestMovie creates a catalog movie with an imdb id derived from the title
func NewTestMovie(title string) domain.Movie {
	return domain.Movie{
		Title:  title,
		Year:   "1999",
		Genre:  "Drama",
		ImdbID: fmt.Sprintf("tt-%s", title),
		Type:   "movie",
	}
}

// NewTestCatalog creates one movie per title
func NewTestCatalog(titles ...string) []domain.Movie {
	catalog := make([]domain.Movie, 0, len(titles))
	for _, title := range titles {
		catalog = append(catalog, NewTestMovie(title))
	}
	return catalog
}

// NewTestRating creates a watched rating
func NewTestRating(title string, rating int) domain.UserRating {
	return domain.UserRating{
		Title:  title,
		Rating: rating,
		ImdbID: fmt.Sprintf("tt-%s", title),
		Status: domain.StatusWatched,
	}
}

// NewTestUsers creates one user per name
func NewTestUsers(names ...string) []domain.User {
	users := make([]domain.User, 0, len(names))
	for _, name := range names {
		users = append(users, domain.User{Name: name})
	}
	return users
}
