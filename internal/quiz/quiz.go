package quiz

import (
	"math/rand"

	"filmwise/internal/domain"
)

// Length is the number of ratings a full quiz collects
const Length = 10

// CandidatePool filters the catalog down to movies whose title has not
// been rated yet. The catalog order is preserved.
func CandidatePool(catalog []domain.Movie, ratedTitles []string) []domain.Movie {
	rated := make(map[string]struct{}, len(ratedTitles))
	for _, title := range ratedTitles {
		rated[title] = struct{}{}
	}

	pool := make([]domain.Movie, 0, len(catalog))
	for _, movie := range catalog {
		if _, ok := rated[movie.Title]; !ok {
			pool = append(pool, movie)
		}
	}
	return pool
}

// Remove returns the pool without any movie carrying the given title
func Remove(pool []domain.Movie, title string) []domain.Movie {
	remaining := make([]domain.Movie, 0, len(pool))
	for _, movie := range pool {
		if movie.Title != title {
			remaining = append(remaining, movie)
		}
	}
	return remaining
}

// IsComplete reports whether enough ratings have been collected
func IsComplete(ratings []domain.UserRating) bool {
	return len(ratings) >= Length
}

// Picker selects quiz candidates from an injectable random source
type Picker struct {
	rand *rand.Rand
}

// NewPicker creates a picker over the given source
func NewPicker(src rand.Source) *Picker {
	return &Picker{rand: rand.New(src)}
}

// Pick returns one movie chosen uniformly at random, or false when the
// pool is empty
func (p *Picker) Pick(pool []domain.Movie) (domain.Movie, bool) {
	if len(pool) == 0 {
		return domain.Movie{}, false
	}
	return pool[p.rand.Intn(len(pool))], true
}
