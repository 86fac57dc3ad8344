package domain

// StatusWatched marks a rating of a movie the user has seen
const StatusWatched = "watched"

// SkipRating is the index the quiz sends when the user has not seen the movie
const SkipRating = -1

// UserRating is one collected star rating, 1 to 5
type UserRating struct {
	Title  string
	Rating int
	ImdbID string
	Status string
}
