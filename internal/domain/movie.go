package domain

// Movie is a catalog entry. Identity is the imdb id, not the full record.
type Movie struct {
	Title      string
	Year       string
	Rated      string
	Released   string
	Runtime    string
	Genre      string
	Director   string
	Writer     string
	Actors     string
	Plot       string
	Language   string
	Country    string
	Awards     string
	Poster     string
	Ratings    []Rating
	Metascore  string
	ImdbRating string
	ImdbVotes  string
	ImdbID     string
	Type       string
	DVD        string
	BoxOffice  string
	Production string
	Website    string
	Response   string

	// Rationales is populated only on recommendation results
	Rationales []string
}

// Same reports whether two movies are the same catalog entry
func (m Movie) Same(other Movie) bool {
	return m.ImdbID == other.ImdbID
}

// Rating is a third-party review score attached to a movie
type Rating struct {
	Source string
	Value  string
}
