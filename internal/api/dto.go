package api

import "filmwise/internal/domain"

// Movie JSON uses capitalized keys on the wire, except the imdb trio.
type movieDTO struct {
	Title      string      `json:"Title"`
	Year       string      `json:"Year"`
	Rated      string      `json:"Rated"`
	Released   string      `json:"Released"`
	Runtime    string      `json:"Runtime"`
	Genre      string      `json:"Genre"`
	Director   string      `json:"Director"`
	Writer     string      `json:"Writer"`
	Actors     string      `json:"Actors"`
	Plot       string      `json:"Plot"`
	Language   string      `json:"Language"`
	Country    string      `json:"Country"`
	Awards     string      `json:"Awards"`
	Poster     string      `json:"Poster"`
	Ratings    []ratingDTO `json:"Ratings"`
	Metascore  string      `json:"Metascore"`
	ImdbRating string      `json:"imdbRating"`
	ImdbVotes  string      `json:"imdbVotes"`
	ImdbID     string      `json:"imdbID"`
	Type       string      `json:"Type"`
	DVD        string      `json:"DVD"`
	BoxOffice  string      `json:"BoxOffice"`
	Production string      `json:"Production"`
	Website    string      `json:"Website"`
	Response   string      `json:"Response"`
	Rationales []string    `json:"Rationales,omitempty"`
}

type ratingDTO struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type userDTO struct {
	Name string `json:"name"`
}

// The wire key really is "imbdID". The first client release shipped with
// the typo and the backend stores ratings under it, so it is the contract.
type userRatingDTO struct {
	Title  string `json:"title"`
	Rating int    `json:"rating"`
	ImdbID string `json:"imbdID,omitempty"`
	Status string `json:"status"`
}

type postRatingsRequest struct {
	Name    string          `json:"name"`
	Results []userRatingDTO `json:"results"`
}

func (d movieDTO) toDomain() domain.Movie {
	ratings := make([]domain.Rating, 0, len(d.Ratings))
	for _, r := range d.Ratings {
		ratings = append(ratings, domain.Rating{Source: r.Source, Value: r.Value})
	}

	return domain.Movie{
		Title:      d.Title,
		Year:       d.Year,
		Rated:      d.Rated,
		Released:   d.Released,
		Runtime:    d.Runtime,
		Genre:      d.Genre,
		Director:   d.Director,
		Writer:     d.Writer,
		Actors:     d.Actors,
		Plot:       d.Plot,
		Language:   d.Language,
		Country:    d.Country,
		Awards:     d.Awards,
		Poster:     d.Poster,
		Ratings:    ratings,
		Metascore:  d.Metascore,
		ImdbRating: d.ImdbRating,
		ImdbVotes:  d.ImdbVotes,
		ImdbID:     d.ImdbID,
		Type:       d.Type,
		DVD:        d.DVD,
		BoxOffice:  d.BoxOffice,
		Production: d.Production,
		Website:    d.Website,
		Response:   d.Response,
		Rationales: d.Rationales,
	}
}

func moviesToDomain(dtos []movieDTO) []domain.Movie {
	movies := make([]domain.Movie, 0, len(dtos))
	for _, d := range dtos {
		movies = append(movies, d.toDomain())
	}
	return movies
}

func usersToDomain(dtos []userDTO) []domain.User {
	users := make([]domain.User, 0, len(dtos))
	for _, d := range dtos {
		users = append(users, domain.User{Name: d.Name})
	}
	return users
}

func usersToDTO(users []domain.User) []userDTO {
	dtos := make([]userDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userDTO{Name: u.Name})
	}
	return dtos
}

func ratingsToDomain(dtos []userRatingDTO) []domain.UserRating {
	ratings := make([]domain.UserRating, 0, len(dtos))
	for _, d := range dtos {
		ratings = append(ratings, domain.UserRating{
			Title:  d.Title,
			Rating: d.Rating,
			ImdbID: d.ImdbID,
			Status: d.Status,
		})
	}
	return ratings
}

func ratingsToDTO(ratings []domain.UserRating) []userRatingDTO {
	dtos := make([]userRatingDTO, 0, len(ratings))
	for _, r := range ratings {
		dtos = append(dtos, userRatingDTO{
			Title:  r.Title,
			Rating: r.Rating,
			ImdbID: r.ImdbID,
			Status: r.Status,
		})
	}
	return dtos
}
