package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"filmwise/internal/domain"

	"go.uber.org/zap"
)

// Gateway is the remote FilmWise API surface the session depends on
type Gateway interface {
	CreateUser(ctx context.Context, name string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	FetchQuizCatalog(ctx context.Context) ([]domain.Movie, error)
	FetchRatingHistory(ctx context.Context, name string) ([]domain.UserRating, error)
	PostRatings(ctx context.Context, name string, ratings []domain.UserRating) error
	FetchRecommendations(ctx context.Context, users []domain.User) ([]domain.Movie, error)
}

// Client talks JSON over HTTP to the FilmWise API. Every operation is a
// single attempt; callers decide what a failure means for the screen.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	recsTimeout time.Duration
	logger      *zap.Logger
}

// NewClient creates an API client for the given base URL. Only the
// recommendation call carries a timeout; the rest wait as long as the
// caller's context allows.
func NewClient(baseURL string, recsTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		recsTimeout: recsTimeout,
		logger:      logger,
	}
}

// CreateUser registers a new account
func (c *Client) CreateUser(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/user", userDTO{Name: name}, nil)
}

// ListUsers returns every known account
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var dtos []userDTO
	if err := c.do(ctx, http.MethodGet, "/user", nil, &dtos); err != nil {
		return nil, err
	}
	return usersToDomain(dtos), nil
}

// FetchQuizCatalog returns the full movie catalog used by the quiz
func (c *Client) FetchQuizCatalog(ctx context.Context) ([]domain.Movie, error) {
	var dtos []movieDTO
	if err := c.do(ctx, http.MethodGet, "/movies/quiz", nil, &dtos); err != nil {
		return nil, err
	}
	return moviesToDomain(dtos), nil
}

// FetchRatingHistory returns the ratings already stored for a user.
// The name must be in its sanitized form.
func (c *Client) FetchRatingHistory(ctx context.Context, name string) ([]domain.UserRating, error) {
	var dtos []userRatingDTO
	if err := c.do(ctx, http.MethodGet, "/movies/ratings/"+name, nil, &dtos); err != nil {
		return nil, err
	}
	return ratingsToDomain(dtos), nil
}

// PostRatings stores a batch of collected ratings for a user
func (c *Client) PostRatings(ctx context.Context, name string, ratings []domain.UserRating) error {
	body := postRatingsRequest{Name: name, Results: ratingsToDTO(ratings)}
	return c.do(ctx, http.MethodPost, "/movies", body, nil)
}

// FetchRecommendations asks for movies the given pair should watch
// together. The call is slow on the server side, hence the dedicated
// timeout.
func (c *Client) FetchRecommendations(ctx context.Context, users []domain.User) ([]domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, c.recsTimeout)
	defer cancel()

	var dtos []movieDTO
	if err := c.do(ctx, http.MethodPost, "/movies/recs", usersToDTO(users), &dtos); err != nil {
		return nil, err
	}
	return moviesToDomain(dtos), nil
}

// do performs one request and maps every failure mode onto the typed
// errors: transport problems to NetworkError, non-200 to StatusError and
// body problems to DecodeError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &DecodeError{Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("API request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
