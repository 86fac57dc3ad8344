package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"filmwise/internal/api"
	"filmwise/internal/domain"
	"filmwise/internal/quiz"
	"filmwise/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultIntroDelay is how long the intro splash stays up before the
// session decides between Login and Sync
const DefaultIntroDelay = 800 * time.Millisecond

const noMoviesMessage = "No movies available"

// Session drives one chat through the FilmWise flow: Intro, Login, the
// rating quiz, partner sync and recommendations.
//
// All mutable state lives behind one mutex so concurrent async
// completions cannot interleave their writes. Every public operation
// bumps a token; async results carrying a stale token are discarded
// instead of overwriting a newer screen.
type Session struct {
	chatID  int64
	gateway api.Gateway
	store   repository.UserStore
	picker  *quiz.Picker
	logger  *zap.Logger

	introDelay time.Duration
	onScreen   func(domain.Screen)

	mu         sync.Mutex
	token      uint64
	user       *domain.User
	screen     domain.Screen
	ratings    []domain.UserRating
	pool       []domain.Movie
	roster     []domain.User
	introTimer *time.Timer
}

// Option configures a Session
type Option func(*Session)

// WithIntroDelay overrides how long the intro splash is shown
func WithIntroDelay(d time.Duration) Option {
	return func(s *Session) {
		s.introDelay = d
	}
}

// WithPicker overrides the random candidate picker
func WithPicker(p *quiz.Picker) Option {
	return func(s *Session) {
		s.picker = p
	}
}

// New creates a session for one chat and loads the previously persisted
// user, if any. onScreen is invoked after every screen change; it must
// not block for long since screen changes are rendered in order.
func New(
	chatID int64,
	gateway api.Gateway,
	store repository.UserStore,
	logger *zap.Logger,
	onScreen func(domain.Screen),
	opts ...Option,
) *Session {
	s := &Session{
		chatID:     chatID,
		gateway:    gateway,
		store:      store,
		picker:     quiz.NewPicker(rand.NewSource(time.Now().UnixNano())),
		logger:     logger.With(zap.String("session_id", uuid.NewString()), zap.Int64("chat_id", chatID)),
		introDelay: DefaultIntroDelay,
		screen:     domain.IntroScreen(),
		onScreen:   onScreen,
	}
	for _, opt := range opts {
		opt(s)
	}

	user, err := store.Load(chatID)
	if err != nil {
		s.logger.Error("Failed to load persisted user", zap.Error(err))
	}
	s.user = user

	return s
}

// Screen returns the active screen
func (s *Session) Screen() domain.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// User returns a copy of the logged-in user, or nil
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Roster returns the other known users from the last sync
func (s *Session) Roster() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.User(nil), s.roster...)
}

// Ratings returns the ratings collected in the current quiz run
func (s *Session) Ratings() []domain.UserRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UserRating(nil), s.ratings...)
}

// Start shows the intro splash and, after the intro delay, routes to
// Login or Sync depending on whether a user is persisted. The timer is
// cancelled if anything else moves the session on first.
func (s *Session) Start() {
	s.mu.Lock()
	token := s.bumpLocked()
	s.screen = domain.IntroScreen()
	s.introTimer = time.AfterFunc(s.introDelay, func() {
		s.mu.Lock()
		if s.staleLocked(token) {
			s.mu.Unlock()
			return
		}
		loggedOut := s.user == nil
		s.mu.Unlock()

		if loggedOut {
			s.showLogin()
		} else {
			s.BeginSync()
		}
	})
	s.mu.Unlock()

	s.publish(domain.IntroScreen())
	s.logger.Info("Session started")
}

// RegisterUser creates an account for the sanitized name and moves on to
// the quiz. An empty sanitized name is ignored. A failed create leaves
// the current screen untouched; the user retries by sending the name
// again.
func (s *Session) RegisterUser(rawName string) {
	name := domain.SanitizeName(rawName)
	if name == "" {
		return
	}

	s.mu.Lock()
	token := s.bumpLocked()
	s.mu.Unlock()

	go func() {
		if err := s.gateway.CreateUser(context.Background(), name); err != nil {
			s.logger.Error("Failed to create user", zap.String("name", name), zap.Error(err))
			return
		}

		s.mu.Lock()
		if s.staleLocked(token) {
			s.mu.Unlock()
			return
		}
		user := domain.User{Name: name}
		s.user = &user
		if err := s.store.Save(s.chatID, user); err != nil {
			s.logger.Error("Failed to persist user", zap.Error(err))
		}
		s.mu.Unlock()

		s.logger.Info("User created", zap.String("name", name))
		s.BeginQuiz()
	}()
}

// BeginQuiz loads the catalog and the user's rating history, filters out
// already-rated titles and shows the first candidate. Collected ratings
// deliberately survive BeginQuiz so an interrupted quiz continues where
// it left off; only BeginSync clears them.
func (s *Session) BeginQuiz() {
	s.mu.Lock()
	token := s.bumpLocked()
	s.screen = domain.LoadingScreen()
	var name string
	if s.user != nil {
		name = domain.SanitizeName(s.user.Name)
	}
	s.mu.Unlock()

	s.publish(domain.LoadingScreen())

	go func() {
		// Both fetches run concurrently; a failure degrades to an empty
		// slice so a dead network surfaces through the empty-pool path.
		var (
			catalog []domain.Movie
			history []domain.UserRating
			wg      sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			movies, err := s.gateway.FetchQuizCatalog(context.Background())
			if err != nil {
				s.logger.Error("Failed to fetch quiz catalog", zap.Error(err))
				return
			}
			s.logger.Info("Fetched quiz catalog", zap.Int("movies", len(movies)))
			catalog = movies
		}()
		go func() {
			defer wg.Done()
			if name == "" {
				return
			}
			ratings, err := s.gateway.FetchRatingHistory(context.Background(), name)
			if err != nil {
				s.logger.Error("Failed to fetch rating history", zap.Error(err))
				return
			}
			s.logger.Info("Fetched rating history", zap.Int("ratings", len(ratings)))
			history = ratings
		}()
		wg.Wait()

		s.mu.Lock()
		if s.staleLocked(token) {
			s.mu.Unlock()
			return
		}

		rated := make([]string, 0, len(history)+len(s.ratings))
		for _, r := range history {
			rated = append(rated, r.Title)
		}
		for _, r := range s.ratings {
			rated = append(rated, r.Title)
		}
		s.pool = quiz.CandidatePool(catalog, rated)

		var next domain.Screen
		if movie, ok := s.picker.Pick(s.pool); ok {
			next = domain.QuizScreen(movie, quiz.Length-len(s.ratings))
		} else {
			next = domain.ErrorScreen(noMoviesMessage)
		}
		s.screen = next
		s.mu.Unlock()

		s.publish(next)
	}()
}

// SubmitRating records the user's star rating for the movie on screen
// and advances to the next candidate. ratingIndex is the zero-based star
// index; SkipRating advances without recording. When the tenth rating
// lands, the batch is posted and the session moves on to Sync.
func (s *Session) SubmitRating(movie domain.Movie, ratingIndex int) {
	s.mu.Lock()
	token := s.bumpLocked()

	s.pool = quiz.Remove(s.pool, movie.Title)
	next, ok := s.picker.Pick(s.pool)
	if !ok {
		s.screen = domain.ErrorScreen(noMoviesMessage)
		s.mu.Unlock()
		s.publish(domain.ErrorScreen(noMoviesMessage))
		return
	}

	if ratingIndex != domain.SkipRating {
		// The stored imdb id is the next candidate's, not the rated
		// movie's. The backend has kept ratings under that id since the
		// first release, so it stays until the API owners rule on it.
		s.ratings = append(s.ratings, domain.UserRating{
			Title:  movie.Title,
			Rating: ratingIndex + 1,
			ImdbID: next.ImdbID,
			Status: domain.StatusWatched,
		})
	}

	if !quiz.IsComplete(s.ratings) {
		screen := domain.QuizScreen(next, quiz.Length-len(s.ratings))
		s.screen = screen
		s.mu.Unlock()
		s.publish(screen)
		return
	}

	user := s.user
	batch := append([]domain.UserRating(nil), s.ratings...)
	s.mu.Unlock()

	go func() {
		if user != nil {
			if err := s.gateway.PostRatings(context.Background(), user.Name, batch); err != nil {
				s.logger.Error("Failed to post ratings", zap.Error(err))
			} else {
				s.logger.Info("Posted ratings", zap.Int("count", len(batch)))
			}
		}

		s.mu.Lock()
		stale := s.staleLocked(token)
		s.mu.Unlock()
		if !stale {
			s.BeginSync()
		}
	}()
}

// BeginSync refreshes the partner roster, drops the current user from it
// case-insensitively, clears the collected ratings and shows the Sync
// screen. A failed roster fetch keeps the previous roster; the screen
// still changes.
func (s *Session) BeginSync() {
	s.mu.Lock()
	token := s.bumpLocked()
	current := s.user
	s.mu.Unlock()

	go func() {
		users, err := s.gateway.ListUsers(context.Background())
		if err != nil {
			s.logger.Error("Failed to fetch users", zap.Error(err))
		} else {
			s.logger.Info("Fetched user roster", zap.Int("users", len(users)))
		}

		s.mu.Lock()
		if s.staleLocked(token) {
			s.mu.Unlock()
			return
		}
		if err == nil {
			roster := make([]domain.User, 0, len(users))
			for _, u := range users {
				if current != nil && domain.SameName(u.Name, current.Name) {
					continue
				}
				roster = append(roster, u)
			}
			s.roster = roster
		}
		s.ratings = nil
		s.screen = domain.SyncScreen()
		s.mu.Unlock()

		s.publish(domain.SyncScreen())
	}()
}

// RequestRecommendations asks the API for movies the current user and
// the chosen partner should watch together. On failure the session falls
// back to the Sync screen with the roster untouched.
func (s *Session) RequestRecommendations(partnerName string) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	token := s.bumpLocked()
	pair := []domain.User{*s.user, {Name: partnerName}}
	s.mu.Unlock()

	go func() {
		movies, err := s.gateway.FetchRecommendations(context.Background(), pair)

		s.mu.Lock()
		if s.staleLocked(token) {
			s.mu.Unlock()
			return
		}
		var next domain.Screen
		if err != nil {
			s.logger.Error("Failed to fetch recommendations", zap.Error(err))
			next = domain.SyncScreen()
		} else {
			s.logger.Info("Fetched recommendations", zap.Int("movies", len(movies)))
			next = domain.RecommendationScreen(movies)
		}
		s.screen = next
		s.mu.Unlock()

		s.publish(next)
	}()
}

// ShowSync returns to the Sync screen without refreshing the roster.
// This is the back action from the recommendation list.
func (s *Session) ShowSync() {
	s.mu.Lock()
	s.bumpLocked()
	s.screen = domain.SyncScreen()
	s.mu.Unlock()

	s.publish(domain.SyncScreen())
}

// Logout forgets the persisted user and returns to Login
func (s *Session) Logout() {
	s.mu.Lock()
	s.bumpLocked()
	s.user = nil
	if err := s.store.Delete(s.chatID); err != nil {
		s.logger.Error("Failed to clear persisted user", zap.Error(err))
	}
	s.screen = domain.LoginScreen()
	s.mu.Unlock()

	s.publish(domain.LoginScreen())
	s.logger.Info("User logged out")
}

func (s *Session) showLogin() {
	s.mu.Lock()
	s.bumpLocked()
	s.screen = domain.LoginScreen()
	s.mu.Unlock()

	s.publish(domain.LoginScreen())
}

// bumpLocked invalidates every in-flight async completion and cancels a
// pending intro timer. Callers must hold the mutex.
func (s *Session) bumpLocked() uint64 {
	s.token++
	if s.introTimer != nil {
		s.introTimer.Stop()
		s.introTimer = nil
	}
	return s.token
}

func (s *Session) staleLocked(token uint64) bool {
	return token != s.token
}

// publish must be called without the mutex held
func (s *Session) publish(screen domain.Screen) {
	if s.onScreen != nil {
		s.onScreen(screen)
	}
}
