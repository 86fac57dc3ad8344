package session

import (
	"fmt"
	"testing"
	"time"

	"filmwise/internal/domain"
	"filmwise/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChatID = int64(42)

func waitForScreen(t *testing.T, s *Session, kind domain.ScreenKind) domain.Screen {
	t.Helper()
	assert.Eventually(t, func() bool {
		return s.Screen().Kind == kind
	}, time.Second, 2*time.Millisecond, "expected screen %q, still on %q", kind, s.Screen().Kind)
	return s.Screen()
}

// settle gives pending goroutines a chance to (wrongly) apply stale
// results before a negative assertion
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func newTestSession(t *testing.T, gateway *testutil.MockGateway, storedUser *domain.User, opts ...Option) (*Session, *testutil.MockUserStore) {
	t.Helper()

	store := new(testutil.MockUserStore)
	store.On("Load", testChatID).Return(storedUser, nil)

	opts = append([]Option{WithIntroDelay(time.Millisecond)}, opts...)
	s := New(testChatID, gateway, store, testutil.NewTestLogger(), nil, opts...)
	return s, store
}

func TestStart_NoPersistedUserLandsOnLogin(t *testing.T) {
	gateway := new(testutil.MockGateway)
	s, _ := newTestSession(t, gateway, nil, WithIntroDelay(30*time.Millisecond))

	s.Start()

	assert.Equal(t, domain.ScreenIntro, s.Screen().Kind)
	waitForScreen(t, s, domain.ScreenLogin)
	gateway.AssertExpectations(t)
}

func TestStart_PersistedUserLandsOnSync(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Ripley", "Deckard"), nil)
	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.Start()

	waitForScreen(t, s, domain.ScreenSync)
	assert.Equal(t, testutil.NewTestUsers("Deckard"), s.Roster())
}

func TestStart_MovingOnCancelsIntroTimer(t *testing.T) {
	gateway := new(testutil.MockGateway)
	s, store := newTestSession(t, gateway, nil, WithIntroDelay(20*time.Millisecond))
	store.On("Delete", testChatID).Return(nil)

	s.Start()
	s.Logout()

	settle()
	// The timer must not fire on top of the logout; the token bump
	// swallowed it
	assert.Equal(t, domain.ScreenLogin, s.Screen().Kind)
	gateway.AssertNotCalled(t, "ListUsers", mock.Anything)
}

func TestRegisterUser_BlankNameIsIgnored(t *testing.T) {
	gateway := new(testutil.MockGateway)
	s, _ := newTestSession(t, gateway, nil)
	s.Start()
	waitForScreen(t, s, domain.ScreenLogin)

	s.RegisterUser("   ")

	settle()
	assert.Equal(t, domain.ScreenLogin, s.Screen().Kind)
	gateway.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterUser_SuccessPersistsAndStartsQuiz(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("CreateUser", mock.Anything, "EllenRipley").Return(nil)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("Alien", "Aliens"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "EllenRipley").Return([]domain.UserRating{}, nil)

	s, store := newTestSession(t, gateway, nil)
	store.On("Save", testChatID, domain.User{Name: "EllenRipley"}).Return(nil)

	s.RegisterUser(" Ellen Ripley ")

	screen := waitForScreen(t, s, domain.ScreenQuiz)
	assert.Equal(t, 10, screen.RatingsLeft)
	require.NotNil(t, s.User())
	assert.Equal(t, "EllenRipley", s.User().Name)
	store.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestRegisterUser_FailureStaysOnLogin(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("CreateUser", mock.Anything, "Ripley").Return(fmt.Errorf("boom"))

	s, store := newTestSession(t, gateway, nil)
	s.Start()
	waitForScreen(t, s, domain.ScreenLogin)

	s.RegisterUser("Ripley")

	settle()
	assert.Equal(t, domain.ScreenLogin, s.Screen().Kind)
	assert.Nil(t, s.User())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBeginQuiz_FiltersRatedTitles(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("A", "B", "C"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{
		testutil.NewTestRating("A", 5),
	}, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.BeginQuiz()

	assert.Equal(t, domain.ScreenLoading, s.Screen().Kind)
	screen := waitForScreen(t, s, domain.ScreenQuiz)
	assert.Contains(t, []string{"B", "C"}, screen.Movie.Title)
	assert.Equal(t, 10, screen.RatingsLeft)
}

func TestBeginQuiz_EverythingRatedIsAnError(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("A", "B"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{
		testutil.NewTestRating("A", 5),
		testutil.NewTestRating("B", 1),
	}, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.BeginQuiz()

	screen := waitForScreen(t, s, domain.ScreenError)
	assert.Equal(t, "No movies available", screen.Message)
}

func TestBeginQuiz_FetchFailuresDegradeToEmptyPool(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(nil, fmt.Errorf("network down"))
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return(nil, fmt.Errorf("network down"))

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.BeginQuiz()

	screen := waitForScreen(t, s, domain.ScreenError)
	assert.Equal(t, "No movies available", screen.Message)
}

func TestSubmitRating_SkipDoesNotRecord(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("A", "B", "C"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{}, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	s.BeginQuiz()
	screen := waitForScreen(t, s, domain.ScreenQuiz)

	s.SubmitRating(screen.Movie, domain.SkipRating)

	next := s.Screen()
	assert.Equal(t, domain.ScreenQuiz, next.Kind)
	assert.Equal(t, 10, next.RatingsLeft)
	assert.Empty(t, s.Ratings())
	assert.NotEqual(t, screen.Movie.Title, next.Movie.Title)
}

func TestSubmitRating_StarIndexMapsToValue(t *testing.T) {
	tests := []struct {
		name          string
		index         int
		expectedValue int
	}{
		{name: "one star", index: 0, expectedValue: 1},
		{name: "three stars", index: 2, expectedValue: 3},
		{name: "five stars", index: 4, expectedValue: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(testutil.MockGateway)
			gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("A", "B"), nil)
			gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{}, nil)

			s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
			s.BeginQuiz()
			screen := waitForScreen(t, s, domain.ScreenQuiz)

			s.SubmitRating(screen.Movie, tt.index)

			ratings := s.Ratings()
			require.Len(t, ratings, 1)
			assert.Equal(t, screen.Movie.Title, ratings[0].Title)
			assert.Equal(t, tt.expectedValue, ratings[0].Rating)
			assert.Equal(t, domain.StatusWatched, ratings[0].Status)

			// The recorded imdb id belongs to the movie that replaced the
			// rated one on screen, matching what the backend stores
			assert.Equal(t, s.Screen().Movie.ImdbID, ratings[0].ImdbID)
			assert.Equal(t, 9, s.Screen().RatingsLeft)
		})
	}
}

func TestSubmitRating_ExhaustedPoolIsAnError(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog("A", "B"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{}, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	s.BeginQuiz()
	screen := waitForScreen(t, s, domain.ScreenQuiz)

	s.SubmitRating(screen.Movie, 4)
	require.Equal(t, domain.ScreenQuiz, s.Screen().Kind)

	s.SubmitRating(s.Screen().Movie, 4)

	assert.Equal(t, domain.ScreenError, s.Screen().Kind)
	assert.Equal(t, "No movies available", s.Screen().Message)
}

func TestSubmitRating_TenthRatingPostsAndSyncs(t *testing.T) {
	titles := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		titles = append(titles, fmt.Sprintf("Movie %d", i))
	}

	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Return(testutil.NewTestCatalog(titles...), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{}, nil)
	gateway.On("PostRatings", mock.Anything, "Ripley", mock.MatchedBy(func(batch []domain.UserRating) bool {
		return len(batch) == 10
	})).Return(nil).Once()
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Deckard"), nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	s.BeginQuiz()
	waitForScreen(t, s, domain.ScreenQuiz)

	// Nine ratings keep the quiz going
	for i := 0; i < 9; i++ {
		screen := s.Screen()
		require.Equal(t, domain.ScreenQuiz, screen.Kind)
		s.SubmitRating(screen.Movie, 3)
		require.Equal(t, 9-i, s.Screen().RatingsLeft)
	}
	gateway.AssertNotCalled(t, "PostRatings", mock.Anything, mock.Anything, mock.Anything)

	// The tenth posts the batch and moves on to Sync
	s.SubmitRating(s.Screen().Movie, 3)
	waitForScreen(t, s, domain.ScreenSync)

	assert.Empty(t, s.Ratings(), "sync clears the collected ratings")
	gateway.AssertExpectations(t)
}

func TestBeginSync_ExcludesCurrentUserCaseInsensitively(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Alice", "Bob", "CurrentUser"), nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "currentuser"})

	s.BeginSync()

	waitForScreen(t, s, domain.ScreenSync)
	assert.Equal(t, testutil.NewTestUsers("Alice", "Bob"), s.Roster())
}

func TestBeginSync_IsIdempotent(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Alice", "Ripley"), nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.BeginSync()
	waitForScreen(t, s, domain.ScreenSync)

	s.BeginSync()
	settle()

	assert.Equal(t, domain.ScreenSync, s.Screen().Kind)
	assert.Equal(t, testutil.NewTestUsers("Alice"), s.Roster())
	assert.Empty(t, s.Ratings())
}

func TestBeginSync_FetchFailureKeepsRoster(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Alice"), nil).Once()
	gateway.On("ListUsers", mock.Anything).Return(nil, fmt.Errorf("boom"))

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.BeginSync()
	waitForScreen(t, s, domain.ScreenSync)
	require.Equal(t, testutil.NewTestUsers("Alice"), s.Roster())

	s.ShowSync() // leave and come back so the screen change is observable
	s.BeginSync()
	settle()

	assert.Equal(t, domain.ScreenSync, s.Screen().Kind)
	assert.Equal(t, testutil.NewTestUsers("Alice"), s.Roster())
}

func TestRequestRecommendations_Success(t *testing.T) {
	recs := []domain.Movie{
		{Title: "Heat", ImdbID: "tt0113277", Rationales: []string{"You both love slow burns"}},
	}

	gateway := new(testutil.MockGateway)
	gateway.On("FetchRecommendations", mock.Anything, []domain.User{{Name: "Ripley"}, {Name: "Deckard"}}).
		Return(recs, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})

	s.RequestRecommendations("Deckard")

	screen := waitForScreen(t, s, domain.ScreenRecommendation)
	assert.Equal(t, recs, screen.Movies)
}

func TestRequestRecommendations_FailureFallsBackToSync(t *testing.T) {
	gateway := new(testutil.MockGateway)
	gateway.On("ListUsers", mock.Anything).Return(testutil.NewTestUsers("Deckard"), nil)
	gateway.On("FetchRecommendations", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("timeout"))

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	s.BeginSync()
	waitForScreen(t, s, domain.ScreenSync)

	s.RequestRecommendations("Deckard")

	settle()
	assert.Equal(t, domain.ScreenSync, s.Screen().Kind)
	assert.Equal(t, testutil.NewTestUsers("Deckard"), s.Roster(), "roster untouched")
}

func TestRequestRecommendations_RequiresUser(t *testing.T) {
	gateway := new(testutil.MockGateway)
	s, _ := newTestSession(t, gateway, nil)

	s.RequestRecommendations("Deckard")

	settle()
	gateway.AssertNotCalled(t, "FetchRecommendations", mock.Anything, mock.Anything)
}

func TestLogout_ClearsUserAndLandsOnLogin(t *testing.T) {
	gateway := new(testutil.MockGateway)
	s, store := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	store.On("Delete", testChatID).Return(nil)

	s.Logout()

	assert.Equal(t, domain.ScreenLogin, s.Screen().Kind)
	assert.Nil(t, s.User())
	store.AssertExpectations(t)
}

func TestStaleQuizFetchIsDiscardedAfterLogout(t *testing.T) {
	release := make(chan struct{})

	gateway := new(testutil.MockGateway)
	gateway.On("FetchQuizCatalog", mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(testutil.NewTestCatalog("A", "B"), nil)
	gateway.On("FetchRatingHistory", mock.Anything, "Ripley").Return([]domain.UserRating{}, nil)

	s, store := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	store.On("Delete", testChatID).Return(nil)

	s.BeginQuiz()
	assert.Equal(t, domain.ScreenLoading, s.Screen().Kind)

	// The user logs out while the catalog fetch is still in flight
	s.Logout()
	close(release)

	settle()
	assert.Equal(t, domain.ScreenLogin, s.Screen().Kind, "stale quiz completion must not win")
}

func TestShowSync_ReturnsWithoutRefetch(t *testing.T) {
	recs := []domain.Movie{{Title: "Heat", ImdbID: "tt0113277"}}

	gateway := new(testutil.MockGateway)
	gateway.On("FetchRecommendations", mock.Anything, mock.Anything).Return(recs, nil)

	s, _ := newTestSession(t, gateway, &domain.User{Name: "Ripley"})
	s.RequestRecommendations("Deckard")
	waitForScreen(t, s, domain.ScreenRecommendation)

	s.ShowSync()

	assert.Equal(t, domain.ScreenSync, s.Screen().Kind)
	gateway.AssertNotCalled(t, "ListUsers", mock.Anything)
}
