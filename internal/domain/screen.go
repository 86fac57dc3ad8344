package domain

// ScreenKind tags the active screen variant
type ScreenKind string

const (
	ScreenIntro          ScreenKind = "intro"
	ScreenLoading        ScreenKind = "loading"
	ScreenLogin          ScreenKind = "login"
	ScreenQuiz           ScreenKind = "quiz"
	ScreenSync           ScreenKind = "sync"
	ScreenRecommendation ScreenKind = "recommendation"
	ScreenError          ScreenKind = "error"
)

// Screen is what the user currently sees. Exactly one variant is active;
// payload fields are meaningful only for the kind that carries them.
type Screen struct {
	Kind ScreenKind

	// quiz payload
	Movie       Movie
	RatingsLeft int

	// recommendation payload
	Movies []Movie

	// error payload
	Message string
}

// IntroScreen is the splash shown at startup
func IntroScreen() Screen {
	return Screen{Kind: ScreenIntro}
}

// LoadingScreen is shown while quiz data is being fetched
func LoadingScreen() Screen {
	return Screen{Kind: ScreenLoading}
}

// LoginScreen asks for the user's name
func LoginScreen() Screen {
	return Screen{Kind: ScreenLogin}
}

// QuizScreen shows one movie to rate and how many ratings remain
func QuizScreen(movie Movie, ratingsLeft int) Screen {
	return Screen{Kind: ScreenQuiz, Movie: movie, RatingsLeft: ratingsLeft}
}

// SyncScreen shows the partner picker
func SyncScreen() Screen {
	return Screen{Kind: ScreenSync}
}

// RecommendationScreen shows the shared watch list
func RecommendationScreen(movies []Movie) Screen {
	return Screen{Kind: ScreenRecommendation, Movies: movies}
}

// ErrorScreen shows a terminal message
func ErrorScreen(message string) Screen {
	return Screen{Kind: ScreenError, Message: message}
}
