package handler

import (
	"sync"

	"filmwise/internal/api"
	"filmwise/internal/domain"
	"filmwise/internal/repository"
	"filmwise/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler wires telegram updates to per-chat sessions
type Handler struct {
	bot     *tele.Bot
	gateway api.Gateway
	store   repository.UserStore
	logger  *zap.Logger

	sessionOpts []session.Option

	sessionsMux sync.RWMutex
	sessions    map[int64]*session.Session
}

// New creates a new handler instance
func New(
	bot *tele.Bot,
	gateway api.Gateway,
	store repository.UserStore,
	logger *zap.Logger,
	sessionOpts ...session.Option,
) *Handler {
	return &Handler{
		bot:         bot,
		gateway:     gateway,
		store:       store,
		logger:      logger,
		sessionOpts: sessionOpts,
		sessions:    make(map[int64]*session.Session),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/quiz", h.handleQuizAgain)
	h.bot.Handle("/logout", h.handleLogout)

	// Text messages (the login name prompt)
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnSkip, h.handleSkip)
	h.bot.Handle(&btnQuizAgain, h.handleQuizAgain)
	h.bot.Handle(&btnLogout, h.handleLogout)
	h.bot.Handle(&btnBackToSync, h.handleBackToSync)
	h.bot.Handle(&btnRestart, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// sessionFor returns the chat's session, creating one on first contact
func (h *Handler) sessionFor(c tele.Context) *session.Session {
	chatID := c.Chat().ID

	h.sessionsMux.RLock()
	sess, exists := h.sessions[chatID]
	h.sessionsMux.RUnlock()
	if exists {
		return sess
	}

	h.sessionsMux.Lock()
	defer h.sessionsMux.Unlock()
	if sess, exists := h.sessions[chatID]; exists {
		return sess
	}

	sess = session.New(chatID, h.gateway, h.store, h.logger, func(screen domain.Screen) {
		h.renderScreen(chatID, screen)
	}, h.sessionOpts...)
	h.sessions[chatID] = sess
	return sess
}

// handleStart handles /start and the restart button
func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("chat_id", c.Chat().ID),
		zap.String("username", c.Sender().Username),
	)

	h.sessionFor(c).Start()

	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

// handleText treats a plain message as the login name when the session
// is on the Login screen; everything else is ignored
func (h *Handler) handleText(c tele.Context) error {
	text := c.Text()
	if len(text) > 0 && text[0] == '/' {
		return nil
	}

	sess := h.sessionFor(c)
	if sess.Screen().Kind != domain.ScreenLogin {
		return nil
	}

	sess.RegisterUser(text)
	return nil
}

// handleQuizAgain starts a fresh quiz run from the Sync screen
func (h *Handler) handleQuizAgain(c tele.Context) error {
	h.sessionFor(c).BeginQuiz()

	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

// handleLogout clears the stored user and returns to Login
func (h *Handler) handleLogout(c tele.Context) error {
	h.sessionFor(c).Logout()

	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

// handleBackToSync returns from the recommendation list
func (h *Handler) handleBackToSync(c tele.Context) error {
	h.sessionFor(c).ShowSync()
	return c.Respond()
}

// handleSkip advances the quiz without recording a rating
func (h *Handler) handleSkip(c tele.Context) error {
	return h.submitRating(c, domain.SkipRating)
}

// Inline keyboard buttons
var (
	btnSkip = tele.Btn{
		Unique: "skip",
		Text:   "🙈 Haven't seen it",
	}
	btnQuizAgain = tele.Btn{
		Unique: "quiz_again",
		Text:   "🎬 Take the quiz",
	}
	btnLogout = tele.Btn{
		Unique: "logout",
		Text:   "🚪 Log out",
	}
	btnBackToSync = tele.Btn{
		Unique: "back_sync",
		Text:   "◀️ Back",
	}
	btnRestart = tele.Btn{
		Unique: "restart",
		Text:   "🔄 Start over",
	}
)
