package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

type chatEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatLimiter tracks update rates per chat with expiration of idle chats
type ChatLimiter struct {
	mu    sync.Mutex
	chats map[int64]*chatEntry
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

// NewChatLimiter constructs a per-chat limiter allowing up to `events`
// updates per `window` with an additional burst capacity. Idle chats
// expire after the ttl.
func NewChatLimiter(events int, window time.Duration, burst int, ttl time.Duration) *ChatLimiter {
	if events <= 0 {
		events = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ChatLimiter{
		chats: make(map[int64]*chatEntry),
		limit: rate.Every(window / time.Duration(events)),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Allow reports whether the chat may send another update right now
func (l *ChatLimiter) Allow(chatID int64) bool {
	now := l.now()

	l.mu.Lock()
	l.gcLocked(now)
	entry := l.entryLocked(chatID, now)
	l.mu.Unlock()

	return entry.limiter.Allow()
}

func (l *ChatLimiter) entryLocked(chatID int64, now time.Time) *chatEntry {
	if entry, ok := l.chats[chatID]; ok {
		entry.lastSeen = now
		return entry
	}

	entry := &chatEntry{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.chats[chatID] = entry
	return entry
}

func (l *ChatLimiter) gcLocked(now time.Time) {
	for chatID, entry := range l.chats {
		if now.Sub(entry.lastSeen) > l.ttl {
			delete(l.chats, chatID)
		}
	}
}

// withNowFunc lets tests override the time source
func (l *ChatLimiter) withNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// FloodLimiter drops updates from chats that tap faster than the bot can
// meaningfully react. Dropped callback taps are still acknowledged so
// the client stops its spinner.
func FloodLimiter(limiter *ChatLimiter, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || limiter.Allow(chat.ID) {
				return next(c)
			}

			logger.Warn("Dropped flooding update", zap.Int64("chat_id", chat.ID))
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: "Easy there, one tap at a time"})
			}
			return nil
		}
	}
}
