package handler

import (
	"strconv"
	"strings"
	"unicode"

	"filmwise/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseRatingIndex extracts the zero-based star index from a rate_
// callback. Anything outside the five stars is rejected.
func parseRatingIndex(data string) (int, bool) {
	index, err := strconv.Atoi(strings.TrimPrefix(data, "rate_"))
	if err != nil || index < 0 || index > 4 {
		return 0, false
	}
	return index, true
}

// handleCallback handles dynamic callbacks: star ratings and partner picks
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters. Depending on how the
	// tap arrives the payload may sit in Data or in Unique.
	data := cleanCallbackData(callback.Data)
	if data == "" {
		data = callback.Unique
	}
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("chat_id", c.Chat().ID),
	)

	// Static buttons that didn't come through their Btn handlers
	switch callback.Unique {
	case "skip":
		return h.handleSkip(c)
	case "quiz_again":
		return h.handleQuizAgain(c)
	case "logout":
		return h.handleLogout(c)
	case "back_sync":
		return h.handleBackToSync(c)
	case "restart":
		return h.handleStart(c)
	}

	// Dynamic buttons carry their payload in the unique
	switch {
	case strings.HasPrefix(data, "rate_"):
		index, ok := parseRatingIndex(data)
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "Invalid rating"})
		}
		return h.submitRating(c, index)
	case strings.HasPrefix(data, "partner_"):
		return h.pickPartner(c, strings.TrimPrefix(data, "partner_"))
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// submitRating forwards a star tap (or a skip) for the movie currently
// on the quiz screen. Taps landing after the quiz moved on are only
// acknowledged.
func (h *Handler) submitRating(c tele.Context, ratingIndex int) error {
	sess := h.sessionFor(c)

	screen := sess.Screen()
	if screen.Kind != domain.ScreenQuiz {
		return c.Respond(&tele.CallbackResponse{Text: "This quiz has moved on"})
	}

	sess.SubmitRating(screen.Movie, ratingIndex)
	return c.Respond()
}

// pickPartner requests shared recommendations for the chosen partner
func (h *Handler) pickPartner(c tele.Context, partnerName string) error {
	if partnerName == "" {
		return c.Respond(&tele.CallbackResponse{Text: "Pick a partner first"})
	}

	h.sessionFor(c).RequestRecommendations(partnerName)
	return c.Respond(&tele.CallbackResponse{Text: "Matching your tastes..."})
}
