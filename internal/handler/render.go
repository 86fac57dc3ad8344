package handler

import (
	"fmt"
	"strings"

	"filmwise/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// renderScreen pushes the active screen to the chat. The switch is
// exhaustive over screen kinds; the presentation never inspects session
// state beyond what the screen carries.
func (h *Handler) renderScreen(chatID int64, screen domain.Screen) {
	to := tele.ChatID(chatID)

	var err error
	switch screen.Kind {
	case domain.ScreenIntro:
		_, err = h.bot.Send(to, "🎬 CINEMATCH")
	case domain.ScreenLoading:
		_, err = h.bot.Send(to, "⏳ Loading movies...")
	case domain.ScreenLogin:
		_, err = h.bot.Send(to, "👋 What's your name?")
	case domain.ScreenQuiz:
		err = h.sendQuiz(to, screen.Movie, screen.RatingsLeft)
	case domain.ScreenSync:
		err = h.sendSync(to, chatID)
	case domain.ScreenRecommendation:
		err = h.sendRecommendations(to, screen.Movies)
	case domain.ScreenError:
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(btnRestart))
		_, err = h.bot.Send(to, "⚠️ "+screen.Message, markup)
	}

	if err != nil {
		h.logger.Error("Failed to render screen",
			zap.Int64("chat_id", chatID),
			zap.String("screen", string(screen.Kind)),
			zap.Error(err),
		)
	}
}

// sendQuiz shows one movie with the five star buttons and the skip button
func (h *Handler) sendQuiz(to tele.Recipient, movie domain.Movie, ratingsLeft int) error {
	caption := fmt.Sprintf("🎞 %s (%s)\n%s\n\n⭐ Rate it — %d to go", movie.Title, movie.Year, movie.Genre, ratingsLeft)

	markup := &tele.ReplyMarkup{}
	stars := tele.Row{}
	for i := 0; i < 5; i++ {
		stars = append(stars, markup.Data(strings.Repeat("★", i+1), fmt.Sprintf("rate_%d", i)))
	}
	markup.Inline(stars, markup.Row(btnSkip))

	if movie.Poster != "" && movie.Poster != "N/A" {
		photo := &tele.Photo{File: tele.FromURL(movie.Poster), Caption: caption}
		if _, err := h.bot.Send(to, photo, markup); err == nil {
			return nil
		}
		// Broken poster URLs fall back to plain text
	}
	_, err := h.bot.Send(to, caption, markup)
	return err
}

// sendSync greets the user and offers the partner roster, a fresh quiz
// and logout
func (h *Handler) sendSync(to tele.Recipient, chatID int64) error {
	h.sessionsMux.RLock()
	sess := h.sessions[chatID]
	h.sessionsMux.RUnlock()
	if sess == nil {
		return nil
	}

	greeting := "Hey!"
	if user := sess.User(); user != nil {
		greeting = fmt.Sprintf("Hey %s!", user.Name)
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for _, partner := range sess.Roster() {
		btn := markup.Data("🎬 "+partner.Name, "partner_"+partner.Name)
		rows = append(rows, markup.Row(btn))
	}
	rows = append(rows, markup.Row(btnQuizAgain), markup.Row(btnLogout))
	markup.Inline(rows...)

	text := greeting + "\n\nChoose your movie partner:"
	if len(sess.Roster()) == 0 {
		text = greeting + "\n\nNo partners yet — invite a friend, or take the quiz again:"
	}

	_, err := h.bot.Send(to, text, markup)
	return err
}

// sendRecommendations lists the shared watch list with rationales
func (h *Handler) sendRecommendations(to tele.Recipient, movies []domain.Movie) error {
	var b strings.Builder
	b.WriteString("🍿 What you two should watch:\n")
	for i, movie := range movies {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, movie.Title, movie.Year)
		for _, rationale := range movie.Rationales {
			fmt.Fprintf(&b, "   · %s\n", rationale)
		}
	}
	if len(movies) == 0 {
		b.WriteString("\nNothing matched this time.\n")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnBackToSync))

	_, err := h.bot.Send(to, b.String(), markup)
	return err
}
