package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// UpdateLogger logs every handled update with the sender and payload
func UpdateLogger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.Duration("took", time.Since(start)),
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields, zap.Int64("user_id", sender.ID))
			}
			if callback := c.Callback(); callback != nil {
				fields = append(fields, zap.String("callback", callback.Unique))
			} else if text := c.Text(); text != "" {
				fields = append(fields, zap.String("text", text))
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Error("Update failed", fields...)
			} else {
				logger.Info("Update handled", fields...)
			}
			return err
		}
	}
}
