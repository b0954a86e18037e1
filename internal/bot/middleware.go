package bot

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// ownerOnly lets an update through only when the sender is the configured
// owner. Everyone else gets the denial text.
func (h *Handler) ownerOnly(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || msg.From == nil {
			return
		}
		if msg.From.ID != h.cfg.OwnerID {
			log := h.log.WithFields(logrus.Fields{
				"user_id": msg.From.ID,
				"text":    msg.Text,
			})
			log.Warn("Rejected owner-only command")
			h.reply(ctx, log, msg.Chat.ID, h.textsFor(msg.From).denied, "")
			return
		}
		next(ctx, b, update)
	}
}
