package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// startHandler handles the /start command: registers the user and greets them.
func (h *Handler) startHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	log := h.log.WithFields(logrus.Fields{
		"user_id": msg.From.ID,
		"command": "/start",
	})
	log.Info("Received /start command")

	if err := h.repo.Register(ctx, msg.From.ID); err != nil {
		log.WithError(err).Error("Failed to register user")
	}

	t := h.textsFor(msg.From)
	h.reply(ctx, log, msg.Chat.ID, fmt.Sprintf(t.welcomeFmt, mentionHTML(msg.From)), models.ParseModeHTML)
}

// helpHandler replies with static usage text.
func (h *Handler) helpHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	log := h.log.WithFields(logrus.Fields{
		"chat_id": msg.Chat.ID,
		"command": "/help",
	})
	h.reply(ctx, log, msg.Chat.ID, h.textsFor(msg.From).help, "")
}

// statsHandler reports the subscriber count. Wrapped by ownerOnly.
func (h *Handler) statsHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	log := h.log.WithFields(logrus.Fields{
		"user_id": msg.From.ID,
		"command": "/stats",
	})
	t := h.textsFor(msg.From)

	n, err := h.repo.Count(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count users")
		h.reply(ctx, log, msg.Chat.ID, t.storageError, "")
		return
	}
	h.reply(ctx, log, msg.Chat.ID, fmt.Sprintf(t.statsFmt, n), "")
}

// broadcastHandler sends the command argument to every subscriber.
// Wrapped by ownerOnly.
func (h *Handler) broadcastHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	_, text := splitCommand(msg.Text)
	log := h.log.WithFields(logrus.Fields{
		"user_id": msg.From.ID,
		"command": "/broadcast",
	})
	t := h.textsFor(msg.From)

	if text == "" {
		h.reply(ctx, log, msg.Chat.ID, t.broadcastUsage, "")
		return
	}

	ids, err := h.repo.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list users for broadcast")
		h.reply(ctx, log, msg.Chat.ID, t.storageError, "")
		return
	}

	h.reply(ctx, log, msg.Chat.ID, fmt.Sprintf(t.broadcastStart, len(ids)), "")
	res := h.broadcast(ctx, ids, text)
	h.reply(ctx, log, msg.Chat.ID, fmt.Sprintf(t.broadcastDone, res.Succeeded, res.Failed, res.Blocked), "")
}

// splitCommand separates "/cmd@bot rest of text" into "/cmd" and the trimmed
// rest. Line breaks inside the rest are kept.
func splitCommand(text string) (command, args string) {
	text = strings.TrimSpace(text)
	command = text
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		command, args = text[:i], strings.TrimSpace(text[i:])
	}
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return command, args
}

// mentionHTML links the user's display name to their profile.
func mentionHTML(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}
