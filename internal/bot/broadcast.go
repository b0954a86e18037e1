package bot

import (
	"context"
	"errors"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// Pacer spaces out broadcast sends to stay under Telegram's rate limits.
type Pacer interface {
	Pause(ctx context.Context)
}

type delayPacer struct {
	delay time.Duration
}

// NewDelayPacer returns a Pacer that waits a fixed delay. Zero disables it.
func NewDelayPacer(delay time.Duration) Pacer {
	return delayPacer{delay: delay}
}

func (p delayPacer) Pause(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	tmr := time.NewTimer(p.delay)
	defer tmr.Stop()
	select {
	case <-ctx.Done():
	case <-tmr.C:
	}
}

// BroadcastResult tallies one broadcast run. Blocked is a subset of Failed.
type BroadcastResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Blocked   int
}

// broadcast sends text to each user in order, one at a time, pausing after
// every attempt. A failed recipient never stops the loop and is not retried.
func (h *Handler) broadcast(ctx context.Context, userIDs []int64, text string) BroadcastResult {
	var res BroadcastResult
	start := time.Now()
	h.log.WithField("total", len(userIDs)).Info("Broadcast started")

	for _, id := range userIDs {
		res.Attempted++
		_, err := h.sender.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    id,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		switch {
		case err == nil:
			res.Succeeded++
		case errors.Is(err, tgbot.ErrorForbidden):
			res.Failed++
			res.Blocked++
			h.log.WithField("user_id", id).Warn("Broadcast recipient blocked the bot")
		default:
			res.Failed++
			h.log.WithError(err).WithField("user_id", id).Error("Broadcast send failed")
		}
		h.pacer.Pause(ctx)
	}

	h.log.WithFields(logrus.Fields{
		"total":     res.Attempted,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
		"blocked":   res.Blocked,
		"dur":       time.Since(start).String(),
	}).Info("Broadcast finished")
	return res
}
