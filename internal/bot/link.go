package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"reelrelay/internal/domain"
)

// requestDirPrefix names the per-request download directories.
const requestDirPrefix = "req-"

// linkHandler is the default handler: it receives every update no command
// matched. Text without a recognized link is ignored silently.
func (h *Handler) linkHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	link, ok := domain.FindLink(msg.Text, h.cfg.LinkPattern)
	if !ok {
		return
	}

	log := h.log.WithFields(logrus.Fields{
		"chat_id": msg.Chat.ID,
		"url":     link,
	})
	if msg.From != nil {
		log = log.WithField("user_id", msg.From.ID)
		if err := h.repo.Register(ctx, msg.From.ID); err != nil {
			log.WithError(err).Error("Failed to register user")
		}
	}
	log.Info("Received link")
	t := h.textsFor(msg.From)

	placeholder, err := h.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   t.processing,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send processing message")
		return
	}

	if err := h.deliver(ctx, log, msg.Chat.ID, placeholder.ID, link, t); err != nil {
		log.WithError(err).Error("Error processing link")
		h.editPlaceholder(ctx, log, msg.Chat.ID, placeholder.ID, t.extractFailed)
		return
	}

	_, err = h.sender.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
		ChatID:    msg.Chat.ID,
		MessageID: placeholder.ID,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to delete processing message")
	}
}

// deliver downloads link into a per-request directory and sends the result to
// chatID. The directory and everything in it is removed before returning.
func (h *Handler) deliver(ctx context.Context, log logrus.FieldLogger, chatID int64, placeholderID int, link string, t texts) error {
	dir, err := os.MkdirTemp(h.cfg.DownloadsDir, requestDirPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Error("Failed to clean up download dir")
			return
		}
		log.WithField("dir", dir).Debug("Cleaned up download dir")
	}()

	if err := h.setStage(ctx, chatID, placeholderID, t.downloading); err != nil {
		return err
	}
	path, err := h.extractor.Extract(ctx, link, dir)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if err := h.setStage(ctx, chatID, placeholderID, t.uploading); err != nil {
		return err
	}

	return h.sendMedia(ctx, log, chatID, path)
}

// sendMedia uploads path using the send method matching its extension.
func (h *Handler) sendMedia(ctx context.Context, log logrus.FieldLogger, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	kind := domain.ClassifyFile(path)
	upload := &models.InputFileUpload{Filename: filepath.Base(path), Data: f}
	log.WithField("kind", kind.String()).Info("Uploading media")

	switch kind {
	case domain.MediaVideo:
		_, err = h.sender.SendVideo(ctx, &tgbot.SendVideoParams{
			ChatID:            chatID,
			Video:             upload,
			Caption:           h.cfg.Caption,
			SupportsStreaming: true,
		})
	case domain.MediaImage:
		_, err = h.sender.SendPhoto(ctx, &tgbot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   upload,
			Caption: h.cfg.Caption,
		})
	default:
		_, err = h.sender.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID:   chatID,
			Document: upload,
			Caption:  h.cfg.Caption,
		})
	}
	if err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}

// setStage moves the placeholder to the next progress text.
func (h *Handler) setStage(ctx context.Context, chatID int64, placeholderID int, text string) error {
	_, err := h.sender.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: placeholderID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("edit placeholder: %w", err)
	}
	return nil
}

func (h *Handler) editPlaceholder(ctx context.Context, log logrus.FieldLogger, chatID int64, messageID int, text string) {
	_, err := h.sender.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		log.WithError(err).Error("Failed to edit processing message")
	}
}

// CleanDownloads removes request directories left in dir by a process that
// died mid-download. It returns how many were removed. Other entries are kept.
func CleanDownloads(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read downloads dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), requestDirPrefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove stale %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
