package bot

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"reelrelay/internal/config"
	"reelrelay/internal/extractor"
	"reelrelay/internal/storage"
)

// Sender is the part of *tgbot.Bot the handlers talk to.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *tgbot.DeleteMessageParams) (bool, error)
	SendVideo(ctx context.Context, params *tgbot.SendVideoParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *tgbot.SendPhotoParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *tgbot.SendDocumentParams) (*models.Message, error)
}

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot       *tgbot.Bot
	sender    Sender
	cfg       config.Config
	repo      storage.UserRepository
	extractor extractor.Extractor
	pacer     Pacer
	log       logrus.FieldLogger
}

// NewHandler creates the Telegram bot and registers every handler on it.
func NewHandler(cfg config.Config, repo storage.UserRepository, ext extractor.Extractor, logger logrus.FieldLogger) (*Handler, error) {
	h := newHandler(cfg, nil, repo, ext, NewDelayPacer(cfg.BroadcastDelay), logger)

	b, err := h.newBot(cfg.TelegramBotToken)
	if err != nil {
		h.log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b
	h.sender = b

	h.log.Info("Telegram bot handler initialized")
	return h, nil
}

func newHandler(cfg config.Config, sender Sender, repo storage.UserRepository, ext extractor.Extractor, pacer Pacer, logger logrus.FieldLogger) *Handler {
	return &Handler{
		sender:    sender,
		cfg:       cfg,
		repo:      repo,
		extractor: ext,
		pacer:     pacer,
		log:       logger.WithField("component", "bot_handler"),
	}
}

// newBot creates the Telegram client with every handler registered on it.
// Handlers run synchronously on the WORKERS goroutines, so Bot.Start returns
// only after the updates being handled are finished.
func (h *Handler) newBot(token string, extra ...tgbot.Option) (*tgbot.Bot, error) {
	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(h.linkHandler),
		tgbot.WithWorkers(h.cfg.Workers),
		tgbot.WithNotAsyncHandlers(),
		tgbot.WithErrorsHandler(func(err error) {
			h.log.WithError(err).Warn("Telegram polling error")
		}),
	}
	b, err := tgbot.New(token, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	h.registerHandlers(b)
	return b, nil
}

// registerHandlers sets up the command handlers. Everything else falls
// through to the default (link) handler.
func (h *Handler) registerHandlers(b *tgbot.Bot) {
	b.RegisterHandlerMatchFunc(commandMatch("/start"), h.startHandler)
	b.RegisterHandlerMatchFunc(commandMatch("/help"), h.helpHandler)
	b.RegisterHandlerMatchFunc(commandMatch("/stats"), h.statsHandler, h.ownerOnly)
	b.RegisterHandlerMatchFunc(commandMatch("/broadcast"), h.broadcastHandler, h.ownerOnly)
	h.log.Info("Registered /start, /help, /stats and /broadcast handlers")
}

// commandMatch matches messages whose first token is command, with or
// without an "@botname" suffix and arguments ("/start ref123").
func commandMatch(command string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		cmd, _ := splitCommand(update.Message.Text)
		return cmd == command
	}
}

// Start publishes the command menu and polls for updates from Telegram.
// This function blocks until the context is cancelled and the updates in
// progress are handled.
func (h *Handler) Start(ctx context.Context) {
	_, err := h.bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "start", Description: "Start the bot"},
			{Command: "help", Description: "How to use the bot"},
		},
	})
	if err != nil {
		h.log.WithError(err).Warn("Failed to publish command menu")
	}

	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

// reply sends text to chatID; failures are logged, not returned.
func (h *Handler) reply(ctx context.Context, log logrus.FieldLogger, chatID int64, text string, parseMode models.ParseMode) {
	_, err := h.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}
