package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/models"
)

// Notifier receives predictor lifecycle events. Implementations must never
// block the caller on failure; delivery is best-effort.
type Notifier interface {
	StrategySwitched(strategy string, lossStreak int, prediction models.Category)
	EpochReset(handle models.ArchiveHandle, wins, losses int)
}

// Noop is the notifier used when no Telegram credentials are configured.
type Noop struct{}

func (Noop) StrategySwitched(string, int, models.Category) {}

func (Noop) EpochReset(models.ArchiveHandle, int, int) {}

// Telegram pushes predictor events to a single chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authorizes the bot once at startup.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger := log.With().Str("component", "telegram_notifier").Logger()
	logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

// StrategySwitched announces a loss-triggered reversal.
func (t *Telegram) StrategySwitched(strategy string, lossStreak int, prediction models.Category) {
	text := fmt.Sprintf(
		"⚠️ Strategy switched after %d losses.\nNow on: %s\nNext prediction: %s",
		lossStreak, strategy, prediction,
	)
	t.send(text)
}

// EpochReset announces the daily archive with the closing tally.
func (t *Telegram) EpochReset(handle models.ArchiveHandle, wins, losses int) {
	text := fmt.Sprintf(
		"🗄 Epoch archived (%d records).\nFinal tally: %d wins / %d losses.\nCounters reset, new epoch started.",
		handle.RecordCount, wins, losses,
	)
	t.send(text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Msg("Failed to send notification")
	}
}
