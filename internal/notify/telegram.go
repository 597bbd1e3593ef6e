package notify

import (
	"encoding/json"
	"fmt"

	"lockwise/internal/config"
	"lockwise/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking notifications to the manager chat.
// A nil notifier is safe to use; every method becomes a no-op.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewTelegramNotifier returns nil without error when no bot token is
// configured, so callers can wire it unconditionally.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ManagerChatID == 0 {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	chatIDs := append([]int64{cfg.ManagerChatID}, cfg.ExtraChatIDs...)
	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(chatIDs)).Msg("telegram notifier ready")

	return &TelegramNotifier{bot: bot, chatIDs: chatIDs, logger: logger}, nil
}

// SubscribeToBus registers handlers for the booking lifecycle events the
// managers care about.
func (n *TelegramNotifier) SubscribeToBus(bus *events.EventBus) {
	if n == nil || bus == nil {
		return
	}

	bus.Subscribe(events.EventBookingCreated, n.handleEvent("New booking"))
	bus.Subscribe(events.EventBookingCancelled, n.handleEvent("Booking cancelled"))
	bus.Subscribe(events.EventBookingNoShow, n.handleEvent("Customer no-show"))
}

func (n *TelegramNotifier) handleEvent(title string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode booking event: %w", err)
		}

		text := fmt.Sprintf("%s\n#%s %s\n%s %s\nCustomer: %s",
			title,
			payload.Reference,
			payload.ServiceName,
			payload.Date.Format("2006-01-02"),
			payload.Time,
			payload.Customer,
		)
		if payload.Technician != "" {
			text += "\nTechnician: " + payload.Technician
		}

		n.send(text)
		return nil
	}
}

func (n *TelegramNotifier) send(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		}
	}
}
