package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer        = 32
	maxIDsPerMessage  = 10
	messageLanguage   = localization.DefaultLanguage
	keyCriticalNotice = "notify_critical_complaint"
	keyEscalated      = "notify_escalated"
)

// Sender is the part of the bot API used here; *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts to a single admin chat. Messages are queued and sent by Run,
// so a slow or unreachable Telegram never delays a request.
type Telegram struct {
	api       Sender
	chatID    int64
	localizer *localization.Localizer
	logger    *logrus.Logger
	send      chan string
	closeOnce sync.Once
}

// Dial authorizes the bot token.
func Dial(token string, logger *logrus.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	bot.Debug = false
	if logger != nil {
		logger.WithField("bot", bot.Self.UserName).Info("Telegram bot authorized")
	}
	return bot, nil
}

func NewTelegram(api Sender, chatID int64, localizer *localization.Localizer, logger *logrus.Logger) *Telegram {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Telegram{
		api:       api,
		chatID:    chatID,
		localizer: localizer,
		logger:    logger,
		send:      make(chan string, sendBuffer),
	}
}

// Run is the write pump. It returns once Close has been called and the queue is drained.
func (t *Telegram) Run() {
	defer t.logger.Info("Telegram notifier stopped")

	for text := range t.send {
		msg := tgbotapi.NewMessage(t.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := t.api.Send(msg); err != nil {
			t.logger.WithError(err).WithField("chat_id", t.chatID).Error("failed to send Telegram message")
		}
	}
}

func (t *Telegram) Close() {
	t.closeOnce.Do(func() { close(t.send) })
}

func (t *Telegram) enqueue(text string) {
	select {
	case t.send <- text:
	default:
		t.logger.WithField("chat_id", t.chatID).Warn("Telegram queue full, dropping notification")
	}
}

func (t *Telegram) NotifyCritical(_ context.Context, c *models.Complaint) {
	t.enqueue(fmt.Sprintf(t.template(keyCriticalNotice),
		html.EscapeString(c.Title),
		html.EscapeString(c.Department),
		html.EscapeString(string(c.Category)),
		c.ID,
	))
}

func (t *Telegram) NotifyEscalation(_ context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	t.enqueue(fmt.Sprintf(t.template(keyEscalated), len(ids), formatIDs(ids)))
}

func (t *Telegram) template(key string) string {
	return t.localizer.GetString(messageLanguage, key)
}

func formatIDs(ids []string) string {
	shown := ids
	if len(shown) > maxIDsPerMessage {
		shown = shown[:maxIDsPerMessage]
	}
	var b strings.Builder
	for _, id := range shown {
		b.WriteString("• <code>")
		b.WriteString(id)
		b.WriteString("</code>\n")
	}
	if rest := len(ids) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "… and %d more\n", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}
