package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	// api sends messages and looks up chat members with a short-timeout
	// client; poll runs GetUpdates long polling with a generous one.
	api  *tgbotapi.BotAPI
	poll *tgbotapi.BotAPI
}

type CommandUpdate struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Command   string
	Args      string
}

type TextUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

type Handlers struct {
	OnCommand func(context.Context, CommandUpdate) error
	OnText    func(context.Context, TextUpdate) error
}

func NewBot(token string, requestTimeout time.Duration) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	pollClient, callClient := httpClients(requestTimeout)
	poll, err := tgbotapi.NewBotAPIWithClient(strings.TrimSpace(token), tgbotapi.APIEndpoint, pollClient)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	api := *poll
	api.Client = callClient

	return &Bot{api: &api, poll: poll}, nil
}

// httpClients builds the two clients the bot runs on. GetUpdates holds
// its connection open for the 30s long-poll window, so the poll client
// needs a timeout beyond that; every other call must fail fast so a
// hung Telegram API cannot stall request handling.
func httpClients(requestTimeout time.Duration) (pollClient, callClient *http.Client) {
	pollClient = &http.Client{Timeout: requestTimeout + 35*time.Second}
	callClient = &http.Client{Timeout: requestTimeout}
	return pollClient, callClient
}

func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.poll == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.poll.GetUpdatesChan(updateCfg)
	defer b.poll.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			if update.Message.IsCommand() && handlers.OnCommand != nil {
				err := handlers.OnCommand(ctx, CommandUpdate{
					ChatID:    update.Message.Chat.ID,
					UserID:    update.Message.From.ID,
					Username:  update.Message.From.UserName,
					FirstName: update.Message.From.FirstName,
					LastName:  update.Message.From.LastName,
					Command:   update.Message.Command(),
					Args:      update.Message.CommandArguments(),
				})
				if err != nil {
					return err
				}
				continue
			}

			text := strings.TrimSpace(update.Message.Text)
			if text != "" && handlers.OnText != nil {
				err := handlers.OnText(ctx, TextUpdate{
					ChatID:   update.Message.Chat.ID,
					UserID:   update.Message.From.ID,
					Username: update.Message.From.UserName,
					Text:     text,
				})
				if err != nil {
					return err
				}
			}
		}
	}
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

func (b *Bot) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

// SendWebAppButton sends a message with a single inline button opening
// the Mini App.
func (b *Bot) SendWebAppButton(ctx context.Context, chatID int64, text, buttonLabel, webAppURL string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if strings.TrimSpace(webAppURL) == "" {
		return b.SendText(ctx, chatID, text)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{
					Text:   buttonLabel,
					WebApp: &tgbotapi.WebAppInfo{URL: webAppURL},
				},
			},
		},
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send web app button: %w", err)
	}

	return nil
}

// ChatMemberStatus reports the membership status of a telegram user in
// a channel, e.g. "member", "administrator", "creator", "left".
func (b *Bot) ChatMemberStatus(ctx context.Context, channelID string, telegramID int64) (string, error) {
	if b == nil || b.api == nil {
		return "", fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(channelID) == "" {
		return "", fmt.Errorf("channel id is required")
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: strings.TrimSpace(channelID),
			UserID:             telegramID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("get chat member: %w", err)
	}

	return member.Status, nil
}

// AdminNotifier delivers operational messages to the configured admin
// account.
type AdminNotifier struct {
	bot     *Bot
	adminID int64
}

func NewAdminNotifier(bot *Bot, adminID int64) *AdminNotifier {
	return &AdminNotifier{bot: bot, adminID: adminID}
}

func (n *AdminNotifier) NotifyAdmin(ctx context.Context, text string) error {
	if n == nil || n.bot == nil || n.adminID == 0 {
		return fmt.Errorf("admin notifier is not configured")
	}
	return n.bot.SendMarkdown(ctx, n.adminID, text)
}
