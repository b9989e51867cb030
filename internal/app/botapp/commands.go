package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	"github.com/onetwonaz-bit/cointap/internal/domain/rules"
	tginfra "github.com/onetwonaz-bit/cointap/internal/infra/telegram"
	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
)

const (
	userListLimit = 20

	adminHelpText = `🛠 *Команди адміністратора*

/stats — загальна статистика
/users — список користувачів
/withdrawals — заявки на виведення
/approve\_<id> — підтвердити заявку
/reject\_<id> — відхилити заявку
/ban <telegramId> [причина] — заблокувати
/unban <telegramId> — розблокувати
/addtask — формат нового завдання
/newtask — створити завдання`

	addTaskHelpText = `📝 *Нове завдання*

Надішліть команду у форматі:
/newtask тип|назва|опис|посилання|канал

Типи: subscribe, watch, visit.
Канал (@channel) потрібен лише для subscribe.
Нагорода за замовчуванням: 20 монет.`
)

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	command := strings.ToLower(strings.TrimSpace(update.Command))

	if command == "start" {
		return a.handleStart(ctx, update)
	}

	if !a.isAdmin(update.UserID) {
		return nil
	}

	switch command {
	case "admin":
		return a.bot.SendMarkdown(ctx, update.ChatID, adminHelpText)
	case "addtask":
		return a.bot.SendMarkdown(ctx, update.ChatID, addTaskHelpText)
	case "stats":
		return a.handleStats(ctx, update.ChatID)
	case "users":
		return a.handleUsers(ctx, update.ChatID)
	case "withdrawals":
		return a.handleWithdrawals(ctx, update.ChatID)
	case "newtask":
		return a.handleNewTask(ctx, update.ChatID, update.Args)
	case "ban":
		return a.handleBan(ctx, update.ChatID, update.Args)
	case "unban":
		return a.handleUnban(ctx, update.ChatID, update.Args)
	}

	if id, ok := decisionID(command, "approve_"); ok {
		return a.handleDecision(ctx, update.ChatID, id, true)
	}
	if id, ok := decisionID(command, "reject_"); ok {
		return a.handleDecision(ctx, update.ChatID, id, false)
	}

	return nil
}

func (a *App) handleStart(ctx context.Context, update tginfra.CommandUpdate) error {
	user, err := a.userService.Init(ctx, userssvc.InitInput{
		TelegramID: update.UserID,
		Username:   update.Username,
		FirstName:  update.FirstName,
		LastName:   update.LastName,
	})
	if err != nil {
		a.logger.Warn("start command failed", zap.Error(err), zap.Int64("telegram_id", update.UserID))
		return a.bot.SendText(ctx, update.ChatID, "Сталася помилка. Спробуйте пізніше.")
	}

	if user.IsBanned {
		text := "🚫 Ваш акаунт заблоковано."
		if user.BanReason != "" {
			text += "\nПричина: " + user.BanReason
		}
		return a.bot.SendText(ctx, update.ChatID, text)
	}

	greeting := fmt.Sprintf(
		"👋 Вітаємо, %s!\n\nВиконуйте завдання та заробляйте монети.\n💰 100 монет = 1$\n💸 Мінімальна сума виведення: %s$\n\nВаш баланс: %s$",
		user.DisplayName(), rules.Dollars(rules.MinWithdrawalUnits), rules.Dollars(user.Balance),
	)

	frontend := strings.TrimSpace(a.cfg.Bot.FrontendURL)
	if strings.HasPrefix(frontend, "https://") {
		return a.bot.SendWebAppButton(ctx, update.ChatID, greeting, "🚀 Відкрити додаток", frontend)
	}
	return a.bot.SendText(ctx, update.ChatID, greeting)
}

func (a *App) handleStats(ctx context.Context, chatID int64) error {
	userStats, err := a.userService.Stats(ctx)
	if err != nil {
		return a.replyError(ctx, chatID, "stats", err)
	}
	activeTasks, err := a.taskService.CountActive(ctx)
	if err != nil {
		return a.replyError(ctx, chatID, "stats", err)
	}
	withdrawalStats, err := a.walletService.PendingStats(ctx)
	if err != nil {
		return a.replyError(ctx, chatID, "stats", err)
	}

	text := fmt.Sprintf(
		"📊 *Статистика*\n\n👥 Користувачів: %d (заблоковано: %d)\n💰 Сумарний баланс: %s$\n📋 Активних завдань: %d\n💸 Заявок у черзі: %d на %s$",
		userStats.TotalUsers,
		userStats.BannedUsers,
		rules.Dollars(userStats.TotalBalance),
		activeTasks,
		withdrawalStats.PendingCount,
		rules.Dollars(withdrawalStats.PendingAmount),
	)
	return a.bot.SendMarkdown(ctx, chatID, text)
}

func (a *App) handleUsers(ctx context.Context, chatID int64) error {
	users, err := a.userService.ListAll(ctx)
	if err != nil {
		return a.replyError(ctx, chatID, "users", err)
	}
	if len(users) == 0 {
		return a.bot.SendText(ctx, chatID, "Користувачів ще немає.")
	}

	return a.bot.SendText(ctx, chatID, formatUserList(users, userListLimit))
}

func (a *App) handleWithdrawals(ctx context.Context, chatID int64) error {
	pending, err := a.walletService.PendingWithdrawals(ctx)
	if err != nil {
		return a.replyError(ctx, chatID, "withdrawals", err)
	}
	if len(pending) == 0 {
		return a.bot.SendText(ctx, chatID, "Немає заявок у черзі.")
	}

	return a.bot.SendText(ctx, chatID, formatPendingWithdrawals(pending))
}

func (a *App) handleNewTask(ctx context.Context, chatID int64, args string) error {
	input, err := parseNewTaskArgs(args)
	if err != nil {
		return a.bot.SendMarkdown(ctx, chatID, addTaskHelpText)
	}

	task, err := a.taskService.Create(ctx, input)
	if err != nil {
		if errors.Is(err, taskssvc.ErrValidation) {
			return a.bot.SendMarkdown(ctx, chatID, addTaskHelpText)
		}
		return a.replyError(ctx, chatID, "newtask", err)
	}

	return a.bot.SendText(ctx, chatID, fmt.Sprintf(
		"✅ Завдання #%d створено: %s (+%d монет)", task.ID, task.Title, task.Reward,
	))
}

func (a *App) handleBan(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return a.bot.SendText(ctx, chatID, "Формат: /ban <telegramId> [причина]")
	}

	telegramID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || telegramID <= 0 {
		return a.bot.SendText(ctx, chatID, "Формат: /ban <telegramId> [причина]")
	}
	reason := strings.Join(fields[1:], " ")

	user, err := a.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, userssvc.ErrUserNotFound) {
			return a.bot.SendText(ctx, chatID, "Користувача не знайдено.")
		}
		return a.replyError(ctx, chatID, "ban", err)
	}

	if err := a.userService.Ban(ctx, user.ID, reason); err != nil {
		return a.replyError(ctx, chatID, "ban", err)
	}

	return a.bot.SendText(ctx, chatID, fmt.Sprintf("🚫 Користувача %s заблоковано.", user.DisplayName()))
}

func (a *App) handleUnban(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return a.bot.SendText(ctx, chatID, "Формат: /unban <telegramId>")
	}

	telegramID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || telegramID <= 0 {
		return a.bot.SendText(ctx, chatID, "Формат: /unban <telegramId>")
	}

	user, err := a.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, userssvc.ErrUserNotFound) {
			return a.bot.SendText(ctx, chatID, "Користувача не знайдено.")
		}
		return a.replyError(ctx, chatID, "unban", err)
	}

	if err := a.userService.Unban(ctx, user.ID); err != nil {
		return a.replyError(ctx, chatID, "unban", err)
	}

	return a.bot.SendText(ctx, chatID, fmt.Sprintf("✅ Користувача %s розблоковано.", user.DisplayName()))
}

func (a *App) handleDecision(ctx context.Context, chatID, withdrawalID int64, approve bool) error {
	var (
		decided model.Withdrawal
		err     error
	)
	if approve {
		decided, err = a.walletService.Approve(ctx, withdrawalID)
	} else {
		decided, err = a.walletService.Reject(ctx, withdrawalID)
	}
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrWithdrawalNotFound):
			return a.bot.SendText(ctx, chatID, "Заявку не знайдено.")
		case errors.Is(err, walletsvc.ErrWithdrawalNotPending):
			return a.bot.SendText(ctx, chatID, "Заявку вже оброблено.")
		}
		return a.replyError(ctx, chatID, "decision", err)
	}

	if approve {
		return a.bot.SendText(ctx, chatID, fmt.Sprintf("✅ Заявку #%d на %s$ підтверджено.", decided.ID, rules.Dollars(decided.Amount)))
	}
	return a.bot.SendText(ctx, chatID, fmt.Sprintf("❌ Заявку #%d на %s$ відхилено.", decided.ID, rules.Dollars(decided.Amount)))
}

func (a *App) replyError(ctx context.Context, chatID int64, op string, err error) error {
	a.logger.Warn("admin command failed", zap.String("op", op), zap.Error(err))
	return a.bot.SendText(ctx, chatID, "Сталася помилка. Спробуйте пізніше.")
}

// decisionID extracts the id from prefix-style commands such as
// "approve_17".
func decisionID(command, prefix string) (int64, bool) {
	if !strings.HasPrefix(command, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(command, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseNewTaskArgs expects "тип|назва|опис|посилання|канал"; the channel
// field is optional.
func parseNewTaskArgs(args string) (taskssvc.CreateInput, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 4 {
		return taskssvc.CreateInput{}, fmt.Errorf("expected at least 4 fields, got %d", len(parts))
	}

	input := taskssvc.CreateInput{
		Type:        strings.TrimSpace(parts[0]),
		Title:       strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
		Link:        strings.TrimSpace(parts[3]),
	}
	if len(parts) > 4 {
		input.ChannelID = strings.TrimSpace(parts[4])
	}
	if input.Type == "" || input.Title == "" {
		return taskssvc.CreateInput{}, fmt.Errorf("type and title are required")
	}

	return input, nil
}

func formatUserList(users []model.User, limit int) string {
	lines := []string{fmt.Sprintf("👥 Користувачі (%d):", len(users)), ""}
	for i, u := range users {
		if i == limit {
			lines = append(lines, fmt.Sprintf("… і ще %d", len(users)-limit))
			break
		}
		mark := ""
		if u.IsBanned {
			mark = " 🚫"
		}
		handle := ""
		if u.Username != "" {
			handle = " (@" + u.Username + ")"
		}
		lines = append(lines, fmt.Sprintf("• %s%s — %s$%s", u.DisplayName(), handle, rules.Dollars(u.Balance), mark))
	}
	return strings.Join(lines, "\n")
}

func formatPendingWithdrawals(pending []model.PendingWithdrawal) string {
	lines := []string{fmt.Sprintf("💸 Заявки на виведення (%d):", len(pending)), ""}
	for _, p := range pending {
		name := p.FirstName
		if name == "" {
			name = p.Username
		}
		if name == "" {
			name = "Без імені"
		}
		lines = append(lines,
			fmt.Sprintf("#%d — %s (%d) на %s$", p.ID, name, p.TelegramID, rules.Dollars(p.Amount)),
			fmt.Sprintf("  /approve_%d  /reject_%d", p.ID, p.ID),
		)
	}
	return strings.Join(lines, "\n")
}
