package botapp

import (
	"strings"
	"testing"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

func TestParseNewTaskArgs(t *testing.T) {
	input, err := parseNewTaskArgs("subscribe|Підписка на канал|Опис|https://t.me/news|@news")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if input.Type != "subscribe" {
		t.Fatalf("expected type subscribe, got %q", input.Type)
	}
	if input.Title != "Підписка на канал" {
		t.Fatalf("unexpected title %q", input.Title)
	}
	if input.ChannelID != "@news" {
		t.Fatalf("expected channel @news, got %q", input.ChannelID)
	}
}

func TestParseNewTaskArgsChannelOptional(t *testing.T) {
	input, err := parseNewTaskArgs("visit | Відвідати сайт | Опис | https://example.com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if input.ChannelID != "" {
		t.Fatalf("expected empty channel, got %q", input.ChannelID)
	}
	if input.Link != "https://example.com" {
		t.Fatalf("unexpected link %q", input.Link)
	}
}

func TestParseNewTaskArgsTooFewFields(t *testing.T) {
	if _, err := parseNewTaskArgs("watch|Відео|Опис"); err == nil {
		t.Fatal("expected error for 3 fields")
	}
	if _, err := parseNewTaskArgs(""); err == nil {
		t.Fatal("expected error for empty args")
	}
	if _, err := parseNewTaskArgs(" |Назва|Опис|https://example.com"); err == nil {
		t.Fatal("expected error for empty type")
	}
}

func TestDecisionID(t *testing.T) {
	id, ok := decisionID("approve_17", "approve_")
	if !ok || id != 17 {
		t.Fatalf("expected id 17, got %d ok=%v", id, ok)
	}
	if _, ok := decisionID("approve_", "approve_"); ok {
		t.Fatal("expected failure for missing id")
	}
	if _, ok := decisionID("approve_abc", "approve_"); ok {
		t.Fatal("expected failure for non-numeric id")
	}
	if _, ok := decisionID("reject_5", "approve_"); ok {
		t.Fatal("expected failure for wrong prefix")
	}
}

func TestFormatUserListTruncates(t *testing.T) {
	users := make([]model.User, 0, 25)
	for i := 0; i < 25; i++ {
		users = append(users, model.User{
			ID:         int64(i + 1),
			TelegramID: int64(1000 + i),
			FirstName:  "User",
			Balance:    150,
		})
	}

	text := formatUserList(users, 20)
	if !containsLine(text, "… і ще 5") {
		t.Fatalf("expected truncation note, got:\n%s", text)
	}
}

func TestFormatPendingWithdrawalsShortcuts(t *testing.T) {
	text := formatPendingWithdrawals([]model.PendingWithdrawal{
		{
			Withdrawal: model.Withdrawal{ID: 3, Amount: 250, Status: enums.WithdrawalStatusPending},
			TelegramID: 42,
			FirstName:  "Alice",
		},
	})
	if !containsLine(text, "  /approve_3  /reject_3") {
		t.Fatalf("expected decision shortcuts, got:\n%s", text)
	}
}

func containsLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if l == line {
			return true
		}
	}
	return false
}
