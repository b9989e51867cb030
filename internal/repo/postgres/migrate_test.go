package postgres

import (
	"strings"
	"testing"
)

func TestInitMigrationDefinesUniqueGuards(t *testing.T) {
	data, err := migrationFS.ReadFile("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}

	sql := string(data)
	if !strings.Contains(sql, "telegram_id BIGINT      NOT NULL UNIQUE") {
		t.Fatal("expected unique telegram_id constraint on users")
	}
	if !strings.Contains(sql, "UNIQUE (user_id, task_id)") {
		t.Fatal("expected unique (user_id, task_id) constraint on completed_tasks")
	}
	if !strings.Contains(sql, "CHECK (balance >= 0)") {
		t.Fatal("expected non-negative balance check on users")
	}
}
