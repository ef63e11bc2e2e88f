package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := persistence.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		user := &models.User{ID: id, Email: id + "@example.com", PasswordHash: "x"}
		if err := db.Create(user).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func TestChatCreate_StartsAtVersionOne(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	svc := NewChatService(zap.NewNop())

	now := time.Now().UTC()
	chat, err := svc.Create(db, "u1", CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	if chat.Version != 1 {
		t.Errorf("version: got %d, want 1", chat.Version)
	}
	if chat.Forked {
		t.Error("forked: got true, want false")
	}
}

func TestChatUpdate_BumpsVersionAndSetsFields(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	svc := NewChatService(zap.NewNop())

	now := time.Now().UTC()
	if _, err := svc.Create(db, "u1", CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	title := "Renamed"
	pinned := true
	pinnedAt := now.Add(time.Minute)
	updated, err := svc.Update(db, "u1", UpdateChatArgs{
		ID:        "c1",
		Title:     &title,
		Pinned:    &pinned,
		PinnedAt:  &pinnedAt,
		UpdatedAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Version != 2 {
		t.Errorf("version: got %d, want 2", updated.Version)
	}
	if updated.Title == nil || *updated.Title != "Renamed" {
		t.Errorf("title: got %v", updated.Title)
	}
	if !updated.Pinned || updated.PinnedAt == nil {
		t.Errorf("pinned state: %+v", updated)
	}
}

func TestChatUpdate_RejectsNonOwner(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1", "u2")
	svc := NewChatService(zap.NewNop())

	now := time.Now().UTC()
	if _, err := svc.Create(db, "u1", CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	title := "hijack"
	_, err := svc.Update(db, "u2", UpdateChatArgs{ID: "c1", Title: &title, UpdatedAt: now})
	if !apperrors.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestChatDelete_CascadesMessages(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	chats := NewChatService(zap.NewNop())
	messages := NewMessageService(zap.NewNop())

	now := time.Now().UTC()
	if _, err := chats.Create(db, "u1", CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if _, err := messages.Create(db, "u1", CreateMessageArgs{
		ID: "m1", ChatID: "c1", Role: models.RoleUser, Body: "hi", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := chats.Delete(db, "u1", "c1"); err != nil {
		t.Fatal(err)
	}

	var count int64
	if err := db.Model(&models.Message{}).Where("chat_id = ?", "c1").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("messages after delete: got %d, want 0", count)
	}
}

func TestChatFork_CopiesMessagesAtVersionOne(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	svc := NewChatService(zap.NewNop())

	now := time.Now().UTC()
	chat, err := svc.Fork(db, "u1", ForkChatArgs{
		NewID: "c2",
		Title: "Fork of chat",
		Msgs: []ForkedMessage{
			{ID: "m1", Role: models.RoleUser, Body: "hello", CreatedAt: now, UpdatedAt: now},
			{ID: "m2", Role: models.RoleAssistant, Body: "hi", CreatedAt: now, UpdatedAt: now},
		},
		Time: now,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !chat.Forked {
		t.Error("forked flag not set")
	}
	if chat.Version != 1 {
		t.Errorf("chat version: got %d, want 1", chat.Version)
	}

	var msgs []models.Message
	if err := db.Where("chat_id = ?", "c2").Order("created_at").Find(&msgs).Error; err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("copied messages: got %d, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.Version != 1 {
			t.Errorf("message %s version: got %d, want 1", m.ID, m.Version)
		}
	}
}
