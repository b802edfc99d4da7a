//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leadlens/leadlens/internal/model"
)

func countDefaults(t *testing.T, ctx context.Context, repo *Repository, userID string) int {
	t.Helper()
	templates, err := repo.ListTemplates(ctx, userID)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	n := 0
	for _, tpl := range templates {
		if tpl.IsDefault {
			n++
		}
	}
	return n
}

func newTemplate(userID, name string, isDefault bool) *model.EmailTemplate {
	return &model.EmailTemplate{
		UserID:    userID,
		Name:      name,
		Subject:   "subject " + name,
		Content:   "<p>body " + name + "</p>",
		IsDefault: isDefault,
	}
}

func TestIntegrationTemplateDefaultInvariant(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	// A randomized-looking but deterministic sequence of mutations; the
	// invariant after every step is at most one default per user.
	var ids []string
	checkInvariant := func(step string) {
		t.Helper()
		if n := countDefaults(t, ctx, repo, userID); n > 1 {
			t.Fatalf("after %s: %d defaults", step, n)
		}
	}

	for i := 0; i < 6; i++ {
		tpl := newTemplate(userID, fmt.Sprintf("t%d", i), i%2 == 0)
		if err := repo.CreateTemplate(ctx, tpl); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, tpl.ID)
		checkInvariant(fmt.Sprintf("create %d", i))
	}

	if err := repo.SetDefaultTemplate(ctx, userID, ids[1]); err != nil {
		t.Fatalf("set default: %v", err)
	}
	checkInvariant("set default")

	update := newTemplate(userID, "renamed", true)
	update.ID = ids[3]
	if err := repo.UpdateTemplate(ctx, update, true); err != nil {
		t.Fatalf("update: %v", err)
	}
	checkInvariant("update make-default")

	for _, id := range []string{ids[3], ids[0], ids[5]} {
		if err := repo.DeleteTemplate(ctx, userID, id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
		checkInvariant("delete " + id)
	}
}

func TestIntegrationTemplateCreateDefaultSwap(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	first := newTemplate(userID, "first", true)
	if err := repo.CreateTemplate(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := newTemplate(userID, "second", true)
	if err := repo.CreateTemplate(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	def, err := repo.GetDefaultTemplate(ctx, userID)
	if err != nil {
		t.Fatalf("GetDefaultTemplate failed: %v", err)
	}
	if def.ID != second.ID {
		t.Errorf("default = %q, want the newest default create", def.Name)
	}
	if n := countDefaults(t, ctx, repo, userID); n != 1 {
		t.Errorf("defaults = %d, want 1", n)
	}
}

func TestIntegrationTemplateDeleteDefaultPromotesOldest(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	oldest := newTemplate(userID, "oldest", false)
	if err := repo.CreateTemplate(ctx, oldest); err != nil {
		t.Fatal(err)
	}
	middle := newTemplate(userID, "middle", false)
	if err := repo.CreateTemplate(ctx, middle); err != nil {
		t.Fatal(err)
	}
	def := newTemplate(userID, "default", true)
	if err := repo.CreateTemplate(ctx, def); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteTemplate(ctx, userID, def.ID); err != nil {
		t.Fatalf("delete default: %v", err)
	}

	promoted, err := repo.GetDefaultTemplate(ctx, userID)
	if err != nil {
		t.Fatalf("GetDefaultTemplate failed: %v", err)
	}
	if promoted.ID != oldest.ID {
		t.Errorf("promoted = %q, want the oldest remaining", promoted.Name)
	}
}

func TestIntegrationTemplateDeleteLastLeavesNone(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	only := newTemplate(userID, "only", true)
	if err := repo.CreateTemplate(ctx, only); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteTemplate(ctx, userID, only.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := repo.GetDefaultTemplate(ctx, userID)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("GetDefaultTemplate after deleting all = %v, want ErrTemplateNotFound", err)
	}
}

func TestIntegrationTemplateUserIsolation(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")
	otherID := createTestUser(t, ctx, repo, "other")

	mine := newTemplate(userID, "mine", true)
	if err := repo.CreateTemplate(ctx, mine); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.GetTemplateByID(ctx, otherID, mine.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("cross-user get error = %v, want ErrTemplateNotFound", err)
	}
	if err := repo.SetDefaultTemplate(ctx, otherID, mine.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("cross-user set-default error = %v, want ErrTemplateNotFound", err)
	}
	if err := repo.DeleteTemplate(ctx, otherID, mine.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("cross-user delete error = %v, want ErrTemplateNotFound", err)
	}
}
