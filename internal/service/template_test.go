package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func countDefaults(t *testing.T, store *fakeTemplateStore, userID string) int {
	t.Helper()
	n := 0
	for _, tpl := range store.templates {
		if tpl.UserID == userID && tpl.IsDefault {
			n++
		}
	}
	return n
}

func TestTemplateCreateDefaultSwaps(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", "first", "s1", "b1", true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := svc.Create(ctx, "user-1", "second", "s2", "b2", true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if n := countDefaults(t, store, "user-1"); n != 1 {
		t.Fatalf("defaults = %d, want 1", n)
	}
	got, err := svc.Get(ctx, "user-1", first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsDefault {
		t.Error("first template still default after second default create")
	}
	got, err = svc.Get(ctx, "user-1", second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsDefault {
		t.Error("second template not default")
	}
}

func TestTemplateSetDefault(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "user-1", "a", "s", "b", true)
	b, _ := svc.Create(ctx, "user-1", "b", "s", "b", false)

	got, err := svc.SetDefault(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if !got.IsDefault {
		t.Error("SetDefault target not default")
	}
	if n := countDefaults(t, store, "user-1"); n != 1 {
		t.Errorf("defaults = %d, want 1", n)
	}

	other, _ := svc.Get(ctx, "user-1", a.ID)
	if other.IsDefault {
		t.Error("previous default not cleared")
	}

	if _, err := svc.SetDefault(ctx, "user-1", "missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("SetDefault(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateDeleteDefaultPromotesOldest(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	oldest, _ := svc.Create(ctx, "user-1", "oldest", "s", "b", false)
	middle, _ := svc.Create(ctx, "user-1", "middle", "s", "b", false)
	def, _ := svc.Create(ctx, "user-1", "default", "s", "b", true)
	_ = middle

	if err := svc.Delete(ctx, "user-1", def.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if n := countDefaults(t, store, "user-1"); n != 1 {
		t.Fatalf("defaults = %d after default deletion, want 1", n)
	}
	got, err := svc.Get(ctx, "user-1", oldest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsDefault {
		t.Error("oldest remaining template not promoted")
	}
}

func TestTemplateDeleteLastLeavesNoDefault(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	only, _ := svc.Create(ctx, "user-1", "only", "s", "b", true)
	if err := svc.Delete(ctx, "user-1", only.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if n := countDefaults(t, store, "user-1"); n != 0 {
		t.Errorf("defaults = %d after deleting the only template, want 0", n)
	}
}

func TestTemplateUpdateCanClearDefault(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	tpl, _ := svc.Create(ctx, "user-1", "t", "s", "b", true)

	got, err := svc.Update(ctx, "user-1", tpl.ID, "t2", "s2", "b2", false)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.IsDefault {
		t.Error("template still default after clearing")
	}
	if got.Name != "t2" || got.Subject != "s2" || got.Content != "b2" {
		t.Errorf("fields not updated: %+v", got)
	}
	if n := countDefaults(t, store, "user-1"); n != 0 {
		t.Errorf("defaults = %d, want 0 (clearing does not promote)", n)
	}
}

func TestTemplateEnsureSeed(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	seeded, err := svc.EnsureSeed(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureSeed() error = %v", err)
	}
	if seeded == nil {
		t.Fatal("EnsureSeed() returned nil for a user with no templates")
	}
	if !seeded.IsDefault {
		t.Error("seeded template not default")
	}

	again, err := svc.EnsureSeed(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureSeed() second call error = %v", err)
	}
	if again != nil {
		t.Error("EnsureSeed() created a second template")
	}

	list, _ := svc.List(ctx, "user-1")
	if len(list) != 1 {
		t.Errorf("templates = %d, want 1", len(list))
	}
}

func TestTemplateEnsureSeedPromotesExisting(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	// The seed template exists but nothing is default, e.g. after the
	// user cleared the flag through an update.
	existing, _ := svc.Create(ctx, "user-1", seedTemplateName, "s", "b", false)
	other, _ := svc.Create(ctx, "user-1", "custom", "s", "b", false)

	seeded, err := svc.EnsureSeed(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureSeed() error = %v", err)
	}
	if seeded == nil || seeded.ID != existing.ID {
		t.Fatalf("EnsureSeed() = %+v, want promotion of %s", seeded, existing.ID)
	}
	if !seeded.IsDefault {
		t.Error("promoted template not default")
	}

	list, _ := svc.List(ctx, "user-1")
	if len(list) != 2 {
		t.Errorf("templates = %d, want 2", len(list))
	}
	if got, _ := svc.Get(ctx, "user-1", other.ID); got.IsDefault {
		t.Error("unrelated template became default")
	}
}

func TestTemplateDefaultInvariantRandomSequence(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	var live []string
	remove := func(id string) {
		for i, v := range live {
			if v == id {
				live = append(live[:i], live[i+1:]...)
				return
			}
		}
	}

	check := func(step int, op string) {
		t.Helper()
		if n := countDefaults(t, store, "user-1"); n > 1 {
			t.Fatalf("step %d (%s): defaults = %d, want <= 1", step, op, n)
		}
	}

	for step := 0; step < 200; step++ {
		op := rng.Intn(4)
		if len(live) == 0 {
			op = 0
		}
		switch op {
		case 0:
			tpl, err := svc.Create(ctx, "user-1", fmt.Sprintf("t%d", step), "s", "b", rng.Intn(2) == 0)
			if err != nil {
				t.Fatalf("step %d: Create() error = %v", step, err)
			}
			live = append(live, tpl.ID)
			check(step, "create")
		case 1:
			id := live[rng.Intn(len(live))]
			if _, err := svc.Update(ctx, "user-1", id, fmt.Sprintf("u%d", step), "s", "b", rng.Intn(2) == 0); err != nil {
				t.Fatalf("step %d: Update() error = %v", step, err)
			}
			check(step, "update")
		case 2:
			id := live[rng.Intn(len(live))]
			if _, err := svc.SetDefault(ctx, "user-1", id); err != nil {
				t.Fatalf("step %d: SetDefault() error = %v", step, err)
			}
			check(step, "setDefault")
		case 3:
			id := live[rng.Intn(len(live))]
			if err := svc.Delete(ctx, "user-1", id); err != nil {
				t.Fatalf("step %d: Delete() error = %v", step, err)
			}
			remove(id)
			check(step, "delete")
		}
	}
}

func TestTemplateUserIsolation(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewTemplateService(store)
	ctx := context.Background()

	mine, _ := svc.Create(ctx, "user-1", "mine", "s", "b", true)

	if _, err := svc.Get(ctx, "user-2", mine.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("cross-user Get() error = %v, want ErrTemplateNotFound", err)
	}
	if err := svc.Delete(ctx, "user-2", mine.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("cross-user Delete() error = %v, want ErrTemplateNotFound", err)
	}
}
