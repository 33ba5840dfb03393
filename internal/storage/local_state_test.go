package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

func TestProfileRoundTrip(t *testing.T) {
	state := NewLocalState(setupRepo(t))
	ctx := context.Background()

	if _, ok, err := state.Profile(ctx); err != nil || ok {
		t.Fatalf("expected no profile, ok=%v err=%v", ok, err)
	}

	interests := []string{"go", "go", " ", "music"}
	for i := 0; i < 12; i++ {
		interests = append(interests, fmt.Sprintf("topic-%d", i))
	}
	err := state.SaveProfile(ctx, model.Profile{Name: " Ada ", Username: "ada", Email: "ada@example.com", Interests: interests})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}

	got, ok, err := state.Profile(ctx)
	if err != nil || !ok {
		t.Fatalf("load profile: ok=%v err=%v", ok, err)
	}
	if got.Name != "Ada" || got.Username != "ada" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if len(got.Interests) != model.MaxInterests || got.Interests[0] != "go" || got.Interests[1] != "music" {
		t.Fatalf("unexpected interests %v", got.Interests)
	}
}

func TestSaveProfileValidates(t *testing.T) {
	state := NewLocalState(setupRepo(t))
	if err := state.SaveProfile(context.Background(), model.Profile{Username: "ada"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestWorkplacesDefaultAddRemove(t *testing.T) {
	state := NewLocalState(setupRepo(t))
	ctx := context.Background()

	list, err := state.Workplaces(ctx)
	if err != nil {
		t.Fatalf("workplaces: %v", err)
	}
	if len(list) != 5 || list[0].Name != "Gmail" {
		t.Fatalf("expected default shortcuts, got %+v", list)
	}

	added, err := state.AddWorkplace(ctx, "GitHub", "https://github.com")
	if err != nil {
		t.Fatalf("add workplace: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := state.AddWorkplace(ctx, "Bad", "github.com"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for relative url, got %v", err)
	}

	if err := state.RemoveWorkplace(ctx, "youtube"); err != nil {
		t.Fatalf("remove by name: %v", err)
	}
	if err := state.RemoveWorkplace(ctx, added.ID); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if err := state.RemoveWorkplace(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err = state.Workplaces(ctx)
	if err != nil {
		t.Fatalf("workplaces: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 shortcuts, got %+v", list)
	}
	for _, w := range list {
		if w.Name == "YouTube" || w.Name == "GitHub" {
			t.Fatalf("removed shortcut still present: %+v", w)
		}
	}
}

func TestWorkplaceExpandedDefaultsTrue(t *testing.T) {
	state := NewLocalState(setupRepo(t))
	ctx := context.Background()

	expanded, err := state.WorkplaceExpanded(ctx)
	if err != nil || !expanded {
		t.Fatalf("expected default expanded, got %v, %v", expanded, err)
	}
	if err := state.SetWorkplaceExpanded(ctx, false); err != nil {
		t.Fatalf("set expanded: %v", err)
	}
	if expanded, _ := state.WorkplaceExpanded(ctx); expanded {
		t.Fatalf("expected collapsed")
	}

	if err := state.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if expanded, _ := state.WorkplaceExpanded(ctx); !expanded {
		t.Fatalf("expected default after reset")
	}
}
