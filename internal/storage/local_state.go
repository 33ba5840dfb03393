package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

// LocalState reads and writes the presentation state kept on this machine:
// the user profile and the workplace shortcut list.
type LocalState struct {
	repo Repository
}

func NewLocalState(repo Repository) *LocalState {
	return &LocalState{repo: repo}
}

func (s *LocalState) load(ctx context.Context, key string, out any) (bool, error) {
	entry, err := s.repo.GetEntry(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalState) save(ctx context.Context, key string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.repo.PutEntry(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Profile returns the stored profile and whether one exists.
func (s *LocalState) Profile(ctx context.Context) (model.Profile, bool, error) {
	var p model.Profile
	ok, err := s.load(ctx, KeyUser, &p)
	if err != nil || !ok {
		return model.Profile{}, false, err
	}
	return p, true, nil
}

func (s *LocalState) SaveProfile(ctx context.Context, p model.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	interests := p.Interests
	p.Interests = nil
	for _, in := range interests {
		p.AddInterest(in)
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.save(ctx, KeyUser, p)
}

// Workplaces returns the stored shortcuts, or the defaults when none were saved.
func (s *LocalState) Workplaces(ctx context.Context) ([]model.Workplace, error) {
	var list []model.Workplace
	ok, err := s.load(ctx, KeyWorkplaceApps, &list)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultWorkplaces(), nil
	}
	return list, nil
}

func (s *LocalState) SaveWorkplaces(ctx context.Context, list []model.Workplace) error {
	for _, w := range list {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	if list == nil {
		list = []model.Workplace{}
	}
	return s.save(ctx, KeyWorkplaceApps, list)
}

func (s *LocalState) AddWorkplace(ctx context.Context, name, rawURL string) (model.Workplace, error) {
	w := model.Workplace{ID: uuid.NewString(), Name: strings.TrimSpace(name), URL: strings.TrimSpace(rawURL)}
	if err := w.Validate(); err != nil {
		return model.Workplace{}, err
	}
	list, err := s.Workplaces(ctx)
	if err != nil {
		return model.Workplace{}, err
	}
	list = append(list, w)
	if err := s.SaveWorkplaces(ctx, list); err != nil {
		return model.Workplace{}, err
	}
	return w, nil
}

// RemoveWorkplace deletes a shortcut by id or, failing that, by
// case-insensitive name.
func (s *LocalState) RemoveWorkplace(ctx context.Context, idOrName string) error {
	list, err := s.Workplaces(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(w model.Workplace) bool { return w.ID == idOrName })
	if i < 0 {
		i = slices.IndexFunc(list, func(w model.Workplace) bool { return strings.EqualFold(w.Name, idOrName) })
	}
	if i < 0 {
		return fmt.Errorf("%w: workplace %q", model.ErrNotFound, idOrName)
	}
	return s.SaveWorkplaces(ctx, slices.Delete(list, i, i+1))
}

// WorkplaceExpanded defaults to true.
func (s *LocalState) WorkplaceExpanded(ctx context.Context) (bool, error) {
	expanded := true
	if _, err := s.load(ctx, KeyWorkplaceExpanded, &expanded); err != nil {
		return true, err
	}
	return expanded, nil
}

func (s *LocalState) SetWorkplaceExpanded(ctx context.Context, expanded bool) error {
	return s.save(ctx, KeyWorkplaceExpanded, expanded)
}

// Reset forgets every stored key so defaults apply again.
func (s *LocalState) Reset(ctx context.Context) error {
	for _, key := range []string{KeyUser, KeyWorkplaceApps, KeyWorkplaceExpanded} {
		if err := s.repo.DeleteEntry(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	return nil
}
