package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCounterRepo — in-memory реализация CounterRepository.
type fakeCounterRepo struct {
	counters map[string]*model.Counter // ключ — ID записи
	failAll  bool                      // имитация недоступного хранилища
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: make(map[string]*model.Counter)}
}

func (f *fakeCounterRepo) Upsert(_ context.Context, c *model.Counter) error {
	if f.failAll {
		return fmt.Errorf("хранилище недоступно")
	}
	for _, existing := range f.counters {
		if existing.Department == c.Department && existing.CounterID == c.CounterID {
			existing.IsPaused = c.IsPaused
			c.ID = existing.ID
			return nil
		}
	}
	cp := *c
	f.counters[c.ID] = &cp
	return nil
}

func (f *fakeCounterRepo) GetByID(_ context.Context, id string) (*model.Counter, error) {
	if f.failAll {
		return nil, fmt.Errorf("хранилище недоступно")
	}
	c, ok := f.counters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCounterRepo) GetByNumber(_ context.Context, department string, counterID int) (*model.Counter, error) {
	if f.failAll {
		return nil, fmt.Errorf("хранилище недоступно")
	}
	for _, c := range f.counters {
		if c.Department == department && c.CounterID == counterID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCounterRepo) List(_ context.Context, department string) ([]*model.Counter, error) {
	if f.failAll {
		return nil, fmt.Errorf("хранилище недоступно")
	}
	var result []*model.Counter
	for _, c := range f.counters {
		if c.Department == department {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeCounterRepo) SetPaused(_ context.Context, id string, paused bool) error {
	if f.failAll {
		return fmt.Errorf("хранилище недоступно")
	}
	c, ok := f.counters[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsPaused = paused
	return nil
}

// fakeMembershipRepo — in-memory реализация MembershipRepository.
type fakeMembershipRepo struct {
	memberships map[string]*model.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[string]*model.Membership)}
}

func (f *fakeMembershipRepo) Create(_ context.Context, m *model.Membership) error {
	for _, existing := range f.memberships {
		if existing.CitizenID == m.CitizenID && existing.Active && m.Active {
			return repository.ErrConflict
		}
	}
	cp := *m
	f.memberships[m.ID] = &cp
	return nil
}

func (f *fakeMembershipRepo) GetByID(_ context.Context, id string) (*model.Membership, error) {
	m, ok := f.memberships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembershipRepo) GetActiveByCitizen(_ context.Context, citizenID string) (*model.Membership, error) {
	for _, m := range f.memberships {
		if m.CitizenID == citizenID && m.Active {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembershipRepo) List(_ context.Context) ([]*model.Membership, error) {
	result := make([]*model.Membership, 0, len(f.memberships))
	for _, m := range f.memberships {
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeMembershipRepo) SetActive(_ context.Context, id string, active bool) error {
	m, ok := f.memberships[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Active = active
	return nil
}

// fakeCitizenRepo — in-memory реализация CitizenRepository.
type fakeCitizenRepo struct {
	citizens map[string]*model.Citizen
}

func newFakeCitizenRepo(citizens ...*model.Citizen) *fakeCitizenRepo {
	f := &fakeCitizenRepo{citizens: make(map[string]*model.Citizen)}
	for _, c := range citizens {
		cp := *c
		f.citizens[c.ID] = &cp
	}
	return f
}

func (f *fakeCitizenRepo) Create(_ context.Context, c *model.Citizen) error {
	if _, ok := f.citizens[c.ID]; ok {
		return repository.ErrConflict
	}
	cp := *c
	f.citizens[c.ID] = &cp
	return nil
}

func (f *fakeCitizenRepo) GetByID(_ context.Context, id string) (*model.Citizen, error) {
	c, ok := f.citizens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCitizenRepo) List(_ context.Context) ([]*model.Citizen, error) {
	result := make([]*model.Citizen, 0, len(f.citizens))
	for _, c := range f.citizens {
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeCitizenRepo) Update(_ context.Context, c *model.Citizen) error {
	if _, ok := f.citizens[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	f.citizens[c.ID] = &cp
	return nil
}

func (f *fakeCitizenRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.citizens[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.citizens, id)
	return nil
}
