package memory

/*
In-memory реализация сторов для тестов и demo-режима (без Postgres).
Семантика conditional update в AcquireLock/SetStatusIf идентична SQL-версии:
проверка и запись выполняются под одним мьютексом.
*/

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/theefatymah/Aurralis/internal/audit"
	"github.com/theefatymah/Aurralis/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	activities   map[string]*domain.Activity
	transactions map[string]*domain.Transaction // ключ — activity_id
	policies     []domain.Policy
	events       []audit.Event
}

func NewStore() *Store {
	return &Store{
		activities:   make(map[string]*domain.Activity),
		transactions: make(map[string]*domain.Transaction),
	}
}

func (s *Store) InsertActivity(_ context.Context, a *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneActivity(a)
	s.activities[a.ID] = cp
	return nil
}

func (s *Store) GetActivity(_ context.Context, id string) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneActivity(a)
	if tx, ok := s.transactions[id]; ok {
		txCp := *tx
		out.Transaction = &txCp
	}
	return out, nil
}

func (s *Store) ListActivities(_ context.Context) ([]*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		cp := cloneActivity(a)
		if tx, ok := s.transactions[a.ID]; ok {
			txCp := *tx
			cp.Transaction = &txCp
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) AcquireLock(_ context.Context, id string, at time.Time) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if a.Locked {
		return nil, domain.ErrLocked
	}
	if !a.Decidable() {
		return nil, domain.ErrInvalidState
	}

	a.Locked = true
	a.LockedAt = &at
	a.Status = domain.StatusExecuting
	return cloneActivity(a), nil
}

func (s *Store) ReleaseLock(_ context.Context, id string, status domain.ActivityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Locked = false
	a.LockedAt = nil
	a.Status = status
	return nil
}

func (s *Store) SetStatusIf(_ context.Context, id string, from []domain.ActivityStatus, to domain.ActivityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, f := range from {
		if a.Status == f {
			a.Status = to
			return nil
		}
	}
	return domain.ErrInvalidState
}

func (s *Store) InsertTransaction(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.transactions[t.ActivityID] = &cp
	return nil
}

// TransactionByActivity — доступ для тестов и сверки.
func (s *Store) TransactionByActivity(_ context.Context, activityID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[activityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) CurrentPolicy(_ context.Context) (*domain.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.policies) == 0 {
		return nil, domain.ErrNotFound
	}
	cp := s.policies[len(s.policies)-1]
	return &cp, nil
}

func (s *Store) CreatePolicy(_ context.Context, p *domain.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, *p)
	return nil
}

func (s *Store) UpdatePolicy(_ context.Context, p *domain.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.policies {
		if s.policies[i].ID == p.ID {
			s.policies[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) AdvanceSpend(_ context.Context, policyID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.policies {
		if s.policies[i].ID == policyID {
			s.policies[i].CurrentMonthlySpent += amount
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) WriteBatch(_ context.Context, events []audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) FetchEvents(_ context.Context, activityID, action string) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]audit.Event, 0)
	for _, e := range s.events {
		if activityID != "" && e.ActivityID != activityID {
			continue
		}
		if action != "" && e.Action != action {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func cloneActivity(a *domain.Activity) *domain.Activity {
	cp := *a
	cp.PolicyChecks = append([]domain.PolicyCheck(nil), a.PolicyChecks...)
	if a.LockedAt != nil {
		t := *a.LockedAt
		cp.LockedAt = &t
	}
	cp.Transaction = nil
	return &cp
}
