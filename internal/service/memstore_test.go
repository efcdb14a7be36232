// Package service provides business logic implementations.
// In-memory store fakes shared by the service tests.
package service

import (
	"context"
	"sync"
	"time"

	"adaura-rewards/internal/model"
	"adaura-rewards/internal/repository"
)

// fixedClock pins the clock to a known instant so date-roll behavior can be
// driven explicitly.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(day string) *fixedClock {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return &fixedClock{t: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

// memUserStore is an in-memory UserStore keyed by identity.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	codes map[string]string // referral code -> identity
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users: make(map[string]*model.User),
		codes: make(map[string]string),
	}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Identity]; ok {
		return nil, repository.ErrUserExists
	}
	if _, ok := s.codes[user.ReferralCode]; ok {
		return nil, repository.ErrCodeCollision
	}
	cp := *user
	s.users[user.Identity] = &cp
	s.codes[user.ReferralCode] = user.Identity
	out := cp
	return &out, nil
}

func (s *memUserStore) GetByIdentity(_ context.Context, identity string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[identity]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) GetByReferralCode(_ context.Context, code string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.codes[code]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *s.users[identity]
	return &cp, nil
}

func (s *memUserStore) Save(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Identity]; !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	s.users[user.Identity] = &cp
	out := cp
	return &out, nil
}

func (s *memUserStore) UpdatePoints(_ context.Context, identity string, delta int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[identity]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.Points += delta
	cp := *user
	return &cp, nil
}

// memWithdrawStore is an in-memory WithdrawStore preserving insertion order.
type memWithdrawStore struct {
	mu   sync.Mutex
	reqs []*model.WithdrawRequest
}

func newMemWithdrawStore() *memWithdrawStore {
	return &memWithdrawStore{}
}

func (s *memWithdrawStore) Create(_ context.Context, req *model.WithdrawRequest) (*model.WithdrawRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.reqs = append(s.reqs, &cp)
	out := cp
	return &out, nil
}

func (s *memWithdrawStore) GetByID(_ context.Context, id string) (*model.WithdrawRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.reqs {
		if req.ID == id {
			cp := *req
			return &cp, nil
		}
	}
	return nil, repository.ErrRequestNotFound
}

func (s *memWithdrawStore) List(_ context.Context) ([]*model.WithdrawRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.WithdrawRequest, 0, len(s.reqs))
	for _, req := range s.reqs {
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memWithdrawStore) ListByIdentity(_ context.Context, identity string) ([]*model.WithdrawRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.WithdrawRequest
	for _, req := range s.reqs {
		if req.UserIdentity == identity {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memWithdrawStore) Resolve(_ context.Context, id, status string) (*model.WithdrawRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.reqs {
		if req.ID != id {
			continue
		}
		if req.Status != model.WithdrawStatusPending {
			return nil, repository.ErrAlreadyResolved
		}
		req.Status = status
		cp := *req
		return &cp, nil
	}
	return nil, repository.ErrRequestNotFound
}

// memLedger records ledger entries for assertion.
type memLedger struct {
	mu      sync.Mutex
	entries []*model.Transaction
}

func newMemLedger() *memLedger {
	return &memLedger{}
}

func (l *memLedger) Create(_ context.Context, identity string, amount int64, txType string, description *string) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx := &model.Transaction{
		ID:           int64(len(l.entries) + 1),
		UserIdentity: identity,
		Amount:       amount,
		Type:         txType,
		Description:  description,
		CreatedAt:    time.Now(),
	}
	l.entries = append(l.entries, tx)
	return tx, nil
}

func (l *memLedger) byType(txType string) []*model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range l.entries {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}
