// Package service provides business logic implementations.
package service

import (
	"context"

	"adaura-rewards/internal/model"
)

// UserStore is the user-record persistence the engines depend on.
// *repository.UserRepository implements it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByIdentity(ctx context.Context, identity string) (*model.User, error)
	GetByReferralCode(ctx context.Context, code string) (*model.User, error)
	Save(ctx context.Context, user *model.User) (*model.User, error)
	UpdatePoints(ctx context.Context, identity string, delta int64) (*model.User, error)
}

// WithdrawStore is the withdraw-request persistence the lifecycle depends on.
type WithdrawStore interface {
	Create(ctx context.Context, req *model.WithdrawRequest) (*model.WithdrawRequest, error)
	GetByID(ctx context.Context, id string) (*model.WithdrawRequest, error)
	List(ctx context.Context) ([]*model.WithdrawRequest, error)
	ListByIdentity(ctx context.Context, identity string) ([]*model.WithdrawRequest, error)
	Resolve(ctx context.Context, id, status string) (*model.WithdrawRequest, error)
}

// LedgerStore records points mutations. Failures to record are non-fatal:
// the balance change has already been applied.
type LedgerStore interface {
	Create(ctx context.Context, identity string, amount int64, txType string, description *string) (*model.Transaction, error)
}
