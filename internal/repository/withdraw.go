package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaura-rewards/internal/model"
)

// Withdrawal repository errors.
var (
	ErrRequestNotFound = errors.New("withdraw request not found")
	ErrAlreadyResolved = errors.New("withdraw request already resolved")
)

const withdrawColumns = `id, user_id, user_identity, amount_points, amount_pkr,
		method, details, status, created_at`

// WithdrawRepository handles withdraw request persistence.
type WithdrawRepository struct {
	pool *pgxpool.Pool
}

// NewWithdrawRepository creates a new WithdrawRepository instance.
func NewWithdrawRepository(pool *pgxpool.Pool) *WithdrawRepository {
	return &WithdrawRepository{pool: pool}
}

func scanRequest(row pgx.Row) (*model.WithdrawRequest, error) {
	var req model.WithdrawRequest
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.UserIdentity,
		&req.AmountPoints,
		&req.AmountPkr,
		&req.Method,
		&req.Details,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create appends a new withdraw request.
func (r *WithdrawRepository) Create(ctx context.Context, req *model.WithdrawRequest) (*model.WithdrawRequest, error) {
	const query = `
		INSERT INTO withdraw_requests (
			id, user_id, user_identity, amount_points, amount_pkr,
			method, details, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING ` + withdrawColumns

	created, err := scanRequest(r.pool.QueryRow(ctx, query,
		req.ID,
		req.UserID,
		req.UserIdentity,
		req.AmountPoints,
		req.AmountPkr,
		req.Method,
		req.Details,
		req.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	return created, nil
}

// GetByID retrieves a withdraw request by id.
// Returns ErrRequestNotFound if it does not exist.
func (r *WithdrawRepository) GetByID(ctx context.Context, id string) (*model.WithdrawRequest, error) {
	const query = `SELECT ` + withdrawColumns + ` FROM withdraw_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get withdraw request: %w", err)
	}

	return req, nil
}

// List retrieves all withdraw requests in submission order.
func (r *WithdrawRepository) List(ctx context.Context) ([]*model.WithdrawRequest, error) {
	const query = `SELECT ` + withdrawColumns + ` FROM withdraw_requests ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByIdentity retrieves a single user's withdraw requests in submission order.
func (r *WithdrawRepository) ListByIdentity(ctx context.Context, identity string) ([]*model.WithdrawRequest, error) {
	const query = `SELECT ` + withdrawColumns + ` FROM withdraw_requests
		WHERE user_identity = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*model.WithdrawRequest, error) {
	var requests []*model.WithdrawRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdraw request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdraw requests: %w", err)
	}

	return requests, nil
}

// Resolve transitions a pending request to the given terminal status and
// returns the resolved request. The status filter makes the transition
// single-shot: a second resolution attempt finds no pending row.
func (r *WithdrawRepository) Resolve(ctx context.Context, id, status string) (*model.WithdrawRequest, error) {
	const query = `
		UPDATE withdraw_requests
		SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING ` + withdrawColumns

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, status, model.WithdrawStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a terminal request from a missing one.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrAlreadyResolved
			}
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to resolve withdraw request: %w", err)
	}

	return req, nil
}
