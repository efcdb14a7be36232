package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaura-rewards/internal/model"
)

func newTestWithdraw(t *testing.T, points int64) (*WithdrawService, *memUserStore, *memLedger) {
	t.Helper()
	users := newMemUserStore()
	ledger := newMemLedger()

	_, err := users.Create(context.Background(), &model.User{
		ID:           "u1",
		Identity:     "ali@example.com",
		ReferralCode: "ALICOD",
		Points:       points,
	})
	require.NoError(t, err)

	return NewWithdrawService(users, newMemWithdrawStore(), ledger, 100), users, ledger
}

func TestCreateWithdrawRequest(t *testing.T) {
	ctx := context.Background()
	svc, users, ledger := newTestWithdraw(t, 1200)

	req, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodEasypaisa, "0300-1234567")
	require.NoError(t, err)

	assert.Equal(t, model.WithdrawStatusPending, req.Status)
	assert.Equal(t, int64(1000), req.AmountPoints)
	assert.InDelta(t, 10.0, req.AmountPkr, 1e-9)
	assert.Equal(t, model.MethodEasypaisa, req.Method)
	assert.Equal(t, "ali@example.com", req.UserIdentity)

	user, err := users.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(200), user.Points)

	entries := ledger.byType(model.TxTypeWithdraw)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-1000), entries[0].Amount)
}

func TestCreateWithdrawRequestInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestWithdraw(t, 500)

	_, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodJazzcash, "0300-1234567")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	user, err := users.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(500), user.Points, "balance untouched on refusal")
}

func TestCreateWithdrawRequestInvalidMethod(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestWithdraw(t, 5000)

	_, err := svc.CreateRequest(ctx, "ali@example.com", 1000, "Hawala", "details")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestResolveReject(t *testing.T) {
	ctx := context.Background()
	svc, users, ledger := newTestWithdraw(t, 1200)

	req, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodBinance, "wallet-addr")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, req.ID, model.WithdrawStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawStatusRejected, resolved.Status)

	// Rejection refunds the full deduction.
	user, err := users.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), user.Points)

	refunds := ledger.byType(model.TxTypeWithdrawRefund)
	require.Len(t, refunds, 1)
	assert.Equal(t, int64(1000), refunds[0].Amount)
}

func TestResolveApprove(t *testing.T) {
	ctx := context.Background()
	svc, users, ledger := newTestWithdraw(t, 1200)

	req, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodEasypaisa, "0300-1234567")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, req.ID, model.WithdrawStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawStatusApproved, resolved.Status)

	// Approval pays out off-platform; the balance stays deducted.
	user, err := users.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(200), user.Points)
	assert.Empty(t, ledger.byType(model.TxTypeWithdrawRefund))
}

func TestResolveTwice(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestWithdraw(t, 1200)

	req, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodEasypaisa, "0300-1234567")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, req.ID, model.WithdrawStatusRejected)
	require.NoError(t, err)

	// A second resolution must not double-refund.
	_, err = svc.Resolve(ctx, req.ID, model.WithdrawStatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = svc.Resolve(ctx, req.ID, model.WithdrawStatusApproved)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	user, err := users.GetByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), user.Points)
}

func TestResolveUnknownRequest(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestWithdraw(t, 1200)

	_, err := svc.Resolve(ctx, "no-such-id", model.WithdrawStatusApproved)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestResolveInvalidStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestWithdraw(t, 1200)

	req, err := svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodEasypaisa, "0300-1234567")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, req.ID, "cancelled")
	assert.Error(t, err)
}

func TestListByIdentity(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestWithdraw(t, 5000)

	_, err := users.Create(ctx, &model.User{ID: "u2", Identity: "sara@example.com", ReferralCode: "SARACO", Points: 5000})
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, "ali@example.com", 1000, model.MethodEasypaisa, "a")
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, "sara@example.com", 2000, model.MethodJazzcash, "b")
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, "ali@example.com", 1500, model.MethodBinance, "c")
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListByIdentity(ctx, "ali@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1000), mine[0].AmountPoints)
	assert.Equal(t, int64(1500), mine[1].AmountPoints)
}
