package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var testAsset = common.HexToAddress("0x00000000000000000000000000000000000000c2")

func feeBalance(t *testing.T, ctx context.Context, fees *FeeLedgerRepository) uint64 {
	t.Helper()
	b, err := fees.Balance(ctx, testAsset)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return b.Uint64()
}

func TestTxManager_SavepointRollback(t *testing.T) {
	state := NewState()
	mgr := NewTxManager(state)
	fees := NewFeeLedgerRepository(state)

	ctx, root, err := mgr.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := fees.Add(ctx, root, testAsset, uint256.NewInt(10)); err != nil {
		t.Fatalf("add: %v", err)
	}

	nestedCtx, nested, err := mgr.Begin(ctx)
	if err != nil {
		t.Fatalf("nested begin: %v", err)
	}
	if err := fees.Add(nestedCtx, nested, testAsset, uint256.NewInt(5)); err != nil {
		t.Fatalf("nested add: %v", err)
	}
	if got := feeBalance(t, nestedCtx, fees); got != 15 {
		t.Fatalf("expected 15 inside savepoint, got %d", got)
	}
	if err := nested.Rollback(nestedCtx); err != nil {
		t.Fatalf("nested rollback: %v", err)
	}
	if got := feeBalance(t, ctx, fees); got != 10 {
		t.Fatalf("expected savepoint reverted to 10, got %d", got)
	}

	if err := root.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := feeBalance(t, context.Background(), fees); got != 10 {
		t.Fatalf("expected 10 after commit, got %d", got)
	}
}

func TestTxManager_RootRollbackRevertsCommittedSavepoint(t *testing.T) {
	state := NewState()
	mgr := NewTxManager(state)
	fees := NewFeeLedgerRepository(state)

	ctx, root, _ := mgr.Begin(context.Background())
	nestedCtx, nested, _ := mgr.Begin(ctx)
	if err := fees.Add(nestedCtx, nested, testAsset, uint256.NewInt(7)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := nested.Commit(nestedCtx); err != nil {
		t.Fatalf("nested commit: %v", err)
	}
	if err := root.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if got := feeBalance(t, context.Background(), fees); got != 0 {
		t.Fatalf("expected 0 after root rollback, got %d", got)
	}
	if err := nested.Rollback(nestedCtx); err != nil {
		t.Fatalf("late nested rollback should be a no-op, got %v", err)
	}
}

func TestTxManager_SerializesRoots(t *testing.T) {
	state := NewState()
	mgr := NewTxManager(state)

	ctx, root, _ := mgr.Begin(context.Background())

	waitCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := mgr.Begin(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second root to wait, got %v", err)
	}

	if err := root.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := root.Commit(ctx); !errors.Is(err, ErrTxFinished) {
		t.Fatalf("expected ErrTxFinished, got %v", err)
	}

	_, next, err := mgr.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin after commit: %v", err)
	}
	_ = next.Rollback(context.Background())
}

func TestLoanRepository_NextIDReleasedOnRollback(t *testing.T) {
	state := NewState()
	mgr := NewTxManager(state)
	loans := NewLoanRepository(state)

	ctx, tx, _ := mgr.Begin(context.Background())
	id, err := loans.NextID(ctx, tx)
	if err != nil || id != 1 {
		t.Fatalf("expected id 1, got %d %v", id, err)
	}
	_ = tx.Rollback(ctx)

	ctx, tx, _ = mgr.Begin(context.Background())
	id, _ = loans.NextID(ctx, tx)
	if id != 1 {
		t.Fatalf("expected rolled back id to be reissued, got %d", id)
	}
	_ = tx.Commit(ctx)
}

func TestFeeLedgerRepository_RollbackForgetsFirstCredit(t *testing.T) {
	state := NewState()
	mgr := NewTxManager(state)
	fees := NewFeeLedgerRepository(state)

	ctx, tx, err := mgr.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := fees.Add(ctx, tx, testAsset, uint256.NewInt(10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := fees.Add(ctx, tx, testAsset, uint256.NewInt(5)); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if _, ok := fees.balances[testAsset]; ok {
		t.Fatalf("expected no entry after rollback, got %s", fees.balances[testAsset].Dec())
	}

	if err := fees.Add(context.Background(), nil, testAsset, uint256.NewInt(3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	ctx, tx, _ = mgr.Begin(context.Background())
	if err := fees.Sub(ctx, tx, testAsset, uint256.NewInt(3)); err != nil {
		t.Fatalf("sub: %v", err)
	}
	_ = tx.Rollback(ctx)
	if got := feeBalance(t, context.Background(), fees); got != 3 {
		t.Fatalf("expected existing balance restored to 3, got %d", got)
	}
}
