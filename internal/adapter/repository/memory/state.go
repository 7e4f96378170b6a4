// Package memory holds the in-process ledger: repositories, ticket
// registries and sandbox assets sharing one journaled State.
package memory

import (
	"context"
	"errors"

	"github.com/bengbengle/nft-lend/internal/usecase"
)

// ErrTxFinished is returned when a transaction is used after Commit or Rollback.
var ErrTxFinished = errors.New("transaction already finished")

// State serializes access to every component built on it. At most one root
// transaction holds it at a time; components record undo steps into that
// transaction so a rollback restores the exact prior state.
type State struct {
	sem chan struct{}
}

// NewState creates an empty State.
func NewState() *State {
	return &State{sem: make(chan struct{}, 1)}
}

type txKey struct{}

// Tx is a root transaction or a savepoint nested inside one.
type Tx struct {
	state *State
	root  *Tx
	mark  int
	done  bool

	// journal is only used on the root.
	journal []func()
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	state *State
}

// NewTxManager creates a new TxManager.
func NewTxManager(state *State) *TxManager {
	return &TxManager{state: state}
}

// Begin starts a root transaction, or a savepoint when ctx already carries an
// active transaction of the same State.
func (m *TxManager) Begin(ctx context.Context) (context.Context, usecase.Transaction, error) {
	ctx, tx, err := m.state.begin(ctx)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, tx, nil
}

func (s *State) begin(ctx context.Context) (context.Context, *Tx, error) {
	if parent := s.active(ctx); parent != nil {
		tx := &Tx{state: s, root: parent.root, mark: len(parent.root.journal)}
		return context.WithValue(ctx, txKey{}, tx), tx, nil
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx, nil, ctx.Err()
	}

	tx := &Tx{state: s}
	tx.root = tx
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

// active returns the unfinished transaction of s carried by ctx.
func (s *State) active(ctx context.Context) *Tx {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx.state != s || tx.done || tx.root.done {
		return nil
	}
	return tx
}

// Commit keeps the writes of the transaction. For a savepoint the writes
// stay revertible by the enclosing transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxFinished
	}
	t.done = true
	if t.root == t {
		t.journal = nil
		<-t.state.sem
	}
	return nil
}

// Rollback reverts every write made since the transaction began. Calling it
// after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if t.root != t && t.root.done {
		return nil
	}
	t.root.undoTo(t.mark)
	if t.root == t {
		t.journal = nil
		<-t.state.sem
	}
	return nil
}

// onRollback records how to revert a write.
func (t *Tx) onRollback(undo func()) {
	t.root.journal = append(t.root.journal, undo)
}

func (t *Tx) undoTo(mark int) {
	for i := len(t.journal) - 1; i >= mark; i-- {
		t.journal[i]()
	}
	t.journal = t.journal[:mark]
}

// read runs fn under the State, joining the transaction carried by ctx.
func (s *State) read(ctx context.Context, fn func()) error {
	if s.active(ctx) != nil {
		fn()
		return nil
	}
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()
	fn()
	return nil
}

// write runs fn in a savepoint of the transaction carried by ctx, or in a
// fresh root transaction. fn receives a context carrying that transaction so
// callbacks it makes join it. A failing fn leaves no trace.
func (s *State) write(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	ctx, tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// writeTx is write for repositories that receive the transaction explicitly.
func (s *State) writeTx(ctx context.Context, tx usecase.Transaction, fn func(tx *Tx) error) error {
	if t, ok := tx.(*Tx); ok && t.state == s && !t.done {
		ctx = context.WithValue(ctx, txKey{}, t)
	}
	return s.write(ctx, func(_ context.Context, t *Tx) error {
		return fn(t)
	})
}
