package storage

import (
	"context"
	"sync"
)

// TxHooks collects callbacks that must run only once the surrounding
// transaction has committed.
type TxHooks struct {
	mu          sync.Mutex
	afterCommit []func()
}

type txHooksKey struct{}

// ContextWithTransaction marks ctx as running inside a transaction. The
// Transactor calls RunAfterCommit on the returned hooks after a successful
// commit and drops them on rollback.
func ContextWithTransaction(ctx context.Context) (context.Context, *TxHooks) {
	hooks := &TxHooks{}
	return context.WithValue(ctx, txHooksKey{}, hooks), hooks
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txHooksKey{}).(*TxHooks)
	return ok
}

// AfterCommit defers fn until the transaction in ctx commits. Outside a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(txHooksKey{}).(*TxHooks)
	if !ok {
		fn()
		return
	}
	hooks.mu.Lock()
	hooks.afterCommit = append(hooks.afterCommit, fn)
	hooks.mu.Unlock()
}

// RunAfterCommit runs the registered callbacks in registration order.
func (h *TxHooks) RunAfterCommit() {
	h.mu.Lock()
	fns := h.afterCommit
	h.afterCommit = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
