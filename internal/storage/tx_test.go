package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAfterCommit_OutsideTransactionRunsImmediately(t *testing.T) {
	ran := false

	AfterCommit(context.Background(), func() { ran = true })

	require.True(t, ran)
	require.False(t, InTransaction(context.Background()))
}

func TestAfterCommit_DeferredUntilCommit(t *testing.T) {
	ctx, hooks := ContextWithTransaction(context.Background())
	require.True(t, InTransaction(ctx))

	var order []int
	AfterCommit(ctx, func() { order = append(order, 1) })
	AfterCommit(ctx, func() { order = append(order, 2) })
	require.Empty(t, order, "hooks must wait for commit")

	hooks.RunAfterCommit()
	require.Equal(t, []int{1, 2}, order)

	hooks.RunAfterCommit()
	require.Equal(t, []int{1, 2}, order, "hooks run once")
}
