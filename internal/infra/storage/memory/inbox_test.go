package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/infra/storage/memory"
)

func TestInboxSeenAndForget(t *testing.T) {
	ctx := context.Background()
	inbox := memory.NewInbox()

	seen, err := inbox.Seen(ctx, "e-1")
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = inbox.Seen(ctx, "e-1")
	require.NoError(t, err)
	require.True(t, seen)

	require.NoError(t, inbox.Forget(ctx, "e-1"))
	seen, err = inbox.Seen(ctx, "e-1")
	require.NoError(t, err)
	require.False(t, seen)
}
