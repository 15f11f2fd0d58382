package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
)

func TestWarnMutesExactlyOnceAtLimit(t *testing.T) {
	t.Parallel()
	h := newHarness()
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		out, err := h.engine.Warn(ctx, testChat, testUser, testAdmin)
		require.NoError(t, err)
		require.Equal(t, want, out.Count)
		require.Equal(t, 3, out.Limit)
		require.Equal(t, want == 3, out.Muted, "warn %d", want)
	}

	calls := h.sink.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "restrict", calls[0].Kind)
	require.Equal(t, MutedPermissions(), calls[0].Perms)
	require.NotNil(t, calls[0].Until)
	require.Equal(t, h.clock.Now().Add(24*time.Hour), *calls[0].Until)
}

func TestWarnKeepsCountWhenMuteFails(t *testing.T) {
	t.Parallel()
	h := newHarness()
	h.sink.fail["restrict"] = pderrors.PlatformAction("restrict", errors.New("Bad Request: not enough rights"))
	ctx := context.Background()

	var out *WarnOutcome
	var err error
	for i := 0; i < 3; i++ {
		out, err = h.engine.Warn(ctx, testChat, testUser, testAdmin)
		require.NoError(t, err)
	}
	require.Equal(t, 3, out.Count)
	require.False(t, out.Muted)
	require.ErrorIs(t, out.MuteErr, pderrors.ErrNoPrivileges)

	out, err = h.engine.Warn(ctx, testChat, testUser, testAdmin)
	require.NoError(t, err)
	require.Equal(t, 4, out.Count)
	require.Len(t, h.sink.Calls(), 1, "no retry of the mute above the limit")
}

func TestWarnFailsClosedOnStorageError(t *testing.T) {
	t.Parallel()
	h := newHarness()
	h.ledger.err = pderrors.Storage("increment", errors.New("disk I/O error"))

	out, err := h.engine.Warn(context.Background(), testChat, testUser, testAdmin)
	require.Nil(t, out)
	require.ErrorIs(t, err, pderrors.ErrStorage)
	require.Empty(t, h.sink.Calls())
}
