package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passcodeKey = "robinhood/passcode"

func TestStorePutUsesPassInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, context.Background(), ctx)
			assert.Equal(t, []string{"insert", "-m", "-f", passcodeKey}, args)
			assert.Equal(t, "hunter2\n", input)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), passcodeKey, "hunter2")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "robinhood/passcodetrader"}, args)
			assert.Empty(t, input)
			return "hunter2\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "robinhood/passcodetrader")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
}

func TestStoreDeleteUsesPassRemove(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", passcodeKey}, args)
			assert.Empty(t, input)
			return "", "", nil
		},
	}

	err := store.Delete(context.Background(), passcodeKey)
	require.NoError(t, err)
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "entry not found", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), passcodeKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, passcodeKey)
	assert.ErrorContains(t, err, "entry not found")
}

func TestStoreSurfacesMissingPassBinary(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "", ErrUnavailable
		},
	}

	_, err := store.Get(context.Background(), passcodeKey)
	require.ErrorIs(t, err, ErrUnavailable)

	err = store.Put(context.Background(), passcodeKey, "hunter2")
	require.ErrorIs(t, err, ErrUnavailable)
}
