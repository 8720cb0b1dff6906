package retry

import (
	"context"
	"testing"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/tcfw/govern/pkg/identity/mocks"
)

func fastBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestDo(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastBackoff(), 5, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastBackoff(), 3, func() error {
		calls++
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, &backoff.Backoff{Min: time.Hour, Max: time.Hour}, 5, func() error {
		calls++
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoPermanent(t *testing.T) {
	for _, perm := range []error{identity.ErrUnknownIdentity, identity.ErrInvalidSeed, identity.ErrUnknownScheme} {
		calls := 0
		err := Do(context.Background(), &backoff.Backoff{Min: time.Hour, Max: time.Hour}, 5, func() error {
			calls++
			return errors.Wrap(perm, "derive")
		})

		assert.ErrorIs(t, err, perm)
		assert.Equal(t, 1, calls)
	}
}

func TestProvider(t *testing.T) {
	m := mocks.NewProvider(t)
	m.On("Derive", mock.Anything, 1, 0, 0).Return(identity.ID(""), errors.New("busy")).Once()
	m.On("Derive", mock.Anything, 1, 0, 0).Return(identity.ID("alice"), nil).Once()
	m.On("Sign", mock.Anything, identity.ID("alice"), []byte("x")).Return(identity.Signature("sig"), nil).Once()
	m.On("Verify", []byte("x"), identity.Signature("sig"), identity.ID("alice")).Return(true).Once()

	p := Wrap(m, WithBackoff(time.Millisecond, time.Millisecond), WithAttempts(2))

	id, err := p.Derive(context.Background(), 1, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, identity.ID("alice"), id)

	sig, err := p.Sign(context.Background(), id, []byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, identity.Signature("sig"), sig)

	assert.True(t, p.Verify([]byte("x"), sig, id))
}
