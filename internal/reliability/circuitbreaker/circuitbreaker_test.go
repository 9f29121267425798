package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpensAfterThreshold(t *testing.T) {
	cb := New(2, 1, time.Minute)
	fail := func() error { return errors.New("down") }

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateOpen, cb.GetState())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	cb := New(1, 1, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("down") }))
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("down") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("still down") }))
	assert.Equal(t, StateOpen, cb.GetState())
}
