package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("disk on fire")

	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"not found", NotFound("seat %s", "A-1"), KindNotFound},
		{"conflict", Conflict("busy"), KindConflict},
		{"validation", Validation("bad"), KindValidation},
		{"io", IO(cause, "write failed"), KindIO},
		{"wrapped with fmt", fmt.Errorf("assign: %w", Conflict("busy")), KindConflict},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindTimeout},
		{"explicit timeout", Wrap(KindTimeout, cause, "slow"), KindTimeout},
		{"plain error", cause, KindIO},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("connection reset")

	assert.Equal(t, "seat A-1 not found", NotFound("seat %s not found", "A-1").Error())
	assert.Equal(t, "load seat: connection reset", IO(cause, "load seat").Error())
	assert.Equal(t, "connection reset", Wrap(KindIO, cause, "").Error())

	err := IO(cause, "load seat")
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindIO))
	assert.False(t, Is(nil, KindIO))
}
