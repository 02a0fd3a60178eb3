package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to persist entity")

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to persist entity: connection reset", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", New(CodeNotFound, "policy not found"))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
