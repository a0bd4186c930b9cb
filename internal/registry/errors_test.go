package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := NewInvalidStateError(3, "minted", "update")
	assert.Equal(t, `INVALID_STATE: cannot update achievement in status "minted" (id=3)`, err.Error())

	cause := errors.New("auth: no authenticated caller")
	err = NewUnauthorizedError("caller is not authorized as identity", "alice", cause)
	assert.Equal(t, "UNAUTHORIZED: caller is not authorized as identity (identity=alice): auth: no authenticated caller", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("cli: %w", NewNotFoundError(5))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsUnauthorized(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsAlreadyInitialized(NewAlreadyInitializedError()))
	assert.True(t, IsUnauthorized(NewUnauthorizedError("x", "", nil)))
	assert.True(t, IsNotFound(NewNotFoundError(1)))
	assert.True(t, IsInvalidState(NewInvalidStateError(1, "draft", "verify")))
	assert.True(t, IsStoreCorruption(NewStoreCorruptionError("x", 1)))
}
