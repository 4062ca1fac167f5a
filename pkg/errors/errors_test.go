package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotFound, "Announcement not found")

	assert.Equal(t, "Announcement not found", clone.Message)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapAndFromError(t *testing.T) {
	cause := errors.New("socket closed")
	wrapped := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to list announcements")

	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to list announcements: socket closed", wrapped.Error())
	assert.Same(t, wrapped, FromError(wrapped))

	plain := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Nil(t, FromError(nil))
}
