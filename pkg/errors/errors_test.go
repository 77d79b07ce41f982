package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorHidesCause(t *testing.T) {
	cause := stdErrors.New("pq: connection refused")
	appErr := FromError(cause)

	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestCloneKeepsStatus(t *testing.T) {
	clone := Clone(ErrNotFound, "installment not found")

	assert.Equal(t, "installment not found", clone.Message)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, IsStatus(clone, http.StatusNotFound))
	assert.False(t, IsStatus(cause(), http.StatusNotFound))
}

func cause() error { return stdErrors.New("plain") }
