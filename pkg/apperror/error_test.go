package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("submit: %w", New(http.StatusInternalServerError, "An error occurred", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "submit: An error occurred", err.Error())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusOf(Unauthorized("login required")))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(TooManyRequests("slow down")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}
