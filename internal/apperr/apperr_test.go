package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	errSlot := New(Conflict, "SLOT_UNAVAILABLE", "slot taken")
	errPay := WithStatus(PreconditionFailed, "PAYMENT_REQUIRED", "status", http.StatusPaymentRequired)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Invalid("bad date"), http.StatusBadRequest},
		{"state", New(StateError, "", "bad status"), http.StatusBadRequest},
		{"not found", New(NotFound, "", "x"), http.StatusNotFound},
		{"forbidden", New(Forbidden, "", "x"), http.StatusForbidden},
		{"conflict wrapped", fmt.Errorf("book: %w", errSlot), http.StatusConflict},
		{"override", errPay, http.StatusPaymentRequired},
		{"plain error", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsMatchesSentinelThroughWrapping(t *testing.T) {
	errSlot := New(Conflict, "SLOT_UNAVAILABLE", "slot taken")
	wrapped := fmt.Errorf("allocate: %w", errSlot)
	assert.True(t, errors.Is(wrapped, errSlot))
	assert.False(t, errors.Is(wrapped, New(Conflict, "OTHER", "")))
	assert.Equal(t, "SLOT_UNAVAILABLE: slot taken", errSlot.Error())
}
