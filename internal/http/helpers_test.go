package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	"pengeluaran/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("add: %w", core.ErrInvalidAmount), http.StatusUnprocessableEntity, "Jumlah harus"},
		{core.ErrDescriptionTooLong, http.StatusUnprocessableEntity, "maksimal"},
		{fmt.Errorf("%w: from", filter.ErrInvalidCriteria), http.StatusBadRequest, "Filter tidak valid"},
		{filter.ErrPositionOutOfRange, http.StatusNotFound, "tidak ditemukan"},
		{fmt.Errorf("delete: %w", store.ErrNotFound), http.StatusNotFound, "tidak ditemukan"},
		{store.ErrMalformed, http.StatusInternalServerError, "File data rusak"},
		{errors.New("disk full"), http.StatusInternalServerError, "Terjadi kesalahan"},
	}
	for _, tt := range tests {
		status, msg := classify(tt.err)
		if status != tt.status || !strings.Contains(msg, tt.message) {
			t.Errorf("classify(%v) = %d %q, want %d containing %q", tt.err, status, msg, tt.status, tt.message)
		}
	}
}

func TestSanitizeInputAndRequestID(t *testing.T) {
	if got := sanitizeInput(" a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
	id := generateRequestID()
	if !strings.HasPrefix(id, "req_") || len(id) != 20 || id == generateRequestID() {
		t.Errorf("generateRequestID() = %q", id)
	}
}
