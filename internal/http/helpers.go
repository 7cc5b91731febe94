package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	"pengeluaran/internal/store"
)

// sanitizeInput trims s and drops control characters other than tab and
// line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func generateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// errorKinds maps domain errors to a status and the text shown in the UI.
// The first match wins.
var errorKinds = []struct {
	targets []error
	status  int
	message string
}{
	{[]error{core.ErrInvalidAmount}, http.StatusUnprocessableEntity, "Jumlah harus berupa angka lebih dari 0"},
	{[]error{core.ErrEmptyDescription}, http.StatusUnprocessableEntity, "Deskripsi tidak boleh kosong"},
	{[]error{core.ErrDescriptionTooLong}, http.StatusUnprocessableEntity, fmt.Sprintf("Deskripsi maksimal %d karakter", core.MaxDescriptionLength)},
	{[]error{core.ErrInvalidCategory}, http.StatusUnprocessableEntity, "Kategori tidak valid"},
	{[]error{core.ErrInvalidDate}, http.StatusUnprocessableEntity, "Tanggal tidak valid"},
	{[]error{filter.ErrInvalidCriteria}, http.StatusBadRequest, "Filter tidak valid"},
	{[]error{store.ErrNotFound, filter.ErrPositionOutOfRange, store.ErrIndexOutOfRange}, http.StatusNotFound, "Pengeluaran tidak ditemukan"},
	{[]error{store.ErrMalformed}, http.StatusInternalServerError, "File data rusak dan tidak dapat dibaca"},
}

func classify(err error) (int, string) {
	for _, k := range errorKinds {
		for _, target := range k.targets {
			if errors.Is(err, target) {
				return k.status, k.message
			}
		}
	}
	return http.StatusInternalServerError, "Terjadi kesalahan, silakan coba lagi"
}

func userMessage(err error) string {
	_, msg := classify(err)
	return msg
}

func statusFor(err error) int {
	status, _ := classify(err)
	return status
}
