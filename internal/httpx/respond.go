package httpx

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindInvalidInput, apperr.KindEmptyCart, apperr.KindInsufficientInventory, apperr.KindInvalidTransition:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps the error kind to a status. Internal details are logged,
// never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(apperr.KindOf(err))
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, code, map[string]string{"error": apperr.Message(err)})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.KindInvalidInput, "invalid json")
	}
	return nil
}

// parseQuantity accepts a JSON number or numeric string. Absent means def.
func parseQuantity(raw json.RawMessage, def int) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, badQuantity()
		}
	} else {
		s = string(raw)
	}
	return parseQuantityString(s, def)
}

// quantityMissing reports an absent, null or blank quantity.
func quantityMissing(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func parseQuantityString(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badQuantity()
	}
	return n, nil
}

func badQuantity() error {
	return apperr.New(apperr.KindInvalidInput, "quantity must be a whole number")
}

func parsePage(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, apperr.New(apperr.KindInvalidInput, "limit must be a number")
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, apperr.New(apperr.KindInvalidInput, "offset must be a number")
		}
	}
	return limit, offset, nil
}
