package utils

import (
	"os"
	"strings"
)

// AdminEmails returns the configured admin allow-list (ADMIN_EMAILS,
// comma-separated, case-insensitive). Admin status is derived from this list
// at login time; there is no separate admin account table.
func AdminEmails() []string {
	raw := os.Getenv("ADMIN_EMAILS")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		e := strings.ToLower(strings.Trim(strings.TrimSpace(p), `"`))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range AdminEmails() {
		if e == email {
			return true
		}
	}
	return false
}
