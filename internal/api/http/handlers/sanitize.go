package handlers

import "strings"

// Input sanitizers applied before payloads reach the services. Destructive
// normalization stays out; these only canonicalize identifiers.

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}

func sanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sanitizePhoneNumber(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeVehicleNumber strips separators and upper-cases so "ts 09 ab 1234"
// and "TS09AB1234" register as the same plate.
func sanitizeVehicleNumber(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
