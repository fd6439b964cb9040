package usecase

import "strings"

// NormalizeEmail canonicalizes an email address before storage or lookup.
// The domain portion after the last "@" is lower-cased; the local part is
// left untouched because it is case-sensitive per RFC 5321.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
