package logging

import "strings"

// RedactEmail keeps the first and last character of the local part.
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "****"
	}
	if len(local) <= 2 {
		return "****@" + domain
	}
	return local[:1] + "****" + local[len(local)-1:] + "@" + domain
}
