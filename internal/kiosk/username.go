package kiosk

import "strings"

// NormalizeUsername strips line breaks and surrounding space and upper-cases
// the name. Usernames become file names, so separators and dot names are refused.
func NormalizeUsername(raw string) (string, error) {
	name := strings.NewReplacer("\r", "", "\n", "").Replace(raw)
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return "", ErrEmptyUsername
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidUsername
	}
	return name, nil
}
