package vault

import (
	"fmt"
	"path"
	"strings"
)

// cleanKey validates a slash-separated vault key and returns its canonical form.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty vault key")
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("invalid vault key: %q", key)
	}
	return cleaned, nil
}
