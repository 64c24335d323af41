package transport

import (
	"path"
	"strings"
)

// FormIDFromPath derives a form identifier from a navigation path: the last
// non-empty segment ("/join/2" yields "2"). Paths without a usable segment
// report false.
func FormIDFromPath(p string) (string, bool) {
	trimmed := strings.Trim(strings.TrimSpace(p), "/")
	if trimmed == "" {
		return "", false
	}
	id := path.Base(trimmed)
	if id == "." || id == ".." || strings.ContainsAny(id, `\?#`) {
		return "", false
	}
	return id, true
}
