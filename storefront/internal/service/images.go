package service

import "strings"

type ImageResolver struct {
	BaseURL     string
	Placeholder string
}

// URL resolves a backend image path. Absolute URLs pass through untouched.
func (r ImageResolver) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return r.Placeholder
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") || strings.HasPrefix(path, "//") {
		return path
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
