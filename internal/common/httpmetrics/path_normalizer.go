package httpmetrics

import "strings"

// NormalizePath replaces volatile path segments (UUIDs, numeric IDs)
// with a placeholder so metric label cardinality stays bounded.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if isUUID(seg) || isDigits(seg) {
			segments[i] = "{id}"
		}
	}

	result := strings.Join(segments, "/")
	if result == "" {
		return "/"
	}

	return result
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, r := range s {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		default:
			if !isHexDigit(r) {
				return false
			}
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
