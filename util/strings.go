package util

// Truncate shortens s to at most bound runes, never splitting a rune.
func Truncate(s string, bound int) string {
	if bound <= 0 {
		return ""
	}

	pos := 0
	for i := range s {
		if pos == bound {
			return s[:i]
		}
		pos++
	}

	return s
}

// Elide is Truncate with a trailing marker when anything was cut.
func Elide(s string, bound int) string {
	cut := Truncate(s, bound)
	if cut == s {
		return s
	}

	return cut + "..."
}
