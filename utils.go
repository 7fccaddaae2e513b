package goconsolidate

import (
	"strings"

	"go.uber.org/zap"
)

// copyInts returns a copy of the passed slice, nil staying nil.
func copyInts(s []int) []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// equalInts reports whether two int slices have the same length and content.
func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// equalStrings reports whether two string slices have the same length and content.
func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// joinURI appends a filename to a base URI, avoiding duplicate separators.
func joinURI(base, name string) string {
	if base == "" {
		return name
	}
	return strings.TrimRight(base, "/") + "/" + name
}

// buildDefaultLogger creates a default logger which commits the debug and
// higher level logs supplemented with the passed context field value.
func buildDefaultLogger(context string) *zap.Logger {
	logger, _ := zap.NewDevelopment()
	logger = logger.With(zap.String("context", context))
	return logger
}
