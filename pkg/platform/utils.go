// pkg/platform/utils.go
package platform

import (
	"os"
)

// fileExists checks if a path exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// contains checks if a string slice contains a value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func clone(slice []string) []string {
	return append([]string(nil), slice...)
}

// moveFirst moves item to the front, keeping the order of the rest
func moveFirst(slice []string, item string) []string {
	if !contains(slice, item) {
		return slice
	}
	out := make([]string, 0, len(slice))
	out = append(out, item)
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(slice []string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != "" && !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
