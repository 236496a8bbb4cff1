// pkg/backend/listing.go
package backend

import (
	"bufio"
	"strings"
)

// lines returns the trimmed, non-empty lines of out
func lines(out string) []string {
	var result []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

// words returns single-token lines, dropping messages like "package x is not installed"
func words(out string) []string {
	var result []string
	for _, line := range lines(out) {
		if !strings.ContainsAny(line, " \t") {
			result = append(result, line)
		}
	}
	return result
}

// firstFields returns the first whitespace separated field of every line
func firstFields(out string) []string {
	var result []string
	for _, line := range lines(out) {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			result = append(result, fields[0])
		}
	}
	return result
}

// tokens returns every whitespace separated token in out
func tokens(out string) []string {
	return strings.Fields(out)
}

// beforeSep returns the part of each line before sep
func beforeSep(sep string) func(string) []string {
	return func(out string) []string {
		var result []string
		for _, line := range lines(out) {
			name, _, _ := strings.Cut(line, sep)
			if name = strings.TrimSpace(name); name != "" {
				result = append(result, name)
			}
		}
		return result
	}
}

// join returns a Pin that writes name<sep>version as one argument
func join(sep string) func(name, version string) []string {
	return func(name, version string) []string {
		return []string{name + sep + version}
	}
}

// flag returns a Pin that passes the version through a separate flag
func flag(f string) func(name, version string) []string {
	return func(name, version string) []string {
		return []string{name, f, version}
	}
}
