package inventory

import (
	"regexp"
	"strings"
)

var serialPrefix = regexp.MustCompile(`(?i)^\s*(?:serial\s*number|serial\s*no\.?|serial\s*#|s/?n|service\s*tag|серийный\s*номер|серийный)(?:\s*[:#\-]\s*|\s+)`)

// CleanSerial strips label prefixes such as "S/N:" or "Serial Number" from a raw serial.
func CleanSerial(raw string) string {
	return strings.TrimSpace(serialPrefix.ReplaceAllString(raw, ""))
}

// SerialVariants returns lookup variants of serial, original first.
// Label photos often confuse the letter O with the digit 0.
func SerialVariants(serial string) []string {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil
	}

	candidates := []string{
		serial,
		strings.ToUpper(serial),
		strings.ReplaceAll(strings.ToUpper(serial), "O", "0"),
		strings.ReplaceAll(strings.ToUpper(serial), "0", "O"),
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
