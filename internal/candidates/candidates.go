// Package candidates supplies the ordered subdomain labels an enumeration
// probes.
package candidates

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Default is the built-in candidate list, probed in this order.
var Default = []string{
	"www", "api", "mail", "ftp", "test", "dev", "staging", "blog",
	"shop", "admin", "vpn", "old", "images", "docs", "unclaimed",
}

// Generate returns the labels to probe. A non-empty override replaces the
// built-in list. Labels are lower-cased and de-duplicated keeping the first
// occurrence, so the returned order is stable.
func Generate(override []string) []string {
	labels := normalize(override)
	if len(labels) == 0 {
		labels = normalize(Default)
	}
	return labels
}

func normalize(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.Trim(strings.ToLower(strings.TrimSpace(label)), ".")
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// LoadFile reads one label per line. Blank lines and lines starting with
// '#' are skipped.
func LoadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file: %w", err)
	}
	defer file.Close()

	var labels []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate file: %w", err)
	}

	return labels, nil
}
