// Package finder generates candidate addresses for a person at a
// domain and verifies them in order until one is deliverable.
package finder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonNameChars   = regexp.MustCompile(`[^a-zA-Z\s]`)
	nonDomainChars = regexp.MustCompile(`[^a-z0-9.-]`)
)

// CleanDomain normalizes a mail domain for candidate generation:
// lowercase, a single leading "@" dropped, everything outside
// [a-z0-9.-] stripped. A domain without a dot after cleaning is
// rejected.
func CleanDomain(domain string) (string, error) {
	d := strings.ToLower(domain)
	d = strings.TrimPrefix(d, "@")
	d = nonDomainChars.ReplaceAllString(d, "")
	if !strings.Contains(d, ".") {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	return d, nil
}

// cleanName reduces a human name to lowercase ASCII tokens. Anything
// that is not a letter or whitespace is dropped before splitting.
func cleanName(fullName string) []string {
	cleaned := nonNameChars.ReplaceAllString(fullName, "")
	return strings.Fields(strings.ToLower(cleaned))
}

// GeneratePatterns builds the ranked candidate addresses for fullName
// at an already-cleaned domain. Single-token names produce only the
// bare first-name candidate; duplicates keep their first position.
// An unusable name yields nil.
func GeneratePatterns(fullName, domain string) []string {
	tokens := cleanName(fullName)
	if len(tokens) == 0 {
		return nil
	}

	first := tokens[0]
	var last string
	if len(tokens) > 1 {
		last = tokens[len(tokens)-1]
	}
	fi := first[:1]
	var li string
	if last != "" {
		li = last[:1]
	}

	locals := []string{first}
	if last != "" {
		locals = append(locals,
			last,
			fi+"."+last,
			first+"."+last,
			first+"."+li,
			first+last,
			last+first,
			fi+li,
		)
	}

	seen := make(map[string]struct{}, len(locals))
	patterns := make([]string, 0, len(locals))
	for _, local := range locals {
		addr := local + "@" + domain
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		patterns = append(patterns, addr)
	}
	return patterns
}
