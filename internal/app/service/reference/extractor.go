// Package reference reads bill references out of free-text transfer memos
// and builds the memo payers are asked to use.
package reference

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	dashedPattern  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	spacedPattern  = regexp.MustCompile(`([0-9a-fA-F]{8})\s+([0-9a-fA-F]{4})\s+([0-9a-fA-F]{4})\s+([0-9a-fA-F]{4})\s+([0-9a-fA-F]{12})`)
	compactPattern = regexp.MustCompile(`[0-9A-F]{32}`)

	// numericPrefix matches ids that look like phone numbers or numeric bank codes.
	numericPrefix = regexp.MustCompile(`^[0-9]{8}-[0-9]{4}`)

	stripper = strings.NewReplacer(" ", "", "-", "")
)

// Extract returns the first bill reference found in memo. Strategies run in
// order and the first hit wins:
//
//  1. a dashed 8-4-4-4-12 reference anywhere in the memo
//  2. the same groups separated by whitespace instead of dashes
//  3. after removing spaces and dashes and uppercasing, each 32 hex run left
//     to right, skipping runs whose first twelve characters are all digits
//
// The nil UUID is never returned as a match.
func Extract(memo string) (uuid.UUID, bool) {
	if strings.TrimSpace(memo) == "" {
		return uuid.Nil, false
	}

	if m := dashedPattern.FindString(memo); m != "" {
		if id, ok := parse(m); ok {
			return id, true
		}
	}

	if g := spacedPattern.FindStringSubmatch(memo); g != nil {
		if id, ok := parse(strings.Join(g[1:], "-")); ok {
			return id, true
		}
	}

	normalized := strings.ToUpper(stripper.Replace(memo))
	for _, candidate := range compactPattern.FindAllString(normalized, -1) {
		id, ok := parse(candidate)
		if !ok {
			continue
		}
		if numericPrefix.MatchString(id.String()) {
			continue
		}
		return id, true
	}

	return uuid.Nil, false
}

func parse(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
