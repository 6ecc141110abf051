// Package slug derives URL-safe identifiers from shop and product names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

const fallback = "product"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	separators   = regexp.MustCompile(`[\s_-]+`)
)

// Generate transliterates the mapped Thai subset, lowercases, drops anything
// outside [a-z0-9 -] and joins words with single hyphens. Unmapped scripts are
// dropped entirely, so such names fall back to "product".
func Generate(text string) string {
	s := transliterate(text)
	s = strings.ToLower(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

// ProductSlug prefixes the name slug with the category slug when a category is given.
func ProductSlug(name, category string) string {
	nameSlug := Generate(name)
	if strings.TrimSpace(category) == "" {
		return nameSlug
	}
	return Generate(category) + "-" + nameSlug
}

func ShopSlug(name, houseNumber string) string {
	return Generate(name) + "-house-" + Generate(houseNumber)
}

// Unique returns base, or base-1, base-2, ... whichever is first absent from
// existing. Matching is exact and case-sensitive. Callers racing on the same base
// can still collide; the unique index on the table is the final guard.
func Unique(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func transliterate(text string) string {
	for _, w := range thaiWords {
		text = strings.ReplaceAll(text, w[0], w[1])
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if latin, ok := thaiChars[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
