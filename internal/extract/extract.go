// Package extract maps raw SKU labels to canonical member names.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Unknown is returned for labels that match no rule.
const Unknown = "UNKNOWN"

// DefaultStripChars are the bracket and decoration characters removed before matching.
const DefaultStripChars = "【】[]()（）「」『』<>《》"

var (
	latinSuffix = regexp.MustCompile(`[A-Z]{2,}$`)
	hanSuffix   = regexp.MustCompile(`\p{Han}{2,4}$`)
)

// Extractor resolves member names from SKU labels. The zero value strips nothing.
type Extractor struct {
	strip *strings.Replacer
}

// New creates an Extractor that removes every rune of stripChars.
func New(stripChars string) *Extractor {
	var pairs []string
	for _, r := range width.Fold.String(stripChars) {
		pairs = append(pairs, string(r), "")
	}
	return &Extractor{strip: strings.NewReplacer(pairs...)}
}

// Extract returns the member name encoded at the end of label.
// A trailing run of uppercase Latin letters wins over a trailing CJK name.
func (e *Extractor) Extract(label string) string {
	s := width.Fold.String(label)
	if e != nil && e.strip != nil {
		s = e.strip.Replace(s)
	}
	s = strings.TrimSpace(s)

	if m := latinSuffix.FindString(s); m != "" {
		return m
	}
	if m := hanSuffix.FindString(s); m != "" {
		return m
	}
	return Unknown
}

// SKU is one raw variant with its stock count.
type SKU struct {
	Label  string
	Stocks int64
}

// Aggregate sums stock per member across all variants.
func (e *Extractor) Aggregate(skus []SKU) map[string]int64 {
	out := make(map[string]int64, len(skus))
	for _, sku := range skus {
		out[e.Extract(sku.Label)] += sku.Stocks
	}
	return out
}
