package business

import (
	"strings"
	"unicode"
)

// CleanTags splits a raw tag string coming from the API into tag tokens.
//
// The API is not consistent about delimiters: when the string contains a
// comma anywhere it is split on commas, otherwise on '#'. Every '*', '#'
// and whitespace character is then stripped from each piece and empty
// pieces are dropped. Order follows the input.
func CleanTags(raw string) []string {
	if raw == "" {
		return nil
	}

	sep := "#"
	if strings.Contains(raw, ",") {
		sep = ","
	}

	var tags []string
	for _, piece := range strings.Split(raw, sep) {
		tag := strings.Map(dropNoise, piece)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// HasTag reports whether tag is one of the normalized tags of raw.
func HasTag(raw, tag string) bool {
	for _, t := range CleanTags(raw) {
		if t == tag {
			return true
		}
	}
	return false
}

// dropNoise removes '*', '#' and whitespace.
func dropNoise(r rune) rune {
	if r == '*' || r == '#' || isSpace(r) {
		return -1
	}
	return r
}

// isSpace is the whitespace set browsers use for tags: Unicode spaces
// plus the byte order mark, without NEL.
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
