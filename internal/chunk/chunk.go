// Package chunk splits extracted text into segments small enough for a single
// correction request.
package chunk

import (
	"iter"
	"slices"
	"unicode"

	"github.com/spherical/doc-corrector/internal/domain"
)

// DefaultMaxChars is the chunk size used when the caller passes a non-positive limit.
const DefaultMaxChars = 3000

// All yields the chunks of text lazily, in order. Lengths are counted in
// characters (runes). While the remainder is longer than maxChars it is cut at
// the last newline before the limit, or exactly at the limit when there is none.
// The new remainder is trimmed of surrounding whitespace after every cut.
func All(text string, maxChars int) iter.Seq[domain.TextChunk] {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	return func(yield func(domain.TextChunk) bool) {
		rest := []rune(text)
		index := 0

		for len(rest) > maxChars {
			cut := lastNewline(rest[:maxChars])
			if cut < 0 {
				cut = maxChars
			}

			// cut is 0 only when the text starts with a newline; the empty
			// chunk is still emitted so a non-empty text never yields zero chunks.
			if !yield(domain.TextChunk{Index: index, Content: string(rest[:cut])}) {
				return
			}
			index++

			rest = trimSpace(rest[cut:])
		}

		if len(rest) > 0 {
			yield(domain.TextChunk{Index: index, Content: string(rest)})
		}
	}
}

// Split returns every chunk of text. An empty text yields no chunks.
func Split(text string, maxChars int) []domain.TextChunk {
	return slices.Collect(All(text, maxChars))
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// trimSpace reslices runes without leading and trailing white space.
func trimSpace(runes []rune) []rune {
	start, end := 0, len(runes)
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return runes[start:end]
}
