package text

import (
	"strings"
)

// defaultSeparators are tried in order: paragraph breaks first, then line
// breaks, then word boundaries, then hard character cuts as the last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunker splits plain text into overlapping, character-bounded chunks.
// Splitting prefers natural boundaries (paragraphs, lines, words) and only
// falls back to mid-word cuts when a single run of text has no separators
// at all. Same input and parameters always produce the same chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split returns the chunk sequence for text. Empty or whitespace-only input
// yields an empty slice; callers decide whether that is an error.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, defaultSeparators)
}

func (c *Chunker) split(text string, separators []string) []string {
	// Pick the first separator that actually occurs in this text. The empty
	// separator always matches and splits into single characters.
	sep := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			remaining = separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		for _, part := range strings.Split(text, sep) {
			if part != "" {
				splits = append(splits, part)
			}
		}
	}

	var chunks []string
	var fitting []string

	flush := func() {
		if len(fitting) > 0 {
			chunks = append(chunks, c.merge(fitting, sep)...)
			fitting = nil
		}
	}

	for _, piece := range splits {
		if len(piece) < c.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// Oversized piece: emit what fits so far, then recurse with the
		// finer-grained separators.
		flush()
		if len(remaining) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, c.split(piece, remaining)...)
		}
	}
	flush()

	return chunks
}

// merge greedily packs consecutive splits into chunks of at most chunkSize
// characters, carrying a tail of roughly chunkOverlap characters into the
// next chunk.
func (c *Chunker) merge(splits []string, sep string) []string {
	var chunks []string
	var window []string
	total := 0

	sepLen := len(sep)

	joinWindow := func() string {
		return strings.TrimSpace(strings.Join(window, sep))
	}

	for _, piece := range splits {
		pieceLen := len(piece)
		if len(window) > 0 && total+pieceLen+sepLen > c.chunkSize {
			if doc := joinWindow(); doc != "" {
				chunks = append(chunks, doc)
			}
			// Drop from the front until the retained tail fits the overlap
			// budget and leaves room for the incoming piece.
			for len(window) > 0 &&
				(total > c.chunkOverlap || total+pieceLen+sepLen > c.chunkSize) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen
		if len(window) > 1 {
			total += sepLen
		}
	}

	if doc := joinWindow(); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}
