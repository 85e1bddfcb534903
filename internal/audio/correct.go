package audio

import (
	"regexp"
	"strings"
)

// Corrector applies a best-effort, fully local cleanup pass over raw
// transcripts. The rule order is fixed: whitespace normalization, common
// speech-to-text fixes, terminal punctuation, sentence capitalization.
// Correct never fails; when nothing applies it returns the input trimmed.
type Corrector struct{}

func NewCorrector() *Corrector { return &Corrector{} }

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	loneIRe      = regexp.MustCompile(`(?i)\bi\b`)
	fillerRes    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\buh\b`),
		regexp.MustCompile(`(?i)\bum\b`),
		regexp.MustCompile(`(?i)\ber\b`),
	}
	terminalPunctRe = regexp.MustCompile(`[.!?]$`)
	sentenceStartRe = regexp.MustCompile(`(?m)(^|[.!?][ \t]+)([a-z])`)
)

// Correct returns the cleaned transcript. Known-crude heuristics (the blind
// lowercase i replacement in particular) are kept as-is.
func (c *Corrector) Correct(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	text := c.normalizeWhitespace(raw)
	text = c.fixTranscriptionErrors(text)
	text = c.improvePunctuation(text)
	text = c.capitalizeSentences(text)

	return strings.TrimSpace(text)
}

func (c *Corrector) normalizeWhitespace(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

func (c *Corrector) fixTranscriptionErrors(text string) string {
	text = loneIRe.ReplaceAllString(text, "I")
	for _, re := range fillerRes {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

func (c *Corrector) improvePunctuation(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		// Only lines long enough to look like complete sentences get a period.
		if line != "" && !terminalPunctRe.MatchString(line) && len(line) > 10 {
			line += "."
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (c *Corrector) capitalizeSentences(text string) string {
	text = sentenceStartRe.ReplaceAllStringFunc(text, func(m string) string {
		return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
	})
	if text != "" && text[0] >= 'a' && text[0] <= 'z' {
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	return text
}
