package aiwash

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var multiSpaceRe = regexp.MustCompile(` {2,}`)

// SegmentSentences splits raw document text into sentences: whitespace is
// normalized, then the text is cut after terminal punctuation that is
// followed by whitespace and an uppercase letter or an opening parenthesis.
// This is deliberately conservative; the Merger downstream repairs the
// boundaries that document layout breaks, not this splitter.
func SegmentSentences(text string) []string {
	text = strings.NewReplacer(" ", " ", "\t", " ", "\r\n", "\n").Replace(text)
	text = multiSpaceRe.ReplaceAllString(text, " ")

	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			if cur := strings.TrimSpace(b.String()); cur != "" {
				out = append(out, cur)
			}
			b.Reset()
			continue
		}
		b.WriteRune(r)
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		// Look past the whitespace run for a sentence-opening character.
		j := i + 1
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n') {
			j++
		}
		if j > i+1 && j < len(runes) && (unicode.IsUpper(runes[j]) || runes[j] == '(') {
			if cur := strings.TrimSpace(b.String()); cur != "" {
				out = append(out, cur)
			}
			b.Reset()
			i = j - 1
		}
	}
	if cur := strings.TrimSpace(b.String()); cur != "" {
		out = append(out, cur)
	}
	return out
}

// LoadKeywords reads a keyword file with one term or phrase per line.
// Trailing "#" comments are stripped, surrounding quotes removed, and the
// result is lowercased and deduplicated preserving order.
func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, `"'`)
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}
	return out, nil
}

// FilterSentences keeps only sentences mentioning at least one keyword.
// Single tokens match on word boundaries; multi-word phrases tolerate
// flexible whitespace. Very short and digit-only lines are skipped outright.
func FilterSentences(sentences, keywords []string) []string {
	if len(sentences) == 0 || len(keywords) == 0 {
		return nil
	}
	re := compileKeywordPattern(keywords)

	var out []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) < 4 || isAllDigits(s) {
			continue
		}
		if re.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func compileKeywordPattern(keywords []string) *regexp.Regexp {
	var alts []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		parts := strings.Fields(kw)
		escaped := make([]string, len(parts))
		for i, p := range parts {
			escaped[i] = regexp.QuoteMeta(p)
		}
		alts = append(alts, `\b`+strings.Join(escaped, `\s+`)+`\b`)
	}
	if len(alts) == 0 {
		// Matches nothing.
		return regexp.MustCompile(`\bA\x00\b`)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ExtractSentences is the full extraction pipeline for one document:
// segment, repair fragments, then filter by topic keywords.
func ExtractSentences(text string, keywords []string) []string {
	sentences := SegmentSentences(text)
	merged := MergeFragments(sentences)
	return FilterSentences(merged, keywords)
}
