package aiwash

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Merger repairs sentence segmentation broken by document layout artifacts:
// page numbers and markers splitting a sentence across pages, and bulleted
// lists splitting one sentence across many short lines. It is a pure
// function over an ordered sentence sequence; it performs no I/O.
type Merger struct {
	boilerplate  []*regexp.Regexp
	prefix       *regexp.Regexp
	continuation *regexp.Regexp
}

// NewMerger returns a Merger with the default boilerplate and continuation
// patterns.
func NewMerger() *Merger {
	return &Merger{
		boilerplate:  boilerplateRes,
		prefix:       boilerplatePrefixRe,
		continuation: continuationRe,
	}
}

// MergeFragments runs the default Merger over sentences.
func MergeFragments(sentences []string) []string {
	return NewMerger().Merge(sentences)
}

// Merge scans sentences in order, dropping boilerplate lines, chaining
// incomplete fragments onto an accumulator, and emitting repaired sentences
// once a terminator is reached. An accumulator still open at end of input is
// flushed as-is rather than dropped: a partial merge is recoverable data, a
// silent drop is not.
func (m *Merger) Merge(sentences []string) []string {
	out := make([]string, 0, len(sentences))
	acc := ""

	for _, raw := range sentences {
		s := strings.TrimSpace(raw)
		if s == "" || m.isBoilerplate(s) {
			// Boilerplate never starts nor breaks a chain.
			continue
		}

		if acc == "" {
			if isComplete(s) {
				out = append(out, finalize(s))
			} else {
				acc = s
			}
			continue
		}

		if next, ok := m.continues(s); ok {
			acc = strings.TrimSpace(strings.TrimSuffix(acc, ";")) + " " + next
			if isComplete(acc) {
				out = append(out, finalize(acc))
				acc = ""
			}
			continue
		}

		// Broken chain: emit the open fragment unmerged and start over.
		out = append(out, acc)
		if isComplete(s) {
			out = append(out, finalize(s))
			acc = ""
		} else {
			acc = s
		}
	}

	if acc != "" {
		out = append(out, acc)
	}
	return out
}

func (m *Merger) isBoilerplate(s string) bool {
	for _, re := range m.boilerplate {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// continues reports whether s looks like the continuation of an open chain,
// returning s with any boilerplate prefix stripped.
func (m *Merger) continues(s string) (string, bool) {
	stripped := strings.TrimSpace(m.prefix.ReplaceAllString(s, ""))
	if stripped == "" {
		return "", false
	}
	if startsLower(stripped) || m.continuation.MatchString(stripped) {
		return stripped, true
	}
	return "", false
}

// isComplete reports whether s ends in terminal punctuation. A trailing
// semicolon marks a list item mid-sentence, never a terminator.
func isComplete(s string) bool {
	if strings.HasSuffix(s, ";") {
		return false
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}

// finalize capitalizes the first letter and guarantees terminal punctuation.
func finalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}
	if !isComplete(s) {
		s += "."
	}
	return s
}
