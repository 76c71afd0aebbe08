package aiwash

import (
	"regexp"
	"strings"
)

// Lexical cue banks. The patterns mirror the vocabulary that separates the
// three classes in 10-K disclosure language: operational verbs and numbers
// mark deployed capability, modal/future phrasing marks intent, and listy
// connectives over category terms mark boilerplate enumerations.
var (
	actionCueRe = regexp.MustCompile(`(?i)\b(launch(?:ed|es)?|deploy(?:ed|ing|s)?|operat(?:e|es|ing)|run(?:s|ning)?|built|build(?:s|ing)?|appl(?:y|ies|ied|ying)|implement(?:ed|ing|s)?|us(?:e|es|ing)|serv(?:e|es|ing)|support(?:s|ing)?|deliver(?:ed|ing|s)?|improv(?:e|ed|es|ing)|optimiz(?:e|es|ed|ing)|recommend(?:s|ing)?|develop(?:ed|ing|s)?|embed(?:ded)?|reduced|increased|rolled\s+out|in\s+production|operational|currently\s+use)\b`)

	modalCueRe = regexp.MustCompile(`(?i)\b(may|might|could|will|would|should|plan(?:s|ned)?\s+to|intend(?:s|ed)?\s+to|aims?\s+to|expect(?:s|ed)?\s+to|anticipate|seek(?:s|ing)?|hope\s+to|explor(?:e|ing)|evaluat(?:e|ing)|going\s+to|in\s+the\s+future)\b`)

	numericCueRe = regexp.MustCompile(`\b\d+(?:\.\d+)?%|\b\d{2,}\b`)

	listTriggerRe = regexp.MustCompile(`(?i)\b(including|such\s+as|as\s+well\s+as|among\s+other|and\s+other)\b`)

	categoryTermRe = regexp.MustCompile(`(?i)\b(internet|e-?commerce|web\s+services|devices|advertis(?:ing|ement)s?|privacy|data\s+(?:protection|security)|tax(?:es)?|employment|antitrust|tariffs?|compliance|cybersecurity|robotics|virtual\s+reality|blockchain|iot|cloud|edge\s+computing)\b`)
)

// Layout boilerplate: page numbers, page markers like "- 12 -", table of
// contents headings, and dot leaders. These lines are artifacts of document
// layout, never content.
var boilerplateRes = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[-\x{2013}\x{2014}]\s*\d+\s*[-\x{2013}\x{2014}]$`),
	regexp.MustCompile(`(?i)^table\s+of\s+contents$`),
	regexp.MustCompile(`^\.{3,}\s*\d*$`),
}

// boilerplatePrefixRe strips a page artifact glued to the front of a
// continuation fragment, e.g. "- 12 - and provides" or "12 continued text".
var boilerplatePrefixRe = regexp.MustCompile(`^(?:[-\x{2013}\x{2014}]\s*\d+\s*[-\x{2013}\x{2014}]|\d+)\s+`)

// continuationRe matches pronoun-plus-auxiliary openings that signal a
// fragment continuing the previous sentence despite its capitalization.
var continuationRe = regexp.MustCompile(`(?i)^(it|we|they|which|that|this|these|those|and|or|but)\s+(is|are|was|were|has|have|had|will|may|can|could|also)\b`)

func hasActionCue(text string) bool  { return actionCueRe.MatchString(text) }
func hasModalCue(text string) bool   { return modalCueRe.MatchString(text) }
func hasNumericCue(text string) bool { return numericCueRe.MatchString(text) }

func tokenCount(text string) int { return len(strings.Fields(text)) }

func isBoilerplateLine(text string) bool {
	for _, re := range boilerplateRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// listDense is the hard listy heuristic used by the Stage-0 gate: a listy
// connective over category terms at sufficient comma density, with no
// operational verb and no numeric token to redeem it.
func listDense(text string, commaRatio float64) bool {
	if hasActionCue(text) || hasNumericCue(text) {
		return false
	}
	if !listTriggerRe.MatchString(text) || !categoryTermRe.MatchString(text) {
		return false
	}
	tokens := tokenCount(text)
	if tokens == 0 {
		return false
	}
	return float64(strings.Count(text, ","))/float64(tokens) >= commaRatio
}

// listSoft is the weaker variant consulted by the Irrelevant score boost:
// listy shape without the density requirement.
func listSoft(text string) bool {
	return listTriggerRe.MatchString(text) && categoryTermRe.MatchString(text)
}
