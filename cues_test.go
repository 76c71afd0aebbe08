package aiwash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionCues(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"We deployed new models this quarter", true},
		{"The system is in production today", true},
		{"We rolled out recommendations worldwide", true},
		{"We currently use machine learning", true},
		{"We offer consulting services", false},
		{"Artificial intelligence presents opportunities", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasActionCue(tt.text), tt.text)
	}
}

func TestModalCues(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"We may invest further", true},
		{"We plan to adopt these tools", true},
		{"We are exploring opportunities", true},
		{"This happened in the future scenarios we modeled", true},
		{"We deployed the system", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasModalCue(tt.text), tt.text)
	}
}

func TestNumericCues(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"costs fell by 30%", true},
		{"costs fell by 7.5%", true},
		{"we operate 120 fulfillment centers", true},
		{"item 7 of this report", false},
		{"no numbers here", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasNumericCue(tt.text), tt.text)
	}
}

func TestIsBoilerplateLine(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"17", true},
		{"- 42 -", true},
		{"Table of Contents", true},
		{"TABLE OF CONTENTS", true},
		{"..... 12", true},
		{"Our results improved.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isBoilerplateLine(tt.text), tt.text)
	}
}

func TestListDense(t *testing.T) {
	listy := "We offer consulting services including cloud, analytics, and AI solutions, as well as data security, privacy, and compliance offerings."
	assert.True(t, listDense(listy, DefaultListCommaRatio))

	// An operational verb redeems an otherwise listy sentence.
	redeemed := "We deployed services including cloud, analytics, and AI solutions, as well as privacy and compliance offerings."
	assert.False(t, listDense(redeemed, DefaultListCommaRatio))

	// Low comma density stays below the gate threshold.
	sparse := "We provide offerings such as cloud and privacy tooling for enterprise customers around the world"
	assert.False(t, listDense(sparse, DefaultListCommaRatio))
}

func TestListSoft(t *testing.T) {
	assert.True(t, listSoft("offerings such as cloud and privacy tools"))
	assert.False(t, listSoft("offerings for enterprise customers"))
	assert.False(t, listSoft("cloud and privacy tools"))
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 0, tokenCount(""))
	assert.Equal(t, 3, tokenCount("  three  word line "))
}
