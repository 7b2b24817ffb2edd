// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleScore_IdenticalTitlesScoreHigh(t *testing.T) {
	score := titleScore("Attention Is All You Need", "Attention is all you need")
	assert.Greater(t, score, 0.9)
}

func TestTitleScore_UnrelatedTitlesScoreLow(t *testing.T) {
	score := titleScore("Attention Is All You Need", "A Survey of Deep Reinforcement Learning")
	assert.Less(t, score, 0.3)
}

func TestTitleScore_EmptyInputsScoreZero(t *testing.T) {
	assert.Equal(t, 0.0, titleScore("", "Something"))
	assert.Equal(t, 0.0, titleScore("Something", ""))
}

func TestJaroWinkler_IdenticalStringsScoreOne(t *testing.T) {
	assert.Equal(t, 1.0, jaroWinkler("vaswani", "vaswani"))
}

func TestJaroWinkler_CloseMisspellingScoresHigh(t *testing.T) {
	assert.Greater(t, jaroWinkler("vaswani", "vaswni"), 0.85)
}

func TestJaroWinkler_UnrelatedStringsScoreLow(t *testing.T) {
	assert.Less(t, jaroWinkler("vaswani", "goodfellow"), 0.6)
}

func TestLastNameMatchRate_PartialOverlap(t *testing.T) {
	rate := lastNameMatchRate(
		[]string{"Ashish Vaswani", "Noam Shazeer", "Niki Parmar"},
		[]string{"Ashish Vaswani", "Noam Shazeer"},
		0.8,
	)
	assert.InDelta(t, 2.0/3.0, rate, 0.01)
}

func TestLastNameMatchRate_NoAuthorsScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, lastNameMatchRate(nil, []string{"Ashish Vaswani"}, 0.8))
	assert.Equal(t, 0.0, lastNameMatchRate([]string{"Ashish Vaswani"}, nil, 0.8))
}
