// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshintel/litingest/internal/domain"
)

func attentionCandidate() Candidate {
	return Candidate{
		Identifiers: domain.Identifiers{ArxivID: "1706.03762"},
		Metadata: domain.Metadata{
			Title: "Attention Is All You Need",
			Year:  2017,
			Authors: []domain.Author{
				{Name: "Ashish Vaswani", Sequence: 1},
				{Name: "Noam Shazeer", Sequence: 2},
			},
		},
	}
}

func TestDeriveLID_MatchesSpecFormat(t *testing.T) {
	lid := DeriveLID(attentionCandidate())
	assert.Regexp(t, `^2017-vaswani-.*$`, lid)
}

func TestDeriveLID_DeterministicOnMetadataNotIdentifier(t *testing.T) {
	withArxiv := attentionCandidate()
	withoutArxiv := attentionCandidate()
	withoutArxiv.Identifiers = domain.Identifiers{}

	assert.Equal(t, DeriveLID(withArxiv), DeriveLID(withoutArxiv),
		"LID must key on normalized (title, surnames, year), not on whichever identifier is present")
}

func TestDeriveLID_DiffersOnDifferentMetadata(t *testing.T) {
	attention := attentionCandidate()
	other := Candidate{Metadata: domain.Metadata{
		Title: "Some Unrelated Title",
		Year:  2019,
		Authors: []domain.Author{{Name: "Jane Doe", Sequence: 1}},
	}}
	assert.NotEqual(t, DeriveLID(attention), DeriveLID(other))
}

func TestDeriveLID_UsesSequenceOrderForFirstAuthor(t *testing.T) {
	c := attentionCandidate()
	// Reorder the slice but keep Sequence values; the first author by
	// sequence should still win, not the first slice element.
	c.Metadata.Authors = []domain.Author{
		{Name: "Noam Shazeer", Sequence: 2},
		{Name: "Ashish Vaswani", Sequence: 1},
	}
	lid := DeriveLID(c)
	assert.Regexp(t, `^2017-vaswani-.*$`, lid)
}

func TestTitleAcronym_SkipsStopwords(t *testing.T) {
	assert.Equal(t, "aayn", titleAcronym("Attention Is All You Need"))
}

func TestCreatesSelfLoop(t *testing.T) {
	assert.True(t, CreatesSelfLoop("lid_1", "lid_1"))
	assert.False(t, CreatesSelfLoop("lid_1", "lid_2"))
	assert.False(t, CreatesSelfLoop("", ""))
}
