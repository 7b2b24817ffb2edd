// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citelink

import (
	"strings"

	"github.com/meshintel/litingest/internal/dedup"
)

// titleScore is spec §4.11's composite acceptance score: token-overlap
// (70%) + LCS-ratio (30%), both computed over normalized titles.
func titleScore(a, b string) float64 {
	na, nb := dedup.NormalizeTitle(a), dedup.NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	return 0.7*tokenOverlap(na, nb) + 0.3*lcsRatio(na, nb)
}

// tokenOverlap is the Jaccard-style overlap of two whitespace-tokenized
// strings: |intersection| / |union|.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// lcsRatio is the longest-common-subsequence length of a and b, normalized
// by the longer string's length.
func lcsRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := lcsLength(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(longest) / float64(maxLen)
}

func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// jaroWinkler computes the Jaro-Winkler similarity of a and b, used for
// last-name matching (spec §4.11 "Jaro-Winkler ≥ 0.8").
func jaroWinkler(a, b string) float64 {
	jaro := jaroSimilarity(a, b)
	if jaro <= 0 {
		return jaro
	}
	prefix := 0
	maxPrefix := 4
	for prefix < len(a) && prefix < len(b) && prefix < maxPrefix && a[prefix] == b[prefix] {
		prefix++
	}
	const scalingFactor = 0.1
	return jaro + float64(prefix)*scalingFactor*(1-jaro)
}

func jaroSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	matchDistance := la
	if lb > la {
		matchDistance = lb
	}
	matchDistance = matchDistance/2 - 1
	if matchDistance < 0 {
		matchDistance = 0
	}

	aMatches := make([]bool, la)
	bMatches := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		start := i - matchDistance
		if start < 0 {
			start = 0
		}
		end := i + matchDistance + 1
		if end > lb {
			end = lb
		}
		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}

// lastNameMatchRate reports the fraction of refAuthors' last names that
// match (Jaro-Winkler ≥ jwMin) some last name in candidateAuthors (spec
// §4.11 "last-name match rate ≥ 0.5").
func lastNameMatchRate(refAuthors, candidateAuthors []string, jwMin float64) float64 {
	refNames := dedup.NormalizedLastNames(refAuthors)
	candNames := dedup.NormalizedLastNames(candidateAuthors)
	if len(refNames) == 0 || len(candNames) == 0 {
		return 0
	}
	matched := 0
	for _, rn := range refNames {
		for _, cn := range candNames {
			if jaroWinkler(rn, cn) >= jwMin {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(refNames))
}
