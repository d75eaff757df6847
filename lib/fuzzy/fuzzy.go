// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy ranks candidate strings against a pattern using fzf's
// matching algorithm, with an edit-distance fallback for typos that
// are not subsequences. It backs the "did you mean" hints for unknown
// commands, flags, machine names and driver ids.
package fuzzy

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Match is a candidate that matched the pattern.
type Match struct {
	Text  string
	Score int
}

// fzf's character classes and boundary bonuses are tables filled in by
// Init; without it upper case is never folded and every position
// scores alike.
func init() {
	algo.Init("default")
}

// slabPool recycles fzf's scratch memory across calls.
var slabPool = sync.Pool{
	New: func() any { return util.MakeSlab(100*1024, 2048) },
}

// Score returns fzf's score for pattern against text, or zero when the
// pattern does not match. Matching is case-insensitive.
func Score(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	slab := slabPool.Get().(*util.Slab)
	defer slabPool.Put(slab)

	chars := util.ToChars([]byte(text))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, []rune(strings.ToLower(pattern)), false, slab)
	if result.Start < 0 {
		return 0
	}
	return result.Score
}

// Rank returns the candidates matching pattern, best first. Ties keep
// the candidates' original order.
func Rank(pattern string, candidates []string) []Match {
	var matches []Match
	for _, candidate := range candidates {
		if score := Score(candidate, pattern); score > 0 {
			matches = append(matches, Match{Text: candidate, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Closest returns up to limit of the best-ranked candidate texts.
func Closest(pattern string, candidates []string, limit int) []string {
	matches := Rank(pattern, candidates)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	texts := make([]string, len(matches))
	for i, match := range matches {
		texts[i] = match.Text
	}
	return texts
}

// MaxDistance is the largest edit distance at which Suggest still
// offers a candidate.
const MaxDistance = 3

// Suggest returns up to limit candidates the user most likely meant by
// name. Candidates that fzf matches win, best first, so an
// abbreviation ("insp" for "inspect") is found. When fzf matches
// nothing, candidates within MaxDistance edits are returned, nearest
// first, which catches typos such as "digitalokean".
func Suggest(name string, candidates []string, limit int) []string {
	if ranked := Closest(name, candidates, limit); len(ranked) > 0 {
		return ranked
	}

	type near struct {
		text     string
		distance int
	}
	var nearby []near
	for _, candidate := range candidates {
		if distance := Levenshtein(strings.ToLower(name), strings.ToLower(candidate)); distance <= MaxDistance {
			nearby = append(nearby, near{candidate, distance})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].distance < nearby[j].distance
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	texts := make([]string, len(nearby))
	for i, n := range nearby {
		texts[i] = n.text
	}
	return texts
}

// Levenshtein is the edit distance between a and b in bytes, computed
// one matrix row at a time.
func Levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}

		previous = current
	}

	return previous[len(a)]
}
