// Package pool selects the words eligible for a run.
package pool

import "github.com/verte-zerg/wordmonster/internal/model"

// Shuffler randomizes the order of a word slice without modifying it.
type Shuffler interface {
	Shuffle(words []model.WordPair) []model.WordPair
}

// Build returns the words eligible for mode in a fresh random order.
// An empty result is valid; callers decide whether it can start a run.
func Build(mode model.Mode, words []model.WordPair, mastery model.MasterySet, wrong model.WrongCounts, shuffler Shuffler) []model.WordPair {
	eligible := make([]model.WordPair, 0, len(words))
	for _, w := range words {
		if Eligible(mode, w.Key(), mastery, wrong) {
			eligible = append(eligible, w)
		}
	}
	return shuffler.Shuffle(eligible)
}

// Eligible reports whether key belongs to the pool for mode.
func Eligible(mode model.Mode, key string, mastery model.MasterySet, wrong model.WrongCounts) bool {
	switch mode {
	case model.ModeNormal:
		return !mastery.Has(key)
	case model.ModeReview:
		return mastery.Has(key)
	case model.ModeWrong:
		return wrong[key] >= 1
	default:
		return false
	}
}

// Size counts eligible words for mode without shuffling.
func Size(mode model.Mode, words []model.WordPair, mastery model.MasterySet, wrong model.WrongCounts) int {
	n := 0
	for _, w := range words {
		if Eligible(mode, w.Key(), mastery, wrong) {
			n++
		}
	}
	return n
}
