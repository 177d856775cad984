// Package progress tracks mastered words and wrong-answer counts.
//
// The Store keeps both records in memory and writes through a Persister after
// every mutation. Persistence is best effort: read failures degrade to empty
// records and write failures are logged, never returned.
package progress

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// Persister loads and saves the two progress records independently.
type Persister interface {
	LoadMastery(ctx context.Context) ([]string, error)
	LoadWrongCounts(ctx context.Context) (map[string]int, error)
	SaveMastery(ctx context.Context, keys []string) error
	SaveWrongCounts(ctx context.Context, counts map[string]int) error
}

// Store holds learner progress. It is not safe for concurrent use.
type Store struct {
	persister Persister
	log       zerolog.Logger
	mastery   model.MasterySet
	wrong     model.WrongCounts
}

// Load reads both records through p. A record that cannot be read starts empty.
func Load(ctx context.Context, p Persister, logger zerolog.Logger) *Store {
	s := &Store{
		persister: p,
		log:       logger,
		mastery:   model.MasterySet{},
		wrong:     model.WrongCounts{},
	}

	keys, err := p.LoadMastery(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("mastery record unreadable; starting empty")
	} else {
		for _, k := range keys {
			if k = model.Key(k); k != "" {
				s.mastery[k] = struct{}{}
			}
		}
	}

	counts, err := p.LoadWrongCounts(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("wrong-count record unreadable; starting empty")
	} else {
		for k, n := range counts {
			k = model.Key(k)
			if k == "" || n <= 0 {
				continue
			}
			s.wrong[k] += n
		}
	}
	return s
}

// Snapshot returns copies of the mastery set and wrong counts.
func (s *Store) Snapshot() (model.MasterySet, model.WrongCounts) {
	mastery := make(model.MasterySet, len(s.mastery))
	for k := range s.mastery {
		mastery[k] = struct{}{}
	}
	wrong := make(model.WrongCounts, len(s.wrong))
	for k, n := range s.wrong {
		wrong[k] = n
	}
	return mastery, wrong
}

// SaveMastery replaces the mastery set and persists it.
func (s *Store) SaveMastery(set model.MasterySet) {
	s.mastery = make(model.MasterySet, len(set))
	for k := range set {
		s.mastery[k] = struct{}{}
	}
	s.flushMastery()
}

// SaveWrongCounts replaces the wrong counts and persists them.
func (s *Store) SaveWrongCounts(counts model.WrongCounts) {
	s.wrong = make(model.WrongCounts, len(counts))
	for k, n := range counts {
		if n > 0 {
			s.wrong[k] = n
		}
	}
	s.flushWrongCounts()
}

// MarkMastered records w as mastered. Marking an already mastered word is a no-op.
func (s *Store) MarkMastered(w model.WordPair) {
	key := w.Key()
	if s.mastery.Has(key) {
		return
	}
	s.mastery[key] = struct{}{}
	s.flushMastery()
}

// IncrementWrong adds one wrong attempt for w.
func (s *Store) IncrementWrong(w model.WordPair) {
	s.wrong[w.Key()]++
	s.flushWrongCounts()
}

// ResetMastery clears the mastery set. Wrong counts are kept.
func (s *Store) ResetMastery() {
	s.mastery = model.MasterySet{}
	s.flushMastery()
}

// IsMastered reports whether key is in the mastery set.
func (s *Store) IsMastered(key string) bool {
	return s.mastery.Has(key)
}

// WrongCount returns the wrong attempts recorded for key.
func (s *Store) WrongCount(key string) int {
	return s.wrong[key]
}

// MasteredCount returns how many words of words are mastered.
func (s *Store) MasteredCount(words []model.WordPair) int {
	n := 0
	for _, w := range words {
		if s.mastery.Has(w.Key()) {
			n++
		}
	}
	return n
}

func (s *Store) flushMastery() {
	keys := make([]string, 0, len(s.mastery))
	for k := range s.mastery {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := s.persister.SaveMastery(context.Background(), keys); err != nil {
		s.log.Error().Err(err).Msg("failed to save mastery")
	}
}

func (s *Store) flushWrongCounts() {
	counts := make(map[string]int, len(s.wrong))
	for k, n := range s.wrong {
		counts[k] = n
	}
	if err := s.persister.SaveWrongCounts(context.Background(), counts); err != nil {
		s.log.Error().Err(err).Msg("failed to save wrong counts")
	}
}
