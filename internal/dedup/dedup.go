package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// SeenURLSet tracks canonical listing URLs within one run. It is created at
// run start and dropped with the run; nothing is persisted between runs.
type SeenURLSet struct {
	seen mapset.Set[string]
}

func NewSeenURLSet() *SeenURLSet {
	return &SeenURLSet{seen: mapset.NewSet[string]()}
}

// IsSeen checks if a URL has already been accepted in this run
func (s *SeenURLSet) IsSeen(url string) bool {
	return s.seen.Contains(url)
}

// MarkSeen records url and reports whether it was new.
func (s *SeenURLSet) MarkSeen(url string) bool {
	return s.seen.Add(url)
}

func (s *SeenURLSet) Len() int {
	return s.seen.Cardinality()
}
