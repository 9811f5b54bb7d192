package ingest

import "sync"

// SeenSet tracks project ids already processed in the current cycle so a
// listing matched by several skills is upserted once. One instance lives for
// exactly one cycle. Synchronized so skills could fan out without changing
// callers.
type SeenSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[int64]struct{})}
}

// MarkSeen records id and reports whether this was its first observation.
func (s *SeenSet) MarkSeen(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
