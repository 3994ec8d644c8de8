package dice

import (
	"fmt"
	"sync"
)

// ScriptedSource replays a fixed list of die faces. It is used to reproduce
// a known sequence of rolls.
type ScriptedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewScriptedSource returns a Source whose successive Die results are faces,
// each clamped into [1, sides].
func NewScriptedSource(faces ...int) *ScriptedSource {
	return &ScriptedSource{faces: faces}
}

// Intn returns the next scripted face minus one.
//
// Precondition: n > 0 and scripted faces remain; panics otherwise.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.faces) {
		panic(fmt.Sprintf("dice: scripted source exhausted after %d draws", len(s.faces)))
	}
	face := s.faces[s.next]
	s.next++
	return min(max(face, 1), n) - 1
}

// Remaining returns the number of unused scripted faces.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.next
}
