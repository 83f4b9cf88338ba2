package language

import "sync"

// Setting is the shared display-language choice of one front-end session.
// Subscribers receive the new value on every change; a subscriber that has
// not drained its channel only ever sees the latest value.
type Setting struct {
	mu      sync.Mutex
	current Code
	subs    map[int]chan Code
	nextID  int
}

// NewSetting returns a Setting holding initial, or Default when initial is
// not a supported language.
func NewSetting(initial Code) *Setting {
	if !initial.Valid() {
		initial = Default
	}
	return &Setting{current: initial, subs: make(map[int]chan Code)}
}

// Current returns the active language.
func (s *Setting) Current() Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set switches to lang. Unsupported values are ignored and reported as false.
func (s *Setting) Set(lang Code) bool {
	if !lang.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != lang {
		s.current = lang
		s.notifyLocked()
	}
	return true
}

// Toggle flips between English and Russian and returns the new value.
func (s *Setting) Toggle() Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.Other()
	s.notifyLocked()
	return s.current
}

// Subscribe registers for change notifications. The returned cancel func
// unregisters and closes the channel; calling it more than once is safe.
func (s *Setting) Subscribe() (<-chan Code, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Code, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Setting) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.current
	}
}
