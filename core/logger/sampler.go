package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type ratio struct{ n, d uint64 }

// ratioSampler admits n of every d calls to Allow, deterministically.
// A zero ratio admits everything.
type ratioSampler struct {
	r    atomic.Pointer[ratio]
	seen atomic.Uint64
}

func newRatioSampler(n, d int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(n, d)
	return s
}

func (s *ratioSampler) Set(n, d int) {
	s.seen.Store(0)
	if n <= 0 || d <= 0 {
		s.r.Store(&ratio{})
		return
	}
	s.r.Store(&ratio{n: uint64(min(n, d)), d: uint64(d)})
}

func (s *ratioSampler) Allow() bool {
	r := s.r.Load()
	if r == nil || r.d == 0 {
		return true
	}
	return (s.seen.Add(1)-1)%r.d < r.n
}

// parseRatio reads "n/d", or "d" as shorthand for "1/d". Invalid input yields 0, 0.
func parseRatio(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	num, den, hasSlash := strings.Cut(raw, "/")
	if !hasSlash {
		num, den = "1", raw
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(num))
	d, err2 := strconv.Atoi(strings.TrimSpace(den))
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return 0, 0
	}
	return n, d
}
