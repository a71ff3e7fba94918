package service

import "time"

// Pacing holds the wall-clock delays of gameplay. Zero values disable the
// delay, which is what tests use.
type Pacing struct {
	ExplanationDelay  time.Duration // after a single-player answer is revealed
	MatchAdvanceDelay time.Duration // after both match players answered
	TickInterval      time.Duration // one countdown second; 0 disables the ticker
}

func DefaultPacing() Pacing {
	return Pacing{
		ExplanationDelay:  4 * time.Second,
		MatchAdvanceDelay: 3 * time.Second,
		TickInterval:      time.Second,
	}
}

// after runs fn once d has elapsed, or right away when d is zero.
func after(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}
