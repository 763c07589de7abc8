package tour

import (
	"fmt"
	"strings"
)

// FallbackPolicy decides how fallback steps take part in navigation.
type FallbackPolicy int

const (
	// FallbackJump advances one step at a time from ordinary steps. Once a
	// fallback step is showing, Next only visits later fallback steps,
	// skipping everything in between, and closes the tour when none is left.
	FallbackJump FallbackPolicy = iota

	// FallbackOnClose keeps fallback steps out of forward navigation. Close on
	// an ordinary step diverts to the first fallback step; Close on a fallback
	// step (or in a tour without one) stops the tour.
	FallbackOnClose
)

// String returns the configuration name of the policy.
func (p FallbackPolicy) String() string {
	switch p {
	case FallbackJump:
		return "jump"
	case FallbackOnClose:
		return "on_close"
	default:
		return fmt.Sprintf("FallbackPolicy(%d)", int(p))
	}
}

// ParseFallbackPolicy parses "jump" or "on_close".
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jump":
		return FallbackJump, nil
	case "on_close", "on-close", "onclose":
		return FallbackOnClose, nil
	default:
		return FallbackJump, fmt.Errorf("unknown fallback policy %q (valid: jump, on_close)", s)
	}
}

// ValidFallbackPolicies returns the accepted configuration names.
func ValidFallbackPolicies() []string {
	return []string{FallbackJump.String(), FallbackOnClose.String()}
}

// nextTarget returns the step Next moves to from i, or NotRunning when Next
// should close the tour.
func (p FallbackPolicy) nextTarget(steps []Step, i int) int {
	switch p {
	case FallbackOnClose:
		for j := i + 1; j < len(steps); j++ {
			if !isFallback(steps, j) {
				return j
			}
		}
		return NotRunning
	default:
		if !isFallback(steps, i) {
			if i+1 < len(steps) {
				return i + 1
			}
			return NotRunning
		}
		for j := i + 1; j < len(steps); j++ {
			if isFallback(steps, j) {
				return j
			}
		}
		return NotRunning
	}
}

// closeTarget returns the step Close diverts to from i, or NotRunning when
// Close should stop the tour.
func (p FallbackPolicy) closeTarget(steps []Step, i int) int {
	if p != FallbackOnClose || isFallback(steps, i) {
		return NotRunning
	}
	for j := 1; j < len(steps); j++ {
		if isFallback(steps, j) {
			return j
		}
	}
	return NotRunning
}

// isFallback reports whether step i acts as a fallback step. The first step
// is never one: there is nothing before it to skip.
func isFallback(steps []Step, i int) bool {
	return i > 0 && steps[i].Fallback
}
