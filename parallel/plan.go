package parallel

import (
	"fmt"
	"math"
)

// Schedule is the partition of a rectangle into row bands.
type Schedule struct {
	// Rect is the rectangle being processed.
	Rect Rect

	// Steps is min(MaxDegreeOfParallelism, ceil(area/MinimumPixelsPerTask)).
	Steps int

	// VerticalStep is the number of rows per band, ceil(Height/Steps).
	VerticalStep int
}

// Plan computes the schedule for processing r under s.
func Plan(r Rect, s Settings) (Schedule, error) {
	if r.Empty() {
		return Schedule{}, fmt.Errorf("%w: rectangle %v", ErrInvalidArgument, r)
	}
	if err := s.validate(); err != nil {
		return Schedule{}, err
	}

	maxSteps := ceilDiv(area(r), s.minPixels)
	steps := maxSteps
	if s.maxDegree != Unbounded {
		steps = min(s.maxDegree, maxSteps)
	}
	return Schedule{
		Rect:         r,
		Steps:        steps,
		VerticalStep: ceilDiv(r.Height, steps),
	}, nil
}

// area returns the pixel count, saturating on overflow.
func area(r Rect) int {
	if r.Width > math.MaxInt/r.Height {
		return math.MaxInt
	}
	return r.Width * r.Height
}

// ceilDiv returns ceil(a/b) for a >= 0, b > 0 without overflowing.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// Tasks returns the number of non-empty bands. It is less than Steps when
// rounding leaves trailing steps without rows.
func (p Schedule) Tasks() int {
	if p.VerticalStep == 0 {
		return 0
	}
	return ceilDiv(p.Rect.Height, p.VerticalStep)
}

// Interval returns the rows of task i. The interval is empty when i is at or
// past Tasks.
func (p Schedule) Interval(i int) RowInterval {
	bottom := p.Rect.Bottom()
	start := p.Rect.Top() + i*p.VerticalStep
	if start >= bottom {
		return RowInterval{min: bottom, max: bottom}
	}
	return RowInterval{min: start, max: min(start+p.VerticalStep, bottom)}
}

// Intervals returns every non-empty band in row order.
func (p Schedule) Intervals() []RowInterval {
	out := make([]RowInterval, p.Tasks())
	for i := range out {
		out[i] = p.Interval(i)
	}
	return out
}
