// Package interval implements real intervals written in bracket notation,
// such as [0, 1), (2.5, 3] or [-1e3, 1e3].
package interval

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	ErrSyntax   = errors.New("interval: invalid syntax")
	ErrDisjoint = errors.New("interval: union of disjoint intervals")
)

const number = `[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`

var intervalRe = regexp.MustCompile(`^\s*([\[(])\s*(` + number + `)\s*,\s*(` + number + `)\s*([\])])\s*$`)

// Interval is a connected subset of the real line. Begin <= End always holds.
type Interval struct {
	Begin, End              float64
	LeftClosed, RightClosed bool
}

// New builds an interval, swapping the endpoints (and their closedness)
// when begin > end.
func New(begin, end float64, leftClosed, rightClosed bool) Interval {
	if begin > end {
		begin, end = end, begin
		leftClosed, rightClosed = rightClosed, leftClosed
	}
	return Interval{Begin: begin, End: end, LeftClosed: leftClosed, RightClosed: rightClosed}
}

// Parse reads an interval such as "[0, 1)".
func Parse(s string) (Interval, error) {
	m := intervalRe.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	begin, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}
	end, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}
	return New(begin, end, m[1] == "[", m[4] == "]"), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Interval {
	iv, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return iv
}

// Contains reports whether v lies in the interval.
func (iv Interval) Contains(v float64) bool {
	switch {
	case v == iv.Begin && v == iv.End:
		return iv.LeftClosed && iv.RightClosed
	case v == iv.Begin:
		return iv.LeftClosed
	case v == iv.End:
		return iv.RightClosed
	}
	return iv.Begin < v && v < iv.End
}

// Len is End - Begin.
func (iv Interval) Len() float64 { return iv.End - iv.Begin }

// IsEmpty reports whether the interval holds no point, as in (1, 1).
func (iv Interval) IsEmpty() bool {
	return iv.Begin == iv.End && !(iv.LeftClosed && iv.RightClosed)
}

// Equal compares endpoints and closedness.
func (iv Interval) Equal(o Interval) bool {
	return iv == o
}

// Union joins two intervals that overlap or meet at a shared endpoint that
// at least one of them includes.
func (iv Interval) Union(o Interval) (Interval, error) {
	a, b := iv, o
	if b.Begin < a.Begin || (b.Begin == a.Begin && b.LeftClosed) {
		a, b = b, a
	}
	if a.End < b.Begin || (a.End == b.Begin && !a.RightClosed && !b.LeftClosed) {
		return Interval{}, fmt.Errorf("%w: %v and %v", ErrDisjoint, iv, o)
	}

	out := Interval{Begin: a.Begin, LeftClosed: a.LeftClosed}
	switch {
	case a.End > b.End:
		out.End, out.RightClosed = a.End, a.RightClosed
	case b.End > a.End:
		out.End, out.RightClosed = b.End, b.RightClosed
	default:
		out.End, out.RightClosed = a.End, a.RightClosed || b.RightClosed
	}
	return out, nil
}

// Intersect returns the common part of two intervals. ok is false when they
// share no point.
func (iv Interval) Intersect(o Interval) (Interval, bool) {
	out := Interval{}
	switch {
	case iv.Begin > o.Begin:
		out.Begin, out.LeftClosed = iv.Begin, iv.LeftClosed
	case o.Begin > iv.Begin:
		out.Begin, out.LeftClosed = o.Begin, o.LeftClosed
	default:
		out.Begin, out.LeftClosed = iv.Begin, iv.LeftClosed && o.LeftClosed
	}
	switch {
	case iv.End < o.End:
		out.End, out.RightClosed = iv.End, iv.RightClosed
	case o.End < iv.End:
		out.End, out.RightClosed = o.End, o.RightClosed
	default:
		out.End, out.RightClosed = iv.End, iv.RightClosed && o.RightClosed
	}
	if out.Begin > out.End || out.IsEmpty() {
		return Interval{}, false
	}
	return out, true
}

// Clamp returns the point of a closed version of the interval nearest to v.
func (iv Interval) Clamp(v float64) float64 {
	return math.Min(math.Max(v, iv.Begin), iv.End)
}

// String formats the interval in bracket notation.
func (iv Interval) String() string {
	open, closing := "(", ")"
	if iv.LeftClosed {
		open = "["
	}
	if iv.RightClosed {
		closing = "]"
	}
	return open + strconv.FormatFloat(iv.Begin, 'g', -1, 64) + ", " + strconv.FormatFloat(iv.End, 'g', -1, 64) + closing
}
