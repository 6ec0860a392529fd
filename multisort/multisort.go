// Package multisort sorts a guide slice and carries the same permutation
// over to any number of companion slices.
package multisort

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

var (
	ErrCriterion = errors.New("multisort: unknown criterion")
	ErrLength    = errors.New("multisort: length mismatch")
)

// Criterion selects the ordering of the guide.
type Criterion int

const (
	// Asc sorts ascending. Equal values keep their original order.
	Asc Criterion = iota
	// Desc sorts descending. Equal values keep their original order.
	Desc
	// DAlt alternates between the largest and the smallest remaining value.
	DAlt
)

func (c Criterion) String() string {
	switch c {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	case DAlt:
		return "dalt"
	}
	return fmt.Sprintf("Criterion(%d)", int(c))
}

// ParseCriterion accepts asc, desc or dalt, in any case.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "":
		return Asc, nil
	case "desc":
		return Desc, nil
	case "dalt":
		return DAlt, nil
	}
	return 0, fmt.Errorf("%w %q", ErrCriterion, s)
}

// Indices returns the permutation that sorts guide: element i of the sorted
// guide is guide[perm[i]].
func Indices[K constraints.Ordered](guide []K, c Criterion) ([]int, error) {
	perm := make([]int, len(guide))
	for i := range perm {
		perm[i] = i
	}
	switch c {
	case Asc:
		slices.SortStableFunc(perm, func(a, b int) int { return compare(guide[a], guide[b]) })
	case Desc:
		slices.SortStableFunc(perm, func(a, b int) int { return compare(guide[b], guide[a]) })
	case DAlt:
		slices.SortStableFunc(perm, func(a, b int) int { return compare(guide[a], guide[b]) })
		// Taking from the high end picks the last index among equal maxima,
		// taking from the low end the first among equal minima.
		out := make([]int, 0, len(perm))
		lo, hi := 0, len(perm)-1
		for lo <= hi {
			out = append(out, perm[hi])
			hi--
			if lo <= hi {
				out = append(out, perm[lo])
				lo++
			}
		}
		perm = out
	default:
		return nil, fmt.Errorf("%w %v", ErrCriterion, c)
	}
	return perm, nil
}

// compare orders NaNs first, like slices.Sort.
func compare[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && !bNaN:
		return -1
	case bNaN && !aNaN:
		return 1
	}
	return 0
}

// Apply returns s permuted by perm.
func Apply[V any](perm []int, s []V) ([]V, error) {
	if len(s) != len(perm) {
		return nil, fmt.Errorf("%w: slice of %d for permutation of %d", ErrLength, len(s), len(perm))
	}
	out := make([]V, len(s))
	for i, p := range perm {
		out[i] = s[p]
	}
	return out, nil
}

// Sort returns sorted copies of guide and of every data slice. The inputs
// are left untouched.
func Sort[K constraints.Ordered, V any](guide []K, c Criterion, data ...[]V) ([]K, [][]V, error) {
	if err := checkLengths(len(guide), data); err != nil {
		return nil, nil, err
	}
	perm, err := Indices(guide, c)
	if err != nil {
		return nil, nil, err
	}
	sortedGuide, _ := Apply(perm, guide)
	sorted := make([][]V, len(data))
	for i, d := range data {
		sorted[i], _ = Apply(perm, d)
	}
	return sortedGuide, sorted, nil
}

// SortInPlace permutes every data slice in place, and guide as well when
// includeGuide is set.
func SortInPlace[K constraints.Ordered, V any](guide []K, c Criterion, includeGuide bool, data ...[]V) error {
	if err := checkLengths(len(guide), data); err != nil {
		return err
	}
	perm, err := Indices(guide, c)
	if err != nil {
		return err
	}
	for _, d := range data {
		tmp, _ := Apply(perm, d)
		copy(d, tmp)
	}
	if includeGuide {
		tmp, _ := Apply(perm, guide)
		copy(guide, tmp)
	}
	return nil
}

func checkLengths[V any](n int, data [][]V) error {
	for i, d := range data {
		if len(d) != n {
			return fmt.Errorf("%w: data slice %d has %d elements, guide has %d", ErrLength, i, len(d), n)
		}
	}
	return nil
}
