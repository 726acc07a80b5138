// Package reconcile splits two path sets into left-only, right-only and
// common paths.
package reconcile

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// KeySet is anything that exposes its relative paths
type KeySet interface {
	Keys() []string
}

// Keys adapts a plain slice to a KeySet
type Keys []string

// Keys returns the slice itself
func (k Keys) Keys() []string {
	return k
}

// Result holds the three-way classification of two path sets.
// The three slices are pairwise disjoint and each is sorted.
type Result struct {
	LeftOnly  []string
	RightOnly []string
	Common    []string
}

// Total returns the number of distinct paths across both sides
func (r Result) Total() int {
	return len(r.LeftOnly) + len(r.RightOnly) + len(r.Common)
}

// Reconcile classifies the union of both key sets. Input order is irrelevant.
func Reconcile(left, right KeySet) Result {
	l := mapset.NewThreadUnsafeSet(left.Keys()...)
	r := mapset.NewThreadUnsafeSet(right.Keys()...)

	return Result{
		LeftOnly:  sorted(l.Difference(r)),
		RightOnly: sorted(r.Difference(l)),
		Common:    sorted(l.Intersect(r)),
	}
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
