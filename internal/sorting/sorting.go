// Package sorting holds the instrumented comparison sorts the optimizer chooses between.
// Each sort counts element comparisons so that runs can be compared independently of
// wall-clock noise.
package sorting

import (
	"slices"
	"time"
)

// Func sorts data in place and returns the number of element comparisons performed.
type Func func(data []int) int64

// Metrics describes one measured run.
type Metrics struct {
	Name        string
	Comparisons int64
	Elapsed     time.Duration
	Sorted      bool
}

// Measure runs fn on a copy of data. data itself is never modified.
func Measure(name string, fn Func, data []int) Metrics {
	work := slices.Clone(data)
	start := time.Now()
	cmp := fn(work)
	elapsed := time.Since(start)
	return Metrics{
		Name:        name,
		Comparisons: cmp,
		Elapsed:     elapsed,
		Sorted:      slices.IsSorted(work),
	}
}

// Bubble is bubble sort with early exit once a pass makes no swaps.
func Bubble(a []int) int64 {
	var cmp int64
	n := len(a)
	for i := 0; i < n-1; i++ {
		swapped := false
		for j := 0; j < n-i-1; j++ {
			cmp++
			if a[j] > a[j+1] {
				a[j], a[j+1] = a[j+1], a[j]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
	return cmp
}

// Insertion is straight insertion sort. Every key probe counts as one comparison.
func Insertion(a []int) int64 {
	var cmp int64
	for i := 1; i < len(a); i++ {
		key := a[i]
		j := i - 1
		for j >= 0 {
			cmp++
			if a[j] <= key {
				break
			}
			a[j+1] = a[j]
			j--
		}
		a[j+1] = key
	}
	return cmp
}

// Merge is top-down merge sort. It is stable.
func Merge(a []int) int64 {
	if len(a) < 2 {
		return 0
	}
	buf := make([]int, len(a))
	return mergeSort(a, buf)
}

func mergeSort(a, buf []int) int64 {
	if len(a) < 2 {
		return 0
	}
	m := len(a) / 2
	cmp := mergeSort(a[:m], buf[:m]) + mergeSort(a[m:], buf[m:])
	copy(buf, a)
	left, right := buf[:m], buf[m:len(a)]
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		cmp++
		if left[i] <= right[j] {
			a[k] = left[i]
			i++
		} else {
			a[k] = right[j]
			j++
		}
		k++
	}
	k += copy(a[k:], left[i:])
	copy(a[k:], right[j:])
	return cmp
}

// Quick is quicksort with Lomuto partitioning around the last element. Sorted and
// reversed inputs are its O(N^2) worst case. Recursion goes into the smaller side only,
// so stack depth stays logarithmic even then.
func Quick(a []int) int64 {
	var cmp int64
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, &cmp)
		if p-lo < hi-p {
			cmp += Quick(a[lo:p])
			lo = p + 1
		} else {
			cmp += Quick(a[p+1 : hi+1])
			hi = p - 1
		}
	}
	return cmp
}

func partition(a []int, lo, hi int, cmp *int64) int {
	pivot := a[hi]
	i := lo - 1
	for j := lo; j < hi; j++ {
		*cmp++
		if a[j] < pivot {
			i++
			a[i], a[j] = a[j], a[i]
		}
	}
	a[i+1], a[hi] = a[hi], a[i+1]
	return i + 1
}
