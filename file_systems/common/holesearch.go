package common

import (
	"fmt"
	"strings"

	"github.com/dargueta/blocksim"
)

// SearchStrategy selects the algorithm a [HoleSearch] uses to pick the hole
// a contiguous run is carved from.
type SearchStrategy int

const (
	// FirstFit picks the earliest hole big enough for the request.
	FirstFit SearchStrategy = iota
	// BestFit picks the smallest hole big enough for the request; among
	// equally small holes the earliest wins.
	BestFit
	// WorstFit picks the largest hole big enough for the request; among
	// equally large holes the earliest wins.
	WorstFit
	// NextFit behaves like FirstFit but resumes scanning where the previous
	// successful search left off, wrapping around the end of the device.
	NextFit
)

func (s SearchStrategy) String() string {
	switch s {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	case WorstFit:
		return "worst-fit"
	case NextFit:
		return "next-fit"
	}
	return fmt.Sprintf("SearchStrategy(%d)", int(s))
}

// ParseSearchStrategy converts a strategy name such as "best-fit" into its
// [SearchStrategy] value. Case is ignored.
func ParseSearchStrategy(name string) (SearchStrategy, error) {
	switch strings.ToLower(name) {
	case "first-fit", "first":
		return FirstFit, nil
	case "best-fit", "best":
		return BestFit, nil
	case "worst-fit", "worst":
		return WorstFit, nil
	case "next-fit", "next":
		return NextFit, nil
	}
	return FirstFit, blocksim.ErrInvalidArgument.WithMessage(
		fmt.Sprintf("unknown search strategy %q", name))
}

// HoleSearch finds free runs in a [BlockMap] using a fixed strategy. The
// next-fit cursor lives here, so every engine instance owning its own
// HoleSearch gets an independent cursor.
type HoleSearch struct {
	Strategy SearchStrategy
	cursor   uint
}

// NewHoleSearch creates a hole search for the given strategy with the
// next-fit cursor at block 0.
func NewHoleSearch(strategy SearchStrategy) *HoleSearch {
	return &HoleSearch{Strategy: strategy}
}

// FindRun returns the first block of a free run of `size` blocks chosen
// according to the search strategy, or false if no hole is big enough. The
// map is never modified; marking the run used is the caller's job. Runs
// never wrap around the end of the device.
//
// A zero-size request always succeeds and returns block 0.
func (h *HoleSearch) FindRun(m *BlockMap, size uint) (blocksim.PhysicalBlock, bool) {
	if size == 0 {
		return 0, true
	}
	if size > m.TotalBlocks() {
		return 0, false
	}

	switch h.Strategy {
	case BestFit:
		return bestFit(m, size)
	case WorstFit:
		return worstFit(m, size)
	case NextFit:
		start, ok := nextFit(m, size, h.cursor)
		if ok {
			h.cursor = (uint(start) + size) % m.TotalBlocks()
		}
		return start, ok
	default:
		return firstFit(m, size)
	}
}

// firstFit scans for the earliest run of `size` consecutive free blocks.
func firstFit(m *BlockMap, size uint) (blocksim.PhysicalBlock, bool) {
	runLength := uint(0)
	for i := uint(0); i < m.TotalBlocks(); i++ {
		if m.InUse(i) {
			runLength = 0
			continue
		}
		runLength++
		if runLength == size {
			return blocksim.PhysicalBlock(i - size + 1), true
		}
	}
	return 0, false
}

// bestFit scans every hole and picks the smallest one that still fits the
// request. The strict `<` comparison makes the earliest hole win ties.
func bestFit(m *BlockMap, size uint) (blocksim.PhysicalBlock, bool) {
	bestStart := uint(0)
	bestLength := uint(0)
	found := false

	forEachHole(m, func(start, length uint) {
		if length >= size && (!found || length < bestLength) {
			bestStart = start
			bestLength = length
			found = true
		}
	})
	return blocksim.PhysicalBlock(bestStart), found
}

// worstFit scans every hole and picks the largest one that fits the request.
// The strict `>` comparison makes the earliest hole win ties.
func worstFit(m *BlockMap, size uint) (blocksim.PhysicalBlock, bool) {
	worstStart := uint(0)
	worstLength := uint(0)
	found := false

	forEachHole(m, func(start, length uint) {
		if length >= size && (!found || length > worstLength) {
			worstStart = start
			worstLength = length
			found = true
		}
	})
	return blocksim.PhysicalBlock(worstStart), found
}

// nextFit tries every start position beginning at `cursor` and wrapping
// modulo the device size, returning the first where a run of `size` free
// blocks fits without running off the end of the device.
func nextFit(m *BlockMap, size, cursor uint) (blocksim.PhysicalBlock, bool) {
	total := m.TotalBlocks()
	for i := uint(0); i < total; i++ {
		start := (cursor + i) % total
		if uint(start)+size > total {
			continue
		}
		if m.HasFreeRange(blocksim.PhysicalBlock(start), size) {
			return blocksim.PhysicalBlock(start), true
		}
	}
	return 0, false
}

// forEachHole calls `visit` once per maximal free run, in increasing block
// order, with the run's start index and length.
func forEachHole(m *BlockMap, visit func(start, length uint)) {
	start := uint(0)
	length := uint(0)

	for i := uint(0); i < m.TotalBlocks(); i++ {
		if m.InUse(i) {
			if length > 0 {
				visit(start, length)
				length = 0
			}
			continue
		}
		if length == 0 {
			start = i
		}
		length++
	}
	if length > 0 {
		visit(start, length)
	}
}
