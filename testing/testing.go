// Package testing provides helpers shared by the test suites of the
// allocation engines. Block maps are described with pattern strings, one
// character per block: '#' for a block in use and '.' for a free one.
package testing

import (
	"strings"
	"testing"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
	"github.com/stretchr/testify/require"
)

// MapFromPattern builds a BlockMap whose allocation state matches `pattern`.
// It fails the test on any character other than '#' and '.'.
func MapFromPattern(t *testing.T, pattern string) *common.BlockMap {
	m := common.NewBlockMap(uint(len(pattern)))
	for i, cell := range pattern {
		switch cell {
		case '#':
			err := m.MarkRange(blocksim.PhysicalBlock(i), 1)
			require.NoErrorf(t, err, "failed to mark block %d in use", i)
		case '.':
		default:
			t.Fatalf("invalid block map pattern character %q at index %d", cell, i)
		}
	}
	return m
}

// PatternFromMap renders a BlockMap back into the pattern form accepted by
// [MapFromPattern].
func PatternFromMap(m *common.BlockMap) string {
	var builder strings.Builder
	for i := uint(0); i < m.TotalBlocks(); i++ {
		if m.InUse(i) {
			builder.WriteByte('#')
		} else {
			builder.WriteByte('.')
		}
	}
	return builder.String()
}

// PatternFromBitmap renders the raw bitmap returned by
// [blocksim.FileSystem.InUseMap] into pattern form.
func PatternFromBitmap(inUseMap []byte, totalBlocks uint) string {
	var builder strings.Builder
	for i := uint(0); i < totalBlocks; i++ {
		if bitmap.Get(inUseMap, int(i)) {
			builder.WriteByte('#')
		} else {
			builder.WriteByte('.')
		}
	}
	return builder.String()
}

// RequireQueueBlocks asserts that the free queue holds exactly `want`, in
// front-to-back order.
func RequireQueueBlocks(
	t *testing.T, q *common.FreeBlockQueue, want []blocksim.PhysicalBlock,
) {
	require.Equal(t, want, q.Blocks(), "free queue contents differ")
}

// Blocks is shorthand for building the expected []PhysicalBlock of a
// [blocksim.Report] from untyped integers.
func Blocks(ids ...uint) []blocksim.PhysicalBlock {
	blocks := make([]blocksim.PhysicalBlock, len(ids))
	for i, id := range ids {
		blocks[i] = blocksim.PhysicalBlock(id)
	}
	return blocks
}
