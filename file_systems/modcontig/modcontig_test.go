package modcontig_test

import (
	"errors"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
	"github.com/dargueta/blocksim/file_systems/modcontig"
	blocksimtest "github.com/dargueta/blocksim/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inUsePattern(fs blocksim.FileSystem) string {
	return blocksimtest.PatternFromBitmap(fs.InUseMap(), fs.TotalBlocks())
}

func TestModContig__Create__SingleInitialRun(t *testing.T) {
	fs := modcontig.New(10, common.FirstFit)

	report, err := fs.Create("a", 3)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(0, 1, 2), report.Allocated)
	assert.Equal(t, "###.......", inUsePattern(fs))
}

func TestModContig__Create__OutOfSpaceFailsWithoutMutation(t *testing.T) {
	// Six free blocks, but split into holes of 3 and 3: an initial run of 4
	// must fail even though enough blocks exist in total.
	fs := modcontig.New(10, common.FirstFit)
	_, err := fs.Create("a", 3)
	require.NoError(t, err)
	_, err = fs.Create("b", 1)
	require.NoError(t, err)
	require.NoError(t, fs.DeleteFile("a"))

	report, err := fs.Create("c", 4)
	assert.True(t, errors.Is(err, blocksim.ErrNoSpaceOnDevice))
	assert.EqualValues(t, blocksim.SentinelAccessCount, report.Accesses)
	assert.Equal(t, "...#......", inUsePattern(fs))
}

func TestModContig__Write__OverflowSearchesAnywhere(t *testing.T) {
	fs := modcontig.New(10, common.FirstFit)
	_, err := fs.Create("a", 3)
	require.NoError(t, err)
	_, err = fs.Create("b", 2)
	require.NoError(t, err)

	// Growing `a` by one block: [3,5) belongs to `b`, so plain contiguous
	// allocation would fail here. The overflow run lands at block 5.
	report, err := fs.Write("a", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(5), report.Allocated)
	assert.Equal(t, blocksimtest.Blocks(2, 5), report.Blocks)
	assert.Equal(t, "######....", inUsePattern(fs))

	// Run boundary charges: entering run 1 mid-way costs 1, plus one per
	// block written, plus the initial metadata access.
	assert.EqualValues(t, 4, report.Accesses)
}

func TestModContig__Write__OverflowCoversTheGapPastEndOfFile(t *testing.T) {
	fs := modcontig.New(10, common.FirstFit)
	_, err := fs.Create("a", 2)
	require.NoError(t, err)

	// Writing one block at offset 4 grows the file by three blocks (the gap
	// at positions 2 and 3 plus the written position 4), and the whole
	// overflow run is written.
	report, err := fs.Write("a", 1, 4)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(2, 3, 4), report.Allocated)
	assert.Equal(t, blocksimtest.Blocks(2, 3, 4), report.Blocks)
	assert.EqualValues(t, 5, fs.InUseBlocks())
}

func TestModContig__Write__OutOfSpaceLeavesEverythingIntact(t *testing.T) {
	fs := modcontig.New(6, common.FirstFit)
	_, err := fs.Create("a", 5)
	require.NoError(t, err)
	before := inUsePattern(fs)

	report, err := fs.Write("a", 4, 4)
	assert.True(t, errors.Is(err, blocksim.ErrNoSpaceOnDevice))
	assert.EqualValues(t, blocksim.SentinelAccessCount, report.Accesses)
	assert.Equal(t, before, inUsePattern(fs))
	assert.EqualValues(t, 5, fs.InUseBlocks())
}

func TestModContig__Read__AcrossRunBoundaries(t *testing.T) {
	fs := modcontig.New(10, common.FirstFit)
	_, err := fs.Create("a", 3)
	require.NoError(t, err)
	_, err = fs.Create("b", 2)
	require.NoError(t, err)
	_, err = fs.Write("a", 2, 2) // overflow run at block 5
	require.NoError(t, err)

	report, err := fs.Read("a", 4, 0)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(0, 1, 2, 5), report.Blocks)

	// Both runs are entered at their first block, so only the per-block
	// charges and the metadata access remain.
	assert.EqualValues(t, 5, report.Accesses)
}

func TestModContig__Read__OffsetInLaterRun(t *testing.T) {
	fs := modcontig.New(12, common.FirstFit)
	_, err := fs.Create("a", 2)
	require.NoError(t, err)
	_, err = fs.Create("b", 1)
	require.NoError(t, err)
	_, err = fs.Write("a", 3, 2) // overflow run [3,6)
	require.NoError(t, err)

	// Position 3 is the second block of the overflow run: the walk skips
	// run 0 (1 access) and enters run 1 mid-way (1 access).
	report, err := fs.Read("a", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(4, 5), report.Blocks)
	assert.EqualValues(t, 5, report.Accesses)
}

func TestModContig__Read__FreshFileTouchesNothing(t *testing.T) {
	fs := modcontig.New(10, common.BestFit)
	_, err := fs.Create("a", 4)
	require.NoError(t, err)
	before := inUsePattern(fs)

	report, err := fs.Read("a", 4, 0)
	require.NoError(t, err)
	assert.Len(t, report.Blocks, 4)
	assert.Equal(t, before, inUsePattern(fs))
}

func TestModContig__DeleteFile__FreesEveryRun(t *testing.T) {
	fs := modcontig.New(10, common.FirstFit)
	_, err := fs.Create("a", 3)
	require.NoError(t, err)
	_, err = fs.Create("b", 2)
	require.NoError(t, err)
	_, err = fs.Write("a", 3, 2) // overflow run [5,7)
	require.NoError(t, err)
	require.Equal(t, "#######...", inUsePattern(fs))

	require.NoError(t, fs.DeleteFile("a"))
	assert.Equal(t, "...##.....", inUsePattern(fs))
	assert.EqualValues(t, 2, fs.InUseBlocks())
}

func TestModContig__Write__ZeroSizeFileGrowsFromEmptyChain(t *testing.T) {
	fs := modcontig.New(6, common.FirstFit)
	_, err := fs.Create("empty", 0)
	require.NoError(t, err)

	report, err := fs.Write("empty", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, blocksimtest.Blocks(0, 1), report.Blocks)
	assert.EqualValues(t, 2, fs.InUseBlocks())
}
