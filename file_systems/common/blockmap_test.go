package common_test

import (
	"errors"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
	blocksimtest "github.com/dargueta/blocksim/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockMap__MarkRange__Basic(t *testing.T) {
	m := common.NewBlockMap(10)
	require.NoError(t, m.MarkRange(2, 3))

	assert.Equal(t, "..###.....", blocksimtest.PatternFromMap(m))
	assert.EqualValues(t, 3, m.InUseCount())
}

func TestBlockMap__MarkRange__OverlapFailsWithoutMutation(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "....#.....")

	err := m.MarkRange(2, 4)
	assert.True(t, errors.Is(err, blocksim.ErrInvalidArgument))
	assert.Equal(t, "....#.....", blocksimtest.PatternFromMap(m))
	assert.EqualValues(t, 1, m.InUseCount())
}

func TestBlockMap__MarkRange__PastEndFails(t *testing.T) {
	m := common.NewBlockMap(10)
	assert.Error(t, m.MarkRange(8, 3))
	assert.EqualValues(t, 0, m.InUseCount())
}

func TestBlockMap__MarkRange__ZeroCountIsANoOp(t *testing.T) {
	m := common.NewBlockMap(10)
	require.NoError(t, m.MarkRange(4, 0))
	assert.EqualValues(t, 0, m.InUseCount())
}

func TestBlockMap__ClearRange__Basic(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "..#####...")
	require.NoError(t, m.ClearRange(3, 2))

	assert.Equal(t, "..#..##...", blocksimtest.PatternFromMap(m))
	assert.EqualValues(t, 3, m.InUseCount())
}

func TestBlockMap__ClearRange__AlreadyFreeFailsWithoutMutation(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "##..##....")

	err := m.ClearRange(0, 4)
	assert.True(t, errors.Is(err, blocksim.ErrInvalidArgument))
	assert.Equal(t, "##..##....", blocksimtest.PatternFromMap(m))
	assert.EqualValues(t, 4, m.InUseCount())
}

func TestBlockMap__ClearRange__PastEndFails(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "########")
	err := m.ClearRange(6, 4)
	assert.True(t, errors.Is(err, blocksim.ErrArgumentOutOfRange))
	assert.EqualValues(t, 8, m.InUseCount())
}

func TestBlockMap__HasFreeRange__Bounds(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "#....#....")

	assert.True(t, m.HasFreeRange(1, 4))
	assert.False(t, m.HasFreeRange(1, 5), "range includes an in-use block")
	assert.True(t, m.HasFreeRange(6, 4))
	assert.False(t, m.HasFreeRange(6, 5), "range runs past the device's end")
	assert.True(t, m.HasFreeRange(9, 1))
	assert.False(t, m.HasFreeRange(10, 1))
}

func TestBlockMap__InUse__OutOfRangeCountsAsUsed(t *testing.T) {
	m := common.NewBlockMap(4)
	assert.False(t, m.InUse(3))
	assert.True(t, m.InUse(4))
	assert.True(t, m.InUse(1000))
}

func TestBlockMap__Snapshot__IsACopy(t *testing.T) {
	m := blocksimtest.MapFromPattern(t, "#.......")
	snapshot := m.Snapshot()
	snapshot[0] = 0xff

	assert.Equal(t, "#.......", blocksimtest.PatternFromMap(m))
}
