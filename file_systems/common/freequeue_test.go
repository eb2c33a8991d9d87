package common_test

import (
	"testing"

	"github.com/dargueta/blocksim/file_systems/common"
	blocksimtest "github.com/dargueta/blocksim/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeBlockQueue__New__HoldsEveryBlockInOrder(t *testing.T) {
	q := common.NewFreeBlockQueue(5)
	assert.EqualValues(t, 5, q.Len())
	blocksimtest.RequireQueueBlocks(t, q, blocksimtest.Blocks(0, 1, 2, 3, 4))
}

func TestFreeBlockQueue__Dequeue__FIFO(t *testing.T) {
	q := common.NewFreeBlockQueue(3)

	for want := uint(0); want < 3; want++ {
		id, ok := q.Dequeue()
		require.True(t, ok)
		assert.EqualValues(t, want, id)
	}

	_, ok := q.Dequeue()
	assert.False(t, ok, "dequeue from an empty queue must fail")
	assert.EqualValues(t, 0, q.Len())
}

func TestFreeBlockQueue__Enqueue__ReleasedBlocksGoToTheBack(t *testing.T) {
	q := common.NewFreeBlockQueue(4)
	q.Dequeue()
	q.Dequeue()
	q.Enqueue(1)
	q.Enqueue(0)

	blocksimtest.RequireQueueBlocks(t, q, blocksimtest.Blocks(2, 3, 1, 0))
}

func TestFreeBlockQueue__InUseMapFromQueue__ComplementsTheQueue(t *testing.T) {
	q := common.NewFreeBlockQueue(10)
	for i := 0; i < 4; i++ {
		q.Dequeue()
	}
	q.Enqueue(2)

	pattern := blocksimtest.PatternFromBitmap(common.InUseMapFromQueue(q, 10), 10)
	assert.Equal(t, "##.#......", pattern)
}
