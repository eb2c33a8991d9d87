package common

import (
	"github.com/boljen/go-bitmap"
	"github.com/dargueta/blocksim"
)

// FreeBlockQueue is the free-space bookkeeping used by the linked and
// indexed engines: a FIFO of the block ids not currently owned by any file.
// A freshly deleted file's blocks go to the back of the queue, so block ids
// are recycled in release order rather than numeric order.
type FreeBlockQueue struct {
	ids []blocksim.PhysicalBlock
}

// NewFreeBlockQueue creates a queue holding every block of a device of the
// given capacity, in increasing order.
func NewFreeBlockQueue(totalBlocks uint) *FreeBlockQueue {
	ids := make([]blocksim.PhysicalBlock, totalBlocks)
	for i := uint(0); i < totalBlocks; i++ {
		ids[i] = blocksim.PhysicalBlock(i)
	}
	return &FreeBlockQueue{ids: ids}
}

// Len returns the number of free blocks in the queue.
func (q *FreeBlockQueue) Len() uint {
	return uint(len(q.ids))
}

// Dequeue removes and returns the block id at the front of the queue. It
// returns false if the queue is empty.
func (q *FreeBlockQueue) Dequeue() (blocksim.PhysicalBlock, bool) {
	if len(q.ids) == 0 {
		return 0, false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// Enqueue returns a block id to the back of the queue.
func (q *FreeBlockQueue) Enqueue(id blocksim.PhysicalBlock) {
	q.ids = append(q.ids, id)
}

// InUseMapFromQueue reconstructs an in-use bitmap for a device of
// `totalBlocks` blocks from its free queue: every block not in the queue is
// owned by some file. The layout matches [BlockMap.Snapshot].
func InUseMapFromQueue(q *FreeBlockQueue, totalBlocks uint) []byte {
	bits := bitmap.New(int(totalBlocks))
	for i := uint(0); i < totalBlocks; i++ {
		bits.Set(int(i), true)
	}
	for _, id := range q.ids {
		bits.Set(int(id), false)
	}
	return bits.Data(true)
}

// Blocks returns a copy of the queue's contents in front-to-back order.
func (q *FreeBlockQueue) Blocks() []blocksim.PhysicalBlock {
	snapshot := make([]blocksim.PhysicalBlock, len(q.ids))
	copy(snapshot, q.ids)
	return snapshot
}
