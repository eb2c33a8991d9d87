// Package common contains the abstractions shared by the allocation
// engines: the allocation bitmap, the hole-search strategies, the FIFO free
// block queue, and the file registry.
package common

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/blocksim"
)

// BlockMap is a fixed-capacity allocation bitmap over the blocks of the
// simulated device. Bit `i` is set iff block `i` is owned by exactly one
// file; the contiguous-family engines use it as the ground truth of which
// blocks are free.
type BlockMap struct {
	bits        bitmap.Bitmap
	totalBlocks uint
	inUse       uint
}

// NewBlockMap creates a new allocation bitmap with all blocks free.
func NewBlockMap(totalBlocks uint) *BlockMap {
	return &BlockMap{
		bits:        bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
	}
}

// TotalBlocks returns the fixed capacity of the map.
func (m *BlockMap) TotalBlocks() uint {
	return m.totalBlocks
}

// InUseCount returns the number of blocks currently marked as in use.
func (m *BlockMap) InUseCount() uint {
	return m.inUse
}

// InUse tells whether block `index` is currently marked as in use. Indices
// outside [0, TotalBlocks) are reported as in use so that run scans never
// step off the end of the device.
func (m *BlockMap) InUse(index uint) bool {
	if index >= m.totalBlocks {
		return true
	}
	return m.bits.Get(int(index))
}

// HasFreeRange tells whether all of the `count` blocks starting at `start`
// are free. Ranges extending past the end of the device are never free.
func (m *BlockMap) HasFreeRange(start blocksim.PhysicalBlock, count uint) bool {
	if uint(start)+count > m.totalBlocks {
		return false
	}
	for i := uint(0); i < count; i++ {
		if m.bits.Get(int(uint(start) + i)) {
			return false
		}
	}
	return true
}

// MarkRange marks the `count` blocks starting at `start` as in use. If any
// block in the range is out of bounds or already in use, it fails
// immediately and the map is *not* modified.
func (m *BlockMap) MarkRange(start blocksim.PhysicalBlock, count uint) error {
	if !m.HasFreeRange(start, count) {
		msg := fmt.Sprintf(
			"can't allocate %d blocks at %d: range is out of bounds or not free",
			count,
			start)
		return blocksim.ErrInvalidArgument.WithMessage(msg)
	}

	for i := uint(0); i < count; i++ {
		m.bits.Set(int(uint(start)+i), true)
	}
	m.inUse += count
	return nil
}

// ClearRange marks the `count` blocks starting at `start` as free. If any
// block in the range is out of bounds or already free, it fails immediately
// and the map is *not* modified.
func (m *BlockMap) ClearRange(start blocksim.PhysicalBlock, count uint) error {
	if uint(start)+count > m.totalBlocks {
		msg := fmt.Sprintf(
			"invalid block range: [%d, %d) not in [0, %d)",
			start,
			uint(start)+count,
			m.totalBlocks)
		return blocksim.ErrArgumentOutOfRange.WithMessage(msg)
	}
	for i := uint(0); i < count; i++ {
		if !m.bits.Get(int(uint(start) + i)) {
			msg := fmt.Sprintf("block %d is already free", uint(start)+i)
			return blocksim.ErrInvalidArgument.WithMessage(msg)
		}
	}

	for i := uint(0); i < count; i++ {
		m.bits.Set(int(uint(start)+i), false)
	}
	m.inUse -= count
	return nil
}

// Snapshot returns a copy of the raw bitmap, one bit per block, LSB first
// within each byte.
func (m *BlockMap) Snapshot() []byte {
	return m.bits.Data(true)
}
