// Package linked implements linked allocation: every file is a chain of
// individually addressed blocks, each one naming its successor. Free space
// is a FIFO queue of block ids, so a file's blocks can land anywhere on the
// device.
package linked

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
)

// noBlock marks the end of a chain and the head of an empty file.
const noBlock = int32(-1)

type file struct {
	size uint
	head int32
}

// FileSystem is the linked-allocation engine. Chain links live in a per-
// device arena indexed by block id rather than in heap nodes: next[i] is the
// block following block i in its owner's chain, or noBlock.
type FileSystem struct {
	free        *common.FreeBlockQueue
	next        []int32
	files       *common.Registry[file]
	totalBlocks uint
	inUse       uint
}

// New creates a linked engine over a device of `totalBlocks` blocks.
func New(totalBlocks uint) *FileSystem {
	next := make([]int32, totalBlocks)
	for i := range next {
		next[i] = noBlock
	}
	return &FileSystem{
		free:        common.NewFreeBlockQueue(totalBlocks),
		next:        next,
		files:       common.NewRegistry[file](),
		totalBlocks: totalBlocks,
	}
}

func (fs *FileSystem) Name() string {
	return "linked"
}

// Create dequeues `size` blocks and links them head to tail. A zero-size
// file is valid and owns no blocks at all.
func (fs *FileSystem) Create(name string, size uint) (blocksim.Report, error) {
	if fs.files.Contains(name) {
		return failed(), blocksim.ErrExists.WithMessage(
			fmt.Sprintf("filename %q already taken", name))
	}
	if fs.free.Len() < size {
		return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("can't allocate %d blocks for %q: only %d free",
				size, name, fs.free.Len()))
	}

	report := blocksim.Report{}
	f := &file{size: size, head: noBlock}
	tail := noBlock
	for i := uint(0); i < size; i++ {
		id, _ := fs.free.Dequeue()
		block := int32(id)
		fs.next[block] = noBlock
		if tail == noBlock {
			f.head = block
		} else {
			fs.next[tail] = block
		}
		tail = block
		report.Allocated = append(report.Allocated, id)
	}

	fs.inUse += size
	fs.files.Add(name, f)
	return report, nil
}

// Read walks the chain from the head, charging one access per node visited
// plus one, and reads the chain positions in [offset, offset+size). The walk
// stops once enough blocks were read or the chain ends.
func (fs *FileSystem) Read(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	report := blocksim.Report{Accesses: 1}
	position := uint(0)
	read := uint(0)
	for current := f.head; current != noBlock && read < size; current = fs.next[current] {
		if position >= offset {
			report.Blocks = append(report.Blocks, blocksim.PhysicalBlock(current))
			read++
		}
		position++
		report.Accesses++
	}
	return report, nil
}

// Write walks the chain writing the positions in [offset, offset+size).
// Whenever the walk runs past the current tail with writes remaining, a new
// block is dequeued and appended on the spot, so growth and traversal are
// interleaved. The total growth is checked against the free queue before
// anything is modified.
func (fs *FileSystem) Write(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	if offset+size > f.size && offset+size-f.size > fs.free.Len() {
		return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("can't grow %q by %d blocks: only %d free",
				name, offset+size-f.size, fs.free.Len()))
	}

	report := blocksim.Report{Accesses: 1}
	current := f.head
	previous := noBlock
	position := uint(0)
	written := uint(0)

	for written < size {
		if current == noBlock {
			// Ran off the tail; claim the next free block and append it.
			id, _ := fs.free.Dequeue()
			current = int32(id)
			fs.next[current] = noBlock
			if previous == noBlock {
				f.head = current
			} else {
				fs.next[previous] = current
			}
			f.size++
			fs.inUse++
			report.Allocated = append(report.Allocated, id)
		}

		if position >= offset {
			report.Blocks = append(report.Blocks, blocksim.PhysicalBlock(current))
			written++
		}
		position++
		previous = current
		current = fs.next[current]
		report.Accesses++
	}
	return report, nil
}

// DeleteFile unlinks every node in the chain and returns each block to the
// free queue.
func (fs *FileSystem) DeleteFile(name string) error {
	f, err := fs.files.Get(name)
	if err != nil {
		return err
	}

	for current := f.head; current != noBlock; {
		following := fs.next[current]
		fs.next[current] = noBlock
		fs.free.Enqueue(blocksim.PhysicalBlock(current))
		current = following
	}

	fs.inUse -= f.size
	return fs.files.Remove(name)
}

func (fs *FileSystem) TotalBlocks() uint {
	return fs.totalBlocks
}

func (fs *FileSystem) InUseBlocks() uint {
	return fs.inUse
}

// InUseMap reconstructs the allocation bitmap from the free queue: a block
// is in use iff it isn't queued.
func (fs *FileSystem) InUseMap() []byte {
	return common.InUseMapFromQueue(fs.free, fs.totalBlocks)
}

func (fs *FileSystem) StorageEfficiency() float64 {
	return float64(fs.inUse) / float64(fs.totalBlocks)
}

func failed() blocksim.Report {
	return blocksim.Report{Accesses: blocksim.SentinelAccessCount}
}
