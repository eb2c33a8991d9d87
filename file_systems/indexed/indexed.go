// Package indexed implements indexed allocation: every file owns an ordered
// table of block ids, one entry per logical position, analogous to a
// single-level index block. Free space is the same FIFO block queue the
// linked engine uses, but reads index straight into the table instead of
// chasing chain links.
package indexed

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
)

type file struct {
	// blocks[i] is the physical block backing logical position i; the file's
	// size is the table's length.
	blocks []blocksim.PhysicalBlock
}

// FileSystem is the indexed-allocation engine.
type FileSystem struct {
	free        *common.FreeBlockQueue
	files       *common.Registry[file]
	totalBlocks uint
	inUse       uint
}

// New creates an indexed engine over a device of `totalBlocks` blocks.
func New(totalBlocks uint) *FileSystem {
	return &FileSystem{
		free:        common.NewFreeBlockQueue(totalBlocks),
		files:       common.NewRegistry[file](),
		totalBlocks: totalBlocks,
	}
}

func (fs *FileSystem) Name() string {
	return "indexed"
}

// Create dequeues `size` blocks into a fresh index table.
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
	f := &file{blocks: make([]blocksim.PhysicalBlock, 0, size)}
	for i := uint(0); i < size; i++ {
		id, _ := fs.free.Dequeue()
		f.blocks = append(f.blocks, id)
		report.Allocated = append(report.Allocated, id)
	}

	fs.inUse += size
	fs.files.Add(name, f)
	return report, nil
}

// Read indexes directly into the table for the positions in
// [offset, offset+size), charging one access per block read plus one.
func (fs *FileSystem) Read(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	report := blocksim.Report{Accesses: 1}
	read := uint(0)
	for i := offset; i < uint(len(f.blocks)) && read < size; i++ {
		report.Blocks = append(report.Blocks, f.blocks[i])
		read++
		report.Accesses++
	}
	return report, nil
}

// Write writes the positions in [offset, offset+size), appending a freshly
// dequeued block id to the table for every position past the current table
// length. The total growth is checked against the free queue before
// anything is modified.
func (fs *FileSystem) Write(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	currentSize := uint(len(f.blocks))
	if offset+size > currentSize && offset+size-currentSize > fs.free.Len() {
		return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("can't grow %q by %d blocks: only %d free",
				name, offset+size-currentSize, fs.free.Len()))
	}

	report := blocksim.Report{Accesses: 1}
	written := uint(0)
	for position := offset; written < size; position++ {
		for uint(len(f.blocks)) <= position {
			id, _ := fs.free.Dequeue()
			f.blocks = append(f.blocks, id)
			fs.inUse++
			report.Allocated = append(report.Allocated, id)
		}
		report.Blocks = append(report.Blocks, f.blocks[position])
		written++
		report.Accesses++
	}
	return report, nil
}

// DeleteFile returns every id in the table to the free queue.
func (fs *FileSystem) DeleteFile(name string) error {
	f, err := fs.files.Get(name)
	if err != nil {
		return err
	}

	for _, id := range f.blocks {
		fs.free.Enqueue(id)
	}
	fs.inUse -= uint(len(f.blocks))
	return fs.files.Remove(name)
}

func (fs *FileSystem) TotalBlocks() uint {
	return fs.totalBlocks
}

func (fs *FileSystem) InUseBlocks() uint {
	return fs.inUse
}

func (fs *FileSystem) InUseMap() []byte {
	return common.InUseMapFromQueue(fs.free, fs.totalBlocks)
}

func (fs *FileSystem) StorageEfficiency() float64 {
	return float64(fs.inUse) / float64(fs.totalBlocks)
}

func failed() blocksim.Report {
	return blocksim.Report{Accesses: blocksim.SentinelAccessCount}
}
