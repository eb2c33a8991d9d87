// Package modcontig implements modified contiguous allocation: a file
// starts life as one contiguous run exactly like the plain contiguous
// engine, but write-induced growth performs a fresh hole search and appends
// the new run to a chain of run descriptors instead of requiring the blocks
// after the file's tail to be free. The engine composes the same BlockMap
// and HoleSearch the contiguous engine uses.
package modcontig

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
)

// run is one contiguous extent of a file: `size` consecutive logical
// positions backed by the physical blocks [start, start+size).
type run struct {
	start blocksim.PhysicalBlock
	size  uint
}

type file struct {
	size uint
	// runs holds the file's extents in logical order; the sum of their sizes
	// always equals `size`.
	runs []run
}

// FileSystem is the modified-contiguous engine.
type FileSystem struct {
	blocks *common.BlockMap
	search *common.HoleSearch
	files  *common.Registry[file]
}

// New creates a modified-contiguous engine over a device of `totalBlocks`
// blocks using the given hole-search strategy.
func New(totalBlocks uint, strategy common.SearchStrategy) *FileSystem {
	return &FileSystem{
		blocks: common.NewBlockMap(totalBlocks),
		search: common.NewHoleSearch(strategy),
		files:  common.NewRegistry[file](),
	}
}

func (fs *FileSystem) Name() string {
	return "modified-contiguous"
}

// Create allocates the file's initial run, recorded as a one-element run
// chain. A zero-size file is valid and starts with an empty chain.
func (fs *FileSystem) Create(name string, size uint) (blocksim.Report, error) {
	if fs.files.Contains(name) {
		return failed(), blocksim.ErrExists.WithMessage(
			fmt.Sprintf("filename %q already taken", name))
	}

	start, ok := fs.search.FindRun(fs.blocks, size)
	if !ok {
		return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("can't allocate %d contiguous blocks for %q", size, name))
	}

	f := &file{size: size}
	if size > 0 {
		if err := fs.blocks.MarkRange(start, size); err != nil {
			return failed(), err
		}
		f.runs = append(f.runs, run{start: start, size: size})
	}
	fs.files.Add(name, f)
	return blocksim.Report{Allocated: blockRange(start, size)}, nil
}

// Read walks the run chain to the run containing `offset`, then reads
// across run boundaries until `size` blocks were read or the file ends. One
// access is charged per run boundary crossed plus one per block read.
func (fs *FileSystem) Read(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	report := blocksim.Report{Accesses: 1}
	fs.walkRuns(f.runs, size, offset, &report)
	return report, nil
}

// Write writes `size` blocks starting at `offset`. If the write extends
// past the end of the file, a fresh hole search allocates the overflow run
// anywhere on the device; the new run need not touch the previous one. The
// overflow run's blocks are written after the chain walk and the run is
// then appended to the chain. On any failure nothing is modified.
func (fs *FileSystem) Write(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	var overflow *run
	if offset+size > f.size {
		growth := offset + size - f.size
		start, ok := fs.search.FindRun(fs.blocks, growth)
		if !ok {
			return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
				fmt.Sprintf("can't allocate %d overflow blocks for %q", growth, name))
		}
		if err := fs.blocks.MarkRange(start, growth); err != nil {
			return failed(), err
		}
		overflow = &run{start: start, size: growth}
	}

	report := blocksim.Report{Accesses: 1}
	fs.walkRuns(f.runs, size, offset, &report)

	if overflow != nil {
		// The overflow run is written in full, covering any gap between the
		// old end of file and the requested offset.
		for i := uint(0); i < overflow.size; i++ {
			block := overflow.start + blocksim.PhysicalBlock(i)
			report.Blocks = append(report.Blocks, block)
			report.Accesses++
		}
		report.Allocated = blockRange(overflow.start, overflow.size)
		f.runs = append(f.runs, *overflow)
		f.size += overflow.size
	}

	return report, nil
}

// walkRuns visits the chain's positions in [offset, offset+count), recording
// the physical blocks touched and the access charges in `report`. It
// returns the number of blocks visited. Skipped runs and runs entered
// mid-way cost one access each; runs entered at their first block cost
// nothing beyond the per-block charges.
func (fs *FileSystem) walkRuns(
	runs []run,
	count uint,
	offset uint,
	report *blocksim.Report,
) uint {
	visited := uint(0)
	runStart := uint(0)
	position := offset

	for _, r := range runs {
		if visited >= count {
			break
		}
		report.Accesses++
		if position >= runStart && position < runStart+r.size {
			within := position - runStart
			if within == 0 {
				report.Accesses--
			}
			for i := within; i < r.size && visited < count; i++ {
				report.Blocks = append(
					report.Blocks, r.start+blocksim.PhysicalBlock(i))
				report.Accesses++
				visited++
			}
			position = offset + visited
		}
		runStart += r.size
	}
	return visited
}

// DeleteFile releases every run's blocks and frees the chain.
func (fs *FileSystem) DeleteFile(name string) error {
	f, err := fs.files.Get(name)
	if err != nil {
		return err
	}

	for _, r := range f.runs {
		if err := fs.blocks.ClearRange(r.start, r.size); err != nil {
			return blocksim.ErrFileSystemCorrupted.Wrap(err)
		}
	}
	return fs.files.Remove(name)
}

func (fs *FileSystem) TotalBlocks() uint {
	return fs.blocks.TotalBlocks()
}

func (fs *FileSystem) InUseBlocks() uint {
	return fs.blocks.InUseCount()
}

func (fs *FileSystem) InUseMap() []byte {
	return fs.blocks.Snapshot()
}

func (fs *FileSystem) StorageEfficiency() float64 {
	return float64(fs.blocks.InUseCount()) / float64(fs.blocks.TotalBlocks())
}

func failed() blocksim.Report {
	return blocksim.Report{Accesses: blocksim.SentinelAccessCount}
}

func blockRange(start blocksim.PhysicalBlock, count uint) []blocksim.PhysicalBlock {
	blocks := make([]blocksim.PhysicalBlock, count)
	for i := uint(0); i < count; i++ {
		blocks[i] = start + blocksim.PhysicalBlock(i)
	}
	return blocks
}
