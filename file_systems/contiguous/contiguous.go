// Package contiguous implements classical contiguous allocation: every file
// occupies a single run of consecutive blocks chosen by a hole-search
// strategy, and a file can only grow by extending that run in place.
package contiguous

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
)

type file struct {
	size       uint
	startBlock blocksim.PhysicalBlock
}

// FileSystem is the contiguous-allocation engine. It owns an allocation
// bitmap and a hole search; files are a single run [start, start+size).
type FileSystem struct {
	blocks *common.BlockMap
	search *common.HoleSearch
	files  *common.Registry[file]
}

// New creates a contiguous engine over a device of `totalBlocks` blocks
// using the given hole-search strategy.
func New(totalBlocks uint, strategy common.SearchStrategy) *FileSystem {
	return &FileSystem{
		blocks: common.NewBlockMap(totalBlocks),
		search: common.NewHoleSearch(strategy),
		files:  common.NewRegistry[file](),
	}
}

func (fs *FileSystem) Name() string {
	return "contiguous"
}

// Create allocates a run of `size` consecutive blocks for a new file. A
// zero-size file is valid; it marks no blocks and records start block 0.
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

	if err := fs.blocks.MarkRange(start, size); err != nil {
		return failed(), err
	}
	// Add can't fail: Contains was checked above.
	fs.files.Add(name, &file{size: size, startBlock: start})

	return blocksim.Report{Allocated: blockRange(start, size)}, nil
}

// Read visits the file's logical positions from the beginning, charging one
// access per position visited plus one, and reads the positions in
// [offset, offset+size), stopping at end of file.
func (fs *FileSystem) Read(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	report := blocksim.Report{Accesses: 1}
	read := uint(0)
	for i := uint(0); i < f.size && read < size; i++ {
		if i >= offset {
			report.Blocks = append(
				report.Blocks, f.startBlock+blocksim.PhysicalBlock(i))
			read++
		}
		report.Accesses++
	}
	return report, nil
}

// Write writes `size` blocks starting at `offset`. If the write extends past
// the end of the file, the blocks immediately following the file's run must
// all be free; contiguous allocation can only grow in place, so no new hole
// search is performed. On any failure nothing is modified.
func (fs *FileSystem) Write(name string, size, offset uint) (blocksim.Report, error) {
	f, err := fs.files.Get(name)
	if err != nil {
		return failed(), err
	}

	report := blocksim.Report{Accesses: 1}
	if offset+size > f.size {
		growth := offset + size - f.size
		end := f.startBlock + blocksim.PhysicalBlock(f.size)

		if !fs.blocks.HasFreeRange(end, growth) {
			return failed(), blocksim.ErrNoSpaceOnDevice.WithMessage(
				fmt.Sprintf(
					"can't grow %q by %d blocks: blocks following %d are not free",
					name, growth, end))
		}
		if err := fs.blocks.MarkRange(end, growth); err != nil {
			return failed(), err
		}
		f.size += growth
		report.Allocated = blockRange(end, growth)
	}

	start := f.startBlock + blocksim.PhysicalBlock(offset)
	for i := uint(0); i < size; i++ {
		report.Blocks = append(report.Blocks, start+blocksim.PhysicalBlock(i))
		report.Accesses++
	}
	return report, nil
}

// DeleteFile frees the file's entire run and unregisters it.
func (fs *FileSystem) DeleteFile(name string) error {
	f, err := fs.files.Get(name)
	if err != nil {
		return err
	}

	if f.size > 0 {
		if err := fs.blocks.ClearRange(f.startBlock, f.size); err != nil {
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
