// Package blocksim simulates classical on-disk file allocation strategies
// over a fixed-size block device held entirely in memory. Four engines are
// provided, one per strategy: contiguous, linked, indexed, and
// modified-contiguous (an initial contiguous run extended by linked overflow
// runs). Each engine charges every operation a block-access cost, which is
// the metric used to compare the strategies against each other.
package blocksim

// PhysicalBlock is the index of a block on the simulated device. Valid
// indices are in the range [0, TotalBlocks).
type PhysicalBlock uint

// Report describes the outcome of a single operation on a [FileSystem].
type Report struct {
	// Accesses is the number of block accesses charged to the operation,
	// including the initial metadata access. A failed operation always
	// reports exactly 1; callers aggregating costs must exclude those.
	Accesses uint

	// Blocks lists the physical blocks touched by the transfer, in the order
	// they were read or written.
	Blocks []PhysicalBlock

	// Allocated lists the physical blocks newly claimed by the operation,
	// either at creation or through write-induced growth.
	Allocated []PhysicalBlock
}

// FileSystem is the interface implemented by all four allocation engines.
//
// Implementations are not safe for concurrent use. Every method validates
// all of its preconditions before mutating anything, so a failed operation
// leaves the engine's state exactly as it found it.
type FileSystem interface {
	// Name identifies the allocation strategy, e.g. "contiguous".
	Name() string

	// Create registers a new file and allocates `size` blocks for it
	// according to the engine's strategy. It fails with [ErrExists] if the
	// name is already registered and [ErrNoSpaceOnDevice] if the blocks
	// can't be allocated. A size of zero is valid and allocates nothing.
	Create(name string, size uint) (Report, error)

	// Read reads `size` logical blocks of the file starting at logical
	// position `offset`. Reading stops early at end of file. It fails with
	// [ErrNotFound] if the name isn't registered.
	Read(name string, size, offset uint) (Report, error)

	// Write writes `size` logical blocks starting at `offset`, growing the
	// file first if `offset+size` exceeds its current size. Growth follows
	// the engine's strategy and fails with [ErrNoSpaceOnDevice], in which
	// case nothing is modified. It fails with [ErrNotFound] if the name
	// isn't registered.
	Write(name string, size, offset uint) (Report, error)

	// DeleteFile releases every block the file owns and unregisters it. It
	// fails with [ErrNotFound] if the name isn't registered.
	DeleteFile(name string) error

	// TotalBlocks returns the fixed capacity of the simulated device.
	TotalBlocks() uint

	// InUseBlocks returns the number of blocks currently owned by files.
	InUseBlocks() uint

	// InUseMap returns a snapshot of the device's allocation state as a
	// bitmap, one bit per block, LSB first within each byte. Bit `i` is set
	// iff block `i` is owned by a file.
	InUseMap() []byte

	// StorageEfficiency returns InUseBlocks / TotalBlocks as a fraction in
	// [0, 1].
	StorageEfficiency() float64
}

// SentinelAccessCount is the access count reported by an operation that did
// not execute (duplicate name, file not found, or out of space).
const SentinelAccessCount = 1
