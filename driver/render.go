package driver

import (
	"github.com/boljen/go-bitmap"
	"github.com/dargueta/blocksim"
	"github.com/noxer/bytewriter"
)

// Glyphs used by [RenderMap].
const (
	usedBlockGlyph = '#'
	freeBlockGlyph = '.'
)

// RenderMap renders an engine's allocation state as one character per
// block, in block order: '#' for a block owned by a file, '.' for a free
// one. The output is always exactly TotalBlocks characters.
func RenderMap(fs blocksim.FileSystem) (string, error) {
	buffer := make([]byte, fs.TotalBlocks())
	writer := bytewriter.New(buffer)
	inUse := fs.InUseMap()

	cell := make([]byte, 1)
	for i := uint(0); i < fs.TotalBlocks(); i++ {
		cell[0] = freeBlockGlyph
		if bitmap.Get(inUse, int(i)) {
			cell[0] = usedBlockGlyph
		}
		if _, err := writer.Write(cell); err != nil {
			return "", err
		}
	}
	return string(buffer), nil
}
