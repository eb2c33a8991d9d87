package driver

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dargueta/blocksim"
)

// Snapshot file layout, all integers little-endian: a [snapshotHeader] at
// offset 0, then one section per engine in reporting order. Every section
// starts on a sectionAlignment boundary and consists of a [sectionHeader]
// immediately followed by the engine's in-use bitmap.

var snapshotMagic = [4]byte{'B', 'S', 'I', 'M'}

const snapshotVersion = 1
const sectionAlignment = 64

type snapshotHeader struct {
	Magic       [4]byte
	Version     uint16
	EngineCount uint16
	TotalBlocks uint32
}

type sectionHeader struct {
	// Name is the engine's strategy name, NUL-padded.
	Name       [24]byte
	BitmapSize uint32
}

// Section is one engine's allocation state read back from a snapshot.
type Section struct {
	Name   string
	Bitmap []byte
}

// WriteSnapshot dumps every engine's in-use bitmap to `ws`, giving a
// bit-exact record of the device states at the end of a run.
func (d *Driver) WriteSnapshot(ws io.WriteSeeker) error {
	header := snapshotHeader{
		Magic:       snapshotMagic,
		Version:     snapshotVersion,
		EngineCount: uint16(len(d.engines)),
		TotalBlocks: uint32(d.engines[0].TotalBlocks()),
	}
	if err := binary.Write(ws, binary.LittleEndian, &header); err != nil {
		return err
	}

	offset := alignUp(int64(binary.Size(&header)))
	for _, engine := range d.engines {
		if _, err := ws.Seek(offset, io.SeekStart); err != nil {
			return err
		}

		inUseMap := engine.InUseMap()
		section := sectionHeader{BitmapSize: uint32(len(inUseMap))}
		copy(section.Name[:], engine.Name())

		if err := binary.Write(ws, binary.LittleEndian, &section); err != nil {
			return err
		}
		if _, err := ws.Write(inUseMap); err != nil {
			return err
		}
		offset = alignUp(offset + int64(binary.Size(&section)) + int64(len(inUseMap)))
	}
	return nil
}

// SnapshotSize returns the number of bytes [Driver.WriteSnapshot] writes.
func (d *Driver) SnapshotSize() int64 {
	offset := alignUp(int64(binary.Size(&snapshotHeader{})))
	sectionHeaderSize := int64(binary.Size(&sectionHeader{}))
	for i, engine := range d.engines {
		size := sectionHeaderSize + int64(len(engine.InUseMap()))
		if i == len(d.engines)-1 {
			offset += size
		} else {
			offset = alignUp(offset + size)
		}
	}
	return offset
}

// ReadSnapshot parses a snapshot produced by [Driver.WriteSnapshot] and
// returns its sections in file order.
func ReadSnapshot(rs io.ReadSeeker) ([]Section, error) {
	var header snapshotHeader
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := binary.Read(rs, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Magic != snapshotMagic {
		return nil, blocksim.ErrInvalidArgument.WithMessage(
			"not a block map snapshot: bad magic number")
	}
	if header.Version != snapshotVersion {
		return nil, blocksim.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("unsupported snapshot version %d", header.Version))
	}

	sections := make([]Section, header.EngineCount)
	offset := alignUp(int64(binary.Size(&header)))
	for i := range sections {
		if _, err := rs.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}

		var section sectionHeader
		if err := binary.Read(rs, binary.LittleEndian, &section); err != nil {
			return nil, err
		}

		bitmap := make([]byte, section.BitmapSize)
		if _, err := io.ReadFull(rs, bitmap); err != nil {
			return nil, err
		}

		name := section.Name[:]
		if nul := bytes.IndexByte(name, 0); nul >= 0 {
			name = name[:nul]
		}
		sections[i] = Section{Name: string(name), Bitmap: bitmap}
		offset = alignUp(
			offset + int64(binary.Size(&section)) + int64(section.BitmapSize))
	}
	return sections, nil
}

func alignUp(offset int64) int64 {
	remainder := offset % sectionAlignment
	if remainder == 0 {
		return offset
	}
	return offset + sectionAlignment - remainder
}
