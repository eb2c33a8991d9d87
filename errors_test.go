package blocksim_test

import (
	"errors"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/stretchr/testify/assert"
)

func TestErrors__Is__MatchesSentinel(t *testing.T) {
	err := blocksim.ErrNotFound.WithMessage("file \"a\" not found")
	assert.True(t, errors.Is(err, blocksim.ErrNotFound))
	assert.False(t, errors.Is(err, blocksim.ErrExists))
}

func TestErrors__WithMessage__PrependsBaseMessage(t *testing.T) {
	err := blocksim.ErrNoSpaceOnDevice.WithMessage("can't allocate 4 blocks")
	assert.Equal(t, "No space left on device: can't allocate 4 blocks", err.Error())
}

func TestErrors__WithMessage__ChainsThroughUnwrap(t *testing.T) {
	inner := blocksim.ErrInvalidArgument.WithMessage("inner")
	outer := inner.WithMessage("outer")
	assert.True(t, errors.Is(outer, blocksim.ErrInvalidArgument))
}

func TestErrors__Wrap__KeepsBothErrors(t *testing.T) {
	cause := errors.New("block 3 is already free")
	err := blocksim.ErrFileSystemCorrupted.Wrap(cause)
	assert.Contains(t, err.Error(), "Structure needs cleaning")
	assert.Contains(t, err.Error(), cause.Error())
}
