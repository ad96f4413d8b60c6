package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBlock(t *testing.T) {
	buf := make([]byte, 128)
	PutSize(buf, SizeOffset, 64)
	PutU64(buf, StateOffset, StateFree)
	PutU64(buf, NextOffset, NoLink)
	PutU64(buf, PrevOffset, 64)
	PutSize(buf, 64-FooterSize, 64)

	blk, err := ReadBlock(buf, 0)
	require.NoError(t, err)
	require.Equal(t, 0, blk.Off)
	require.Equal(t, 64, blk.Size)
	require.Equal(t, 64, blk.End())
	require.True(t, blk.Free)
	require.Equal(t, 64, blk.Footer)
	require.Equal(t, NoLink, blk.Next)
	require.Equal(t, uint64(64), blk.Prev)
}

func TestReadBlockTruncated(t *testing.T) {
	buf := make([]byte, 64)

	_, err := ReadBlock(buf, 48)
	require.True(t, errors.Is(err, ErrTruncated), "header past end: %v", err)

	PutSize(buf, SizeOffset, 128)
	_, err = ReadBlock(buf, 0)
	require.True(t, errors.Is(err, ErrTruncated), "size past end: %v", err)

	PutSize(buf, SizeOffset, 0)
	_, err = ReadBlock(buf, 0)
	require.True(t, errors.Is(err, ErrTruncated), "zero size: %v", err)
}
