package dex

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateHandlers(t *testing.T) {
	tries := []TryBlock{
		{StartAddr: 0, InsnCount: 4, HandlerOff: 5},
		{StartAddr: 4, InsnCount: 2, HandlerOff: 0},
		{StartAddr: 6, InsnCount: 1, HandlerOff: 5},
	}
	require.NoError(t, translateHandlers(tries, []uint32{0, 5}))
	assert.Equal(t, 1, tries[0].Handler)
	assert.Equal(t, 0, tries[1].Handler)
	assert.Equal(t, 1, tries[2].Handler)
}

func TestTranslateHandlersUnknownOffset(t *testing.T) {
	tries := []TryBlock{{HandlerOff: 3}}
	err := translateHandlers(tries, []uint32{0, 5})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadCatchHandler(t *testing.T) {
	t.Run("typed pairs and catch-all", func(t *testing.T) {
		// size -2: two pairs followed by a catch-all
		r := byteReader([]byte{0x7e, 1, 10, 2, 20, 30}, binary.LittleEndian)
		h := readCatchHandler(r)
		require.NoError(t, r.err)
		assert.Equal(t, []TypeAddrPair{{1, 10}, {2, 20}}, h.Pairs)
		assert.True(t, h.HasCatchAll)
		assert.Equal(t, uint32(30), h.CatchAll)
	})

	t.Run("typed pairs only", func(t *testing.T) {
		r := byteReader([]byte{0x01, 7, 8}, binary.LittleEndian)
		h := readCatchHandler(r)
		require.NoError(t, r.err)
		assert.False(t, h.HasCatchAll)
		assert.Len(t, h.Pairs, 1)
	})
}
