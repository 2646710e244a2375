package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickBitmapSetClearGet(t *testing.T) {
	bm := NewTickBitmap("BTC/USDT")

	require.False(t, bm.GetBit(0))
	bm.SetBit(0)
	bm.SetBit(887)
	bm.SetBit(-128)
	require.True(t, bm.GetBit(0))
	require.True(t, bm.GetBit(887))
	require.True(t, bm.GetBit(-128))
	require.False(t, bm.GetBit(1))

	bm.ClearBit(887)
	require.False(t, bm.GetBit(887))
	bm.ClearBit(887) // clearing an unset bit is a no-op
	require.False(t, bm.GetBit(887))
}

func TestTickBitmapGetSetBitsAscending(t *testing.T) {
	bm := NewTickBitmap("BTC/USDT")
	for _, pos := range []int32{300, -510, 0, 255, 256, -1, 42} {
		bm.SetBit(pos)
	}

	require.Equal(t, []int32{-510, -1, 0, 42, 255, 256, 300}, bm.GetSetBits())
}

func TestTickBitmapEmptyWordsAreDropped(t *testing.T) {
	bm := NewTickBitmap("BTC/USDT")
	bm.SetBit(513)
	bm.ClearBit(513)
	require.True(t, bm.Empty())
}

func TestTickBitmapJSONRoundTrip(t *testing.T) {
	bm := NewTickBitmap("ETH/USDT")
	for _, pos := range []int32{-1000, -1, 0, 63, 64, 255, 1 << 20} {
		bm.SetBit(pos)
	}

	raw, err := json.Marshal(bm)
	require.NoError(t, err)

	restored := &TickBitmap{}
	require.NoError(t, json.Unmarshal(raw, restored))
	require.Equal(t, "ETH/USDT", restored.PoolPair)
	require.Equal(t, bm.GetSetBits(), restored.GetSetBits())
}

func TestTickActiveTracksLiquidity(t *testing.T) {
	tick := NewTick(TickKeyFor("BTC/USDT", -120))
	require.Equal(t, "BTC/USDT", tick.PoolPair)
	require.Equal(t, int32(-120), tick.TickIndex)
	require.False(t, tick.Active())

	require.NoError(t, tick.AddLiquidity(dec(t, "5"), false))
	require.True(t, tick.Active())
	require.Equal(t, "5", tick.LiquidityNet.String())

	require.NoError(t, tick.RemoveLiquidity(dec(t, "5"), false))
	require.False(t, tick.Active())

	err := tick.RemoveLiquidity(dec(t, "1"), false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "underflow")
}
