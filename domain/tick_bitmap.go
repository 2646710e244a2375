package domain

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"
	"strconv"

	"github.com/holiman/uint256"
)

const bitmapWordBits = 256

// TickBitmap is the sparse liquidity index of one pool: one bit per
// spacing-aligned tick position, set iff the corresponding tick holds
// non-zero liquidity. Positions are tickIndex / tickSpacing and may be
// negative; they are grouped into 256-bit words.
type TickBitmap struct {
	PoolPair  string
	UpdatedAt int64

	words map[int32]*uint256.Int
}

func NewTickBitmap(poolPair string) *TickBitmap {
	return &TickBitmap{PoolPair: poolPair, words: make(map[int32]*uint256.Int)}
}

func (b *TickBitmap) Key() string { return b.PoolPair }

func (b *TickBitmap) Clone() *TickBitmap {
	if b == nil {
		return nil
	}
	clone := NewTickBitmap(b.PoolPair)
	clone.UpdatedAt = b.UpdatedAt
	for idx, word := range b.words {
		clone.words[idx] = new(uint256.Int).Set(word)
	}
	return clone
}

// split decomposes a position into its word index and bit offset. The
// arithmetic shift floors toward negative infinity, so negative positions
// land in negative words with a non-negative offset.
func split(position int32) (word int32, bit uint) {
	return position >> 8, uint(position & (bitmapWordBits - 1))
}

// SetBit marks the position as holding liquidity.
func (b *TickBitmap) SetBit(position int32) {
	wordIdx, bit := split(position)
	if b.words == nil {
		b.words = make(map[int32]*uint256.Int)
	}
	word, ok := b.words[wordIdx]
	if !ok {
		word = new(uint256.Int)
		b.words[wordIdx] = word
	}
	word[bit/64] |= 1 << (bit % 64)
}

// ClearBit removes the position from the index. Emptied words are dropped so
// the serialized form stays sparse.
func (b *TickBitmap) ClearBit(position int32) {
	wordIdx, bit := split(position)
	word, ok := b.words[wordIdx]
	if !ok {
		return
	}
	word[bit/64] &^= 1 << (bit % 64)
	if word.IsZero() {
		delete(b.words, wordIdx)
	}
}

// GetBit reports whether the position is set.
func (b *TickBitmap) GetBit(position int32) bool {
	wordIdx, bit := split(position)
	word, ok := b.words[wordIdx]
	if !ok {
		return false
	}
	return word[bit/64]>>(bit%64)&1 == 1
}

// GetSetBits returns every set position in ascending order.
func (b *TickBitmap) GetSetBits() []int32 {
	wordIdxs := make([]int32, 0, len(b.words))
	for idx := range b.words {
		wordIdxs = append(wordIdxs, idx)
	}
	sort.Slice(wordIdxs, func(i, j int) bool { return wordIdxs[i] < wordIdxs[j] })

	var positions []int32
	for _, wordIdx := range wordIdxs {
		word := b.words[wordIdx]
		base := wordIdx * bitmapWordBits
		for limb := 0; limb < 4; limb++ {
			v := word[limb]
			for v != 0 {
				bit := bits.TrailingZeros64(v)
				positions = append(positions, base+int32(limb*64+bit))
				v &= v - 1
			}
		}
	}
	return positions
}

// Empty reports whether no position is set.
func (b *TickBitmap) Empty() bool {
	return len(b.words) == 0
}

type storedTickBitmap struct {
	PoolPair  string            `json:"pool_pair"`
	UpdatedAt int64             `json:"updated_at"`
	Words     map[string]string `json:"words"`
}

// MarshalJSON encodes the bitmap with each 256-bit word as a hex string.
func (b *TickBitmap) MarshalJSON() ([]byte, error) {
	stored := storedTickBitmap{
		PoolPair:  b.PoolPair,
		UpdatedAt: b.UpdatedAt,
		Words:     make(map[string]string, len(b.words)),
	}
	for idx, word := range b.words {
		stored.Words[strconv.FormatInt(int64(idx), 10)] = word.Hex()
	}
	return json.Marshal(stored)
}

func (b *TickBitmap) UnmarshalJSON(data []byte) error {
	var stored storedTickBitmap
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	b.PoolPair = stored.PoolPair
	b.UpdatedAt = stored.UpdatedAt
	b.words = make(map[int32]*uint256.Int, len(stored.Words))
	for rawIdx, rawWord := range stored.Words {
		idx, err := strconv.ParseInt(rawIdx, 10, 32)
		if err != nil {
			return fmt.Errorf("tick bitmap: malformed word index %q: %w", rawIdx, err)
		}
		word, err := uint256.FromHex(rawWord)
		if err != nil {
			return fmt.Errorf("tick bitmap: malformed word %q: %w", rawWord, err)
		}
		if !word.IsZero() {
			b.words[int32(idx)] = word
		}
	}
	return nil
}
