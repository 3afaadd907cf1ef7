package anycrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkInput = []byte("123456789")

func TestReverseBits(t *testing.T) {
	assert.Equal(t, uint64(0xf5), ReverseBits(0xaf, 8))
	assert.Equal(t, uint64(0x1), ReverseBits(0x1, 1))
	assert.Equal(t, uint64(0xc), ReverseBits(0x3, 4))
	assert.Equal(t, uint64(0xe0000000), ReverseBits(0x7, 32))

	for width := 1; width <= 12; width++ {
		for v := uint64(0); v < 1<<uint(width); v++ {
			require.Equal(t, v, ReverseBits(ReverseBits(v, width), width))
		}
	}
	for _, v := range []uint64{0, 1, 0xdeadbeefcafef00d, 1 << 63, 0xffffffffffffffff} {
		assert.Equal(t, v, ReverseBits(ReverseBits(v, 64), 64))
	}
}

func TestReverseBitsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { ReverseBits(0x100, 8) })
	assert.Panics(t, func() { ReverseBits(0, 0) })
	assert.Panics(t, func() { ReverseBits(0, 65) })
}

func TestCatalogueCheckValues(t *testing.T) {
	for _, p := range Catalogue {
		crc, err := New(p)
		require.NoError(t, err, p.Name)
		assert.Equal(t, p.Check, crc.Checksum(checkInput), p.Name)

		tableless, err := NewTableless(p)
		require.NoError(t, err, p.Name)
		assert.Equal(t, p.Check, tableless.Checksum(checkInput), p.Name)
	}
}

func TestChunkedCalculation(t *testing.T) {
	chunks := [][]byte{nil, []byte("1"), []byte("234"), {}, []byte("56"), []byte("789")}
	for _, p := range Catalogue {
		crc, err := New(p)
		require.NoError(t, err, p.Name)

		state := crc.Init()
		for _, chunk := range chunks {
			state = crc.Update(state, chunk)
		}
		assert.Equal(t, p.Check, crc.Finalize(state), p.Name)
	}
}

func TestZeroLengthUpdate(t *testing.T) {
	p, ok := Lookup("CRC-16/ARC")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)

	state := crc.Update(crc.Init(), []byte("12345"))
	assert.Equal(t, state, crc.Update(state, nil))
	assert.Equal(t, state, crc.UpdateBits(state, []byte("67"), 0))
}

func TestPartialByteBitLengths(t *testing.T) {
	data := []byte{0x5a, 0x3c, 0xf0}
	for _, p := range Catalogue {
		crc, err := New(p)
		require.NoError(t, err, p.Name)
		tableless, err := NewTableless(p)
		require.NoError(t, err, p.Name)

		for bitLen := 0; bitLen <= len(data)*8; bitLen++ {
			want := tableless.UpdateBits(tableless.Init(), data, bitLen)
			got := crc.UpdateBits(crc.Init(), data, bitLen)
			require.Equal(t, want, got, "%s bitLen=%d", p.Name, bitLen)
		}
	}
}

// Processing a byte as two four-bit units, in the algorithm's own bit order,
// must leave the same register as processing it whole.
func TestNibbleChaining(t *testing.T) {
	for _, p := range Catalogue {
		crc, err := New(p)
		require.NoError(t, err, p.Name)

		whole := crc.Update(crc.Init(), []byte{0xaf})

		var state uint64
		if p.RefIn {
			state = crc.UpdateBits(crc.Init(), []byte{0x0f}, 4)
			state = crc.UpdateBits(state, []byte{0x0a}, 4)
		} else {
			state = crc.UpdateBits(crc.Init(), []byte{0xa0}, 4)
			state = crc.UpdateBits(state, []byte{0xf0}, 4)
		}
		assert.Equal(t, whole, state, p.Name)
	}
}

func TestUpdateBitsOutOfRange(t *testing.T) {
	p, ok := Lookup("CRC-8/SMBUS")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)

	assert.Panics(t, func() { crc.UpdateBits(crc.Init(), []byte{0xff}, 9) })
	assert.Panics(t, func() { crc.UpdateBits(crc.Init(), nil, -1) })
}

func TestMaskedPartialByte(t *testing.T) {
	p, ok := Lookup("CRC-16/XMODEM")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)

	// the unused high-order bits of a partial final byte must not
	// perturb the register
	a := crc.UpdateBits(crc.Init(), []byte{0x50}, 4)
	b := crc.UpdateBits(crc.Init(), []byte{0x5f}, 4)
	assert.Equal(t, a, b)
}

func TestRefReg(t *testing.T) {
	p, ok := Lookup("CRC-32/ISO-HDLC")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)
	assert.True(t, crc.RefReg())
	assert.Equal(t, 32, crc.Width())
	assert.Equal(t, p, crc.Params())
}
