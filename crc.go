package anycrc

import (
	"fmt"
	"math/bits"
)

// ReverseBits mirrors the width-bit binary representation of v. It is
// involutive: applying it twice returns the original value. It panics if
// width is outside 1..64 or v does not fit in width bits.
func ReverseBits(v uint64, width int) uint64 {
	if width < 1 || width > 64 {
		panic(fmt.Sprintf("anycrc: invalid width %d", width))
	}
	if width < 64 && v>>uint(width) != 0 {
		panic(fmt.Sprintf("anycrc: value %#x does not fit in %d bits", v, width))
	}
	return bits.Reverse64(v) >> uint(64-width)
}

// CRC is a bound computation unit: one parameter set together with its
// optional 256-entry lookup table. The shift register operates in the
// reflected (LSB-first) convention whatever the width, so every step is a
// right shift and a low-bit test; the polynomial and initial value are
// stored pre-reflected. A CRC is immutable once built and safe for
// concurrent use.
type CRC struct {
	params  Params
	refPoly uint64
	refInit uint64
	table   *[256]uint64 // nil in tableless mode
}

// New builds a table-driven computation unit for the given parameter set.
// The table holds the register transition for every possible input byte and
// is never mutated afterwards.
func New(p Params) (*CRC, error) {
	c, err := NewTableless(p)
	if err != nil {
		return nil, err
	}
	var t [256]uint64
	zero := []byte{0}
	for i := range t {
		t[i] = c.UpdateBits(uint64(i), zero, 8)
	}
	c.table = &t
	return c, nil
}

// NewTableless builds a computation unit that processes every byte
// bit-serially, trading speed for zero setup cost. It produces results
// identical to the table-driven variant.
func NewTableless(p Params) (*CRC, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &CRC{
		params:  p,
		refPoly: ReverseBits(p.Poly, p.Width),
		refInit: ReverseBits(p.Init, p.Width),
	}, nil
}

// Width returns the CRC width in bits.
func (c *CRC) Width() int { return c.params.Width }

// Params returns the parameter set the unit was built from.
func (c *CRC) Params() Params { return c.params }

// RefReg reports the orientation of the internal shift register: true means
// reflected (LSB-first). The residue derivations consult this flag to decide
// how raw register values they exchange with the unit must be re-oriented.
func (c *CRC) RefReg() bool { return true }

// Init returns the starting register state for a new message.
func (c *CRC) Init() uint64 { return c.refInit }

// Update processes len(data) whole bytes starting from state and returns the
// raw register, suitable for chaining into a further Update or UpdateBits
// call. Updating with no data returns state unchanged.
func (c *CRC) Update(state uint64, data []byte) uint64 {
	return c.UpdateBits(state, data, len(data)*8)
}

// UpdateBits processes the first bitLen bits of data starting from state and
// returns the raw register. Whole bytes go through the lookup table when one
// is present; a trailing partial byte is handled bit-serially with its
// unused high-order bits masked off so they cannot perturb the register.
// It panics if bitLen is negative or exceeds 8*len(data).
func (c *CRC) UpdateBits(state uint64, data []byte, bitLen int) uint64 {
	if bitLen < 0 || bitLen > len(data)*8 {
		panic(fmt.Sprintf("anycrc: bit length %d out of range for %d byte(s)", bitLen, len(data)))
	}
	crc := state
	if c.table != nil {
		n := bitLen >> 3
		bitLen &= 7
		for _, b := range data[:n] {
			if !c.params.RefIn {
				b = bits.Reverse8(b)
			}
			crc = c.table[(crc^uint64(b))&0xff] ^ (crc >> 8)
		}
		if bitLen == 0 {
			return crc
		}
		data = data[n : n+1]
	}
	for _, b := range data {
		if bitLen <= 0 {
			break
		}
		if !c.params.RefIn {
			b = bits.Reverse8(b)
		}
		n := bitLen
		if n >= 8 {
			n = 8
		} else {
			b &= 1<<uint(n) - 1
		}
		crc ^= uint64(b)
		for i := 0; i < n; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ c.refPoly
			} else {
				crc >>= 1
			}
		}
		bitLen -= 8
	}
	return crc
}

// Finalize turns a raw register state into the algorithm's public CRC value
// by re-orienting it per refout and applying the final XOR.
func (c *CRC) Finalize(state uint64) uint64 {
	return c.ResidueOf(state) ^ c.params.XorOut
}

// ResidueOf re-orients a raw register state into the algorithm's public bit
// order without applying the final XOR. Applied to the state left by a full
// error-free codeword it yields the algorithm's residue constant.
func (c *CRC) ResidueOf(state uint64) uint64 {
	if !c.params.RefOut {
		return ReverseBits(state, c.params.Width)
	}
	return state
}

// Checksum returns the CRC of data in a single call.
func (c *CRC) Checksum(data []byte) uint64 {
	return c.Finalize(c.Update(c.refInit, data))
}
