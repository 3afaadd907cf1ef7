package anycrc

// ResidueConst derives the residue constant of c analytically, without any
// traffic data. Following the RevEng catalogue's definition, the register is
// initialised with xorout (re-oriented into the unit's register convention
// when refout disagrees with it), rotated through as many zero bits as the
// register has cells, and the result re-oriented back when refin disagrees
// with the register convention.
func ResidueConst(c *CRC) uint64 {
	p := c.Params()
	x := p.XorOut
	if p.RefOut != c.RefReg() {
		x = ReverseBits(x, p.Width)
	}
	zeros := make([]byte, (p.Width+7)/8)
	r := c.UpdateBits(x, zeros, p.Width)
	if p.RefIn != c.RefReg() {
		r = ReverseBits(r, p.Width)
	}
	return r
}

// ResidueConstNaive derives the residue constant constructively: it computes
// the CRC of dataword, appends it to the dataword in the bit and byte order
// the algorithm transmits it in, forming a valid codeword, and then runs the
// whole codeword through the unit skipping the final XOR. The choice of
// dataword, including the empty one, does not affect the result.
//
// For crossed-endian models (refin != refout) the CRC is bit-reflected
// before it is appended, matching the catalogue's convention that the
// characters of the received CRC are specially reflected.
func ResidueConstNaive(c *CRC, dataword []byte) uint64 {
	p := c.Params()
	crc := c.Checksum(dataword)
	if p.RefIn != p.RefOut {
		crc = ReverseBits(crc, p.Width)
	}
	n := (p.Width + 7) / 8
	if !p.RefIn && n*8 > p.Width {
		// big-endian transmission, align the value to the MSB
		crc <<= uint(n*8 - p.Width)
	}
	codeword := make([]byte, len(dataword), len(dataword)+n)
	copy(codeword, dataword)
	for i := 0; i < n; i++ {
		if p.RefIn {
			codeword = append(codeword, byte(crc>>uint(8*i)))
		} else {
			codeword = append(codeword, byte(crc>>uint(8*(n-1-i))))
		}
	}
	state := c.UpdateBits(c.Init(), codeword, len(dataword)*8+p.Width)
	return c.ResidueOf(state)
}
