package anycrc

import "hash"

type digest struct {
	crc uint64
	c   *CRC
}

// NewHash returns a streaming hash.Hash computing c. Its Sum method lays the
// final value out in big-endian byte order using the minimal number of bytes
// for the width.
func (c *CRC) NewHash() hash.Hash {
	return &digest{c.refInit, c}
}

func (d *digest) Size() int { return (d.c.params.Width + 7) / 8 }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.crc = d.c.refInit }

func (d *digest) Write(p []byte) (n int, err error) {
	d.crc = d.c.Update(d.crc, p)
	return len(p), nil
}

// Sum64 returns the current CRC value zero-extended to 64 bits.
func (d *digest) Sum64() uint64 { return d.c.Finalize(d.crc) }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum64()
	for i := d.Size() - 1; i >= 0; i-- {
		in = append(in, byte(s>>uint(8*i)))
	}
	return in
}
