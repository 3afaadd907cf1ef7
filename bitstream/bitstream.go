/*
Package bitstream adapts raw, hexadecimal and binary-digit encodings of an
input stream into the (bytes, bit count) chunks a CRC engine consumes,
including inputs whose length is not a whole number of bytes.

Text encodings declare their own bit order. When it disagrees with the CRC
algorithm's input order a trailing partial unit cannot be completed until
more digits arrive, so it is carried across reads; when the orders agree the
trailing unit is zero-padded immediately instead.
*/
package bitstream

import (
	"fmt"
	"io"
)

// Format selects the encoding of the underlying stream.
type Format int

const (
	// Raw passes bytes through untouched.
	Raw Format = iota
	// Hex is hexadecimal text, most significant nibble first.
	Hex
	// LSBHex is hexadecimal text, least significant nibble first.
	LSBHex
	// Bin is binary-digit text, most significant bit first.
	Bin
	// LSBBin is binary-digit text, least significant bit first.
	LSBBin
)

const (
	textChunkSize = 16 * 1024
	rawChunkSize  = 128 * 1024
)

// A Chunk pairs a byte sequence with the number of bits of it that are
// valid. Valid bits always start at the beginning of the sequence; a partial
// trailing byte is zero in its unused positions.
type Chunk struct {
	Data []byte
	Bits int
}

// Scanner is a finite, single-pass producer of chunks. Next returns io.EOF
// once the underlying stream is exhausted. A scanner is not restartable and
// any error it returns is sticky.
type Scanner interface {
	Next() (Chunk, error)
}

// InvalidCharacterError reports a character outside the encoding's alphabet.
type InvalidCharacterError struct {
	Allowed string
}

func (e *InvalidCharacterError) Error() string {
	return "invalid input character - allowed characters: " + e.Allowed
}

// IncompleteInputError reports a trailing fragment that could not be
// completed into a whole byte before the stream ended. Direction names the
// side of the byte left incomplete in the stream's own bit order.
type IncompleteInputError struct {
	Direction string
	Fragment  string
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("unconsumed %s at the end of input stream: %s", e.Direction, e.Fragment)
}

// New returns a scanner decoding r according to format. refin is the bit
// order of the CRC algorithm's input: text formats whose declared bit order
// differs from it defer partial trailing units instead of padding them.
func New(r io.Reader, format Format, refin bool) (Scanner, error) {
	switch format {
	case Raw:
		return &rawScanner{r: r}, nil
	case Hex, LSBHex:
		return &hexScanner{r: r, lsbFirst: format == LSBHex, refin: refin}, nil
	case Bin, LSBBin:
		return &binScanner{r: r, lsbFirst: format == LSBBin, refin: refin}, nil
	}
	return nil, fmt.Errorf("bitstream: unknown format %d", format)
}

type rawScanner struct {
	r   io.Reader
	buf []byte
}

func (s *rawScanner) Next() (Chunk, error) {
	if s.buf == nil {
		s.buf = make([]byte, rawChunkSize)
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, s.buf[:n])
			return Chunk{Data: data, Bits: n * 8}, nil
		}
		if err != nil {
			return Chunk{}, err
		}
	}
}

type hexScanner struct {
	r        io.Reader
	lsbFirst bool
	refin    bool
	buf      []byte
	leftover []byte
	err      error
}

func (s *hexScanner) Next() (Chunk, error) {
	if s.err != nil {
		return Chunk{}, s.err
	}
	if s.buf == nil {
		s.buf = make([]byte, textChunkSize)
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			digits := append([]byte(nil), s.leftover...)
			s.leftover = nil
			for _, c := range s.buf[:n] {
				switch {
				case isSpace(c):
				case isHexDigit(c):
					digits = append(digits, c)
				default:
					s.err = &InvalidCharacterError{Allowed: "hex digits, whitespace"}
					return Chunk{}, s.err
				}
			}
			numBits := len(digits) * 4
			if len(digits)&1 != 0 {
				if s.lsbFirst != s.refin {
					s.leftover = append([]byte(nil), digits[len(digits)-1:]...)
					digits = digits[:len(digits)-1]
					if len(digits) == 0 {
						continue
					}
					numBits = len(digits) * 4
				} else {
					digits = append(digits, '0')
				}
			}
			data := make([]byte, len(digits)/2)
			for i := range data {
				hi, lo := digits[2*i], digits[2*i+1]
				if s.lsbFirst {
					hi, lo = lo, hi
				}
				data[i] = hexVal(hi)<<4 | hexVal(lo)
			}
			return Chunk{Data: data, Bits: numBits}, nil
		}
		if err == nil {
			continue
		}
		if err == io.EOF && len(s.leftover) != 0 {
			// The CRC algorithm consumes only completed bytes, so a
			// lone nibble from the mismatched-order stream is stuck.
			direction := "upper nibble"
			if s.lsbFirst {
				direction = "lower nibble"
			}
			err = &IncompleteInputError{Direction: direction, Fragment: string(s.leftover)}
		}
		s.err = err
		return Chunk{}, err
	}
}

type binScanner struct {
	r        io.Reader
	lsbFirst bool
	refin    bool
	buf      []byte
	leftover []byte
	err      error
}

func (s *binScanner) Next() (Chunk, error) {
	if s.err != nil {
		return Chunk{}, s.err
	}
	if s.buf == nil {
		s.buf = make([]byte, textChunkSize)
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			digits := append([]byte(nil), s.leftover...)
			s.leftover = nil
			for _, c := range s.buf[:n] {
				switch {
				case isSpace(c):
				case c == '0' || c == '1':
					digits = append(digits, c)
				default:
					s.err = &InvalidCharacterError{Allowed: "'0', '1', whitespace"}
					return Chunk{}, s.err
				}
			}
			numBits := len(digits)
			if rem := numBits & 7; rem != 0 {
				if s.lsbFirst != s.refin {
					s.leftover = append([]byte(nil), digits[numBits-rem:]...)
					digits = digits[:numBits-rem]
					if len(digits) == 0 {
						continue
					}
					numBits = len(digits)
				} else {
					for i := rem; i < 8; i++ {
						digits = append(digits, '0')
					}
				}
			}
			data := make([]byte, len(digits)/8)
			for i := range data {
				var b byte
				for j, c := range digits[8*i : 8*i+8] {
					if c != '1' {
						continue
					}
					if s.lsbFirst {
						b |= 1 << uint(j)
					} else {
						b |= 1 << uint(7-j)
					}
				}
				data[i] = b
			}
			return Chunk{Data: data, Bits: numBits}, nil
		}
		if err == nil {
			continue
		}
		if err == io.EOF && len(s.leftover) != 0 {
			direction := "most significant bits"
			if s.lsbFirst {
				direction = "least significant bits"
			}
			err = &IncompleteInputError{Direction: direction, Fragment: string(s.leftover)}
		}
		s.err = err
		return Chunk{}, err
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c >= 'a':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
