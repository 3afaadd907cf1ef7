package bitstream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader hands out one element of reads per Read call, mimicking a
// source where every read returns a short piece.
type chunkedReader struct {
	reads []string
	index int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.index >= len(r.reads) {
		return 0, io.EOF
	}
	n := copy(p, r.reads[r.index])
	r.index++
	return n, nil
}

func collect(s Scanner) ([]Chunk, error) {
	var chunks []Chunk
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
}

func TestRawScanner(t *testing.T) {
	s, err := New(&chunkedReader{reads: []string{"abc", "de"}}, Raw, false)
	require.NoError(t, err)

	chunks, err := collect(s)
	require.NoError(t, err)
	assert.Equal(t, []Chunk{
		{[]byte("abc"), 24},
		{[]byte("de"), 16},
	}, chunks)
}

func TestHexScanner(t *testing.T) {
	tests := []struct {
		name   string
		reads  []string
		format Format
		refin  bool
		want   []Chunk
	}{
		{
			name:   "msb stream, msb crc input",
			reads:  []string{"AF", "0", "9", "5"},
			format: Hex,
			want:   []Chunk{{[]byte{0xaf}, 8}, {[]byte{0x00}, 4}, {[]byte{0x90}, 4}, {[]byte{0x50}, 4}},
		},
		{
			name:   "msb stream, lsb crc input",
			reads:  []string{"af", "0", "9"},
			format: Hex,
			refin:  true,
			want:   []Chunk{{[]byte{0xaf}, 8}, {[]byte{0x09}, 8}},
		},
		{
			name:   "lsb stream, lsb crc input",
			reads:  []string{"AF", "0", "9", "5"},
			format: LSBHex,
			refin:  true,
			want:   []Chunk{{[]byte{0xfa}, 8}, {[]byte{0x00}, 4}, {[]byte{0x09}, 4}, {[]byte{0x05}, 4}},
		},
		{
			name:   "lsb stream, msb crc input",
			reads:  []string{"af", "0", "9"},
			format: LSBHex,
			want:   []Chunk{{[]byte{0xfa}, 8}, {[]byte{0x90}, 8}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&chunkedReader{reads: tt.reads}, tt.format, tt.refin)
			require.NoError(t, err)
			chunks, err := collect(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, chunks)
		})
	}
}

func TestHexScannerWhitespace(t *testing.T) {
	s, err := New(strings.NewReader(" a\tf \n09\r\n"), Hex, false)
	require.NoError(t, err)

	chunks, err := collect(s)
	require.NoError(t, err)
	assert.Equal(t, []Chunk{{[]byte{0xaf, 0x09}, 16}}, chunks)
}

func TestHexScannerUnconsumedNibble(t *testing.T) {
	s, err := New(&chunkedReader{reads: []string{"af", "0", "9", "5"}}, Hex, true)
	require.NoError(t, err)
	_, err = collect(s)
	var incomplete *IncompleteInputError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "upper nibble", incomplete.Direction)
	assert.Equal(t, "5", incomplete.Fragment)
	assert.EqualError(t, err, "unconsumed upper nibble at the end of input stream: 5")

	s, err = New(&chunkedReader{reads: []string{"af", "0", "9", "5"}}, LSBHex, false)
	require.NoError(t, err)
	_, err = collect(s)
	assert.EqualError(t, err, "unconsumed lower nibble at the end of input stream: 5")
}

func TestHexScannerInvalidCharacter(t *testing.T) {
	s, err := New(strings.NewReader("afx9"), Hex, false)
	require.NoError(t, err)
	_, err = collect(s)
	var invalid *InvalidCharacterError
	require.True(t, errors.As(err, &invalid))
	assert.EqualError(t, err, "invalid input character - allowed characters: hex digits, whitespace")

	// the error is sticky
	_, err = s.Next()
	assert.Error(t, err)
}

func TestBinScanner(t *testing.T) {
	tests := []struct {
		name   string
		reads  []string
		format Format
		refin  bool
		want   []Chunk
	}{
		{
			name:   "msb stream, msb crc input",
			reads:  []string{"10000000", "0100", "001", "0101"},
			format: Bin,
			want:   []Chunk{{[]byte{0x80}, 8}, {[]byte{0x40}, 4}, {[]byte{0x20}, 3}, {[]byte{0x50}, 4}},
		},
		{
			name:   "msb stream, lsb crc input",
			reads:  []string{"10000000", "0100", "001", "1"},
			format: Bin,
			refin:  true,
			want:   []Chunk{{[]byte{0x80}, 8}, {[]byte{0x43}, 8}},
		},
		{
			name:   "lsb stream, lsb crc input",
			reads:  []string{"10000000", "0100", "001", "0101"},
			format: LSBBin,
			refin:  true,
			want:   []Chunk{{[]byte{0x01}, 8}, {[]byte{0x02}, 4}, {[]byte{0x04}, 3}, {[]byte{0x0a}, 4}},
		},
		{
			name:   "lsb stream, msb crc input",
			reads:  []string{"10000000", "0100", "001", "1"},
			format: LSBBin,
			want:   []Chunk{{[]byte{0x01}, 8}, {[]byte{0xc2}, 8}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&chunkedReader{reads: tt.reads}, tt.format, tt.refin)
			require.NoError(t, err)
			chunks, err := collect(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, chunks)
		})
	}
}

func TestBinScannerUnconsumedBits(t *testing.T) {
	s, err := New(&chunkedReader{reads: []string{"10000000", "0100", "001", "0011"}}, Bin, true)
	require.NoError(t, err)
	_, err = collect(s)
	var incomplete *IncompleteInputError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "011", incomplete.Fragment)
	assert.EqualError(t, err, "unconsumed most significant bits at the end of input stream: 011")

	s, err = New(&chunkedReader{reads: []string{"10000000", "0100", "001", "0011"}}, LSBBin, false)
	require.NoError(t, err)
	_, err = collect(s)
	assert.EqualError(t, err, "unconsumed least significant bits at the end of input stream: 011")
}

func TestBinScannerInvalidCharacter(t *testing.T) {
	s, err := New(strings.NewReader("0102"), Bin, false)
	require.NoError(t, err)
	_, err = collect(s)
	var invalid *InvalidCharacterError
	require.True(t, errors.As(err, &invalid))
	assert.EqualError(t, err, "invalid input character - allowed characters: '0', '1', whitespace")
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(strings.NewReader(""), Format(99), false)
	assert.Error(t, err)
}
