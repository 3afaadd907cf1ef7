package anycrc

import (
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/bodgit/anycrc/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidueCrossValidation(t *testing.T) {
	for _, p := range Catalogue {
		crc, err := New(p)
		require.NoError(t, err, p.Name)

		analytic := ResidueConst(crc)
		naiveEmpty := ResidueConstNaive(crc, nil)
		naive := ResidueConstNaive(crc, []byte("hope it works..."))

		assert.Equal(t, p.Residue, analytic, p.Name)
		assert.Equal(t, analytic, naiveEmpty, p.Name)
		assert.Equal(t, analytic, naive, p.Name)
	}
}

func TestCrossedEndianResidue(t *testing.T) {
	// CRC-12/UMTS is the one catalogue entry with refin != refout.
	p, ok := Lookup("CRC-12/UMTS")
	require.True(t, ok)
	require.NotEqual(t, p.RefIn, p.RefOut)

	crc, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, p.Residue, ResidueConst(crc))
	assert.Equal(t, p.Residue, ResidueConstNaive(crc, []byte("x")))
}

// Codeword example from the RevEng catalogue documentation of
// CRC-32/CASTAGNOLI: a 32 byte dataword with its CRC appended.
const iscsiCodeword = "000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F4E79DD46"

func TestCodewordResidue(t *testing.T) {
	p, ok := Lookup("CRC-32/ISCSI")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)

	codeword, err := hex.DecodeString(iscsiCodeword)
	require.NoError(t, err)

	residue := crc.ResidueOf(crc.Update(crc.Init(), codeword))
	assert.Equal(t, uint64(0xb798b438), residue)
	assert.Equal(t, p.Residue, residue)

	corrupted := append([]byte(nil), codeword...)
	corrupted[0] = 0x60
	assert.Equal(t, uint64(0x199a76d2), crc.ResidueOf(crc.Update(crc.Init(), corrupted)))
}

// Drives the whole pipeline the way the CLI does: hex text through the input
// adapter, chunks chained through the engine, residue at the end.
func TestCodewordResidueFromHexStream(t *testing.T) {
	p, ok := Lookup("CRC-32/ISCSI")
	require.True(t, ok)
	crc, err := New(p)
	require.NoError(t, err)

	s, err := bitstream.New(strings.NewReader(iscsiCodeword), bitstream.Hex, p.RefIn)
	require.NoError(t, err)

	state := crc.Init()
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		state = crc.UpdateBits(state, chunk.Data, chunk.Bits)
	}
	assert.Equal(t, p.Residue, crc.ResidueOf(state))
}
