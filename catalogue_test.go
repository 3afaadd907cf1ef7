package anycrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueSize(t *testing.T) {
	assert.True(t, len(Catalogue) >= 100)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("CRC-32/ISO-HDLC")
	require.True(t, ok)
	assert.Equal(t, uint64(0xcbf43926), p.Check)

	// aliases resolve to the same entry, case-insensitively
	alias, ok := Lookup("pkzip")
	require.True(t, ok)
	assert.Equal(t, p.Name, alias.Name)

	kermit, ok := Lookup("kermit")
	require.True(t, ok)
	assert.Equal(t, "CRC-16/KERMIT", kermit.Name)

	arc, ok := Lookup("CRC-16")
	require.True(t, ok)
	assert.Equal(t, "CRC-16/ARC", arc.Name)

	_, ok = Lookup("CRC-99/NOPE")
	assert.False(t, ok)
}
