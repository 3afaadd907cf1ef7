/*
Package anycrc computes cyclic redundancy checks for any parameter set of
the Rocksoft/RevEng model at widths from 1 to 64 bits, over inputs whose
length need not be a whole number of bytes.

Algorithms are described by a Params value, either taken from the built-in
catalogue or parsed from the catalogue's textual key=value format, and bound
into a reusable CRC unit with New or NewTableless. Computation is stateless:
the interim register value is threaded explicitly through Update calls, so
independent streams can share one unit concurrently.
*/
package anycrc

import "log"

// Manifest records and verifies file checksums against a manifest database.
type Manifest struct {
	db     *ManifestDB
	crc    *CRC
	name   string
	logger *log.Logger
}

// NewManifest returns a Manifest computing checksums with the given
// algorithm and storing them in db. Progress and mismatches are reported
// through logger.
func NewManifest(db *ManifestDB, p Params, logger *log.Logger) (*Manifest, error) {
	c, err := New(p)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		db:     db,
		crc:    c,
		name:   p.Name,
		logger: logger,
	}, nil
}
