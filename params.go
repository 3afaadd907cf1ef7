package anycrc

import (
	"fmt"
	"strconv"
	"strings"
)

// Params describes one CRC algorithm using the convention of the RevEng CRC
// catalogue: Poly and Init are the unreflected (MSB-first) values, the
// engine reflects them internally. Check and Residue are reference constants
// used for self-testing; Name and Aliases identify the algorithm in the
// catalogue registry. A Params value is immutable once constructed.
type Params struct {
	Width   int
	Poly    uint64
	Init    uint64
	RefIn   bool
	RefOut  bool
	XorOut  uint64
	Check   uint64
	Residue uint64
	Name    string
	Aliases []string
}

// ParseError reports a malformed textual parameter description.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "anycrc: " + e.Reason
	}
	return fmt.Sprintf("anycrc: parameter %q: %s", e.Field, e.Reason)
}

// RangeError reports a parameter value that does not fit the declared width.
type RangeError struct {
	Field string
	Value uint64
	Width int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("anycrc: parameter %q: value %#x does not fit in %d bits", e.Field, e.Value, e.Width)
}

// ParseParams parses a flat "key=value ..." algorithm description as found
// in the RevEng catalogue, e.g.
//
//	width=16 poly=0x8005 refin=true refout=true check=0xbb3d name="CRC-16/ARC"
//
// Integers accept any base-prefixed literal form, booleans are
// case-insensitive true/false and alias is a comma-separated list. The width
// and poly keys are mandatory; an unknown key is an error. Values are
// range-checked against the declared width.
func ParseParams(s string) (Params, error) {
	m := make(map[string]string)
	for _, field := range strings.Fields(s) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return Params{}, &ParseError{Field: kv[0], Reason: "missing '=value'"}
		}
		switch kv[0] {
		case "width", "poly", "init", "refin", "refout", "xorout", "check", "residue", "name", "alias":
			m[kv[0]] = kv[1]
		default:
			return Params{}, &ParseError{Field: kv[0], Reason: "unknown parameter"}
		}
	}
	if _, ok := m["width"]; !ok {
		return Params{}, &ParseError{Field: "width", Reason: "required parameter is missing"}
	}
	if _, ok := m["poly"]; !ok {
		return Params{}, &ParseError{Field: "poly", Reason: "required parameter is missing"}
	}

	var p Params
	var err error

	width, err := parseInt(m, "width")
	if err != nil {
		return Params{}, err
	}
	p.Width = int(width)

	if p.Poly, err = parseInt(m, "poly"); err != nil {
		return Params{}, err
	}
	if p.Init, err = parseInt(m, "init"); err != nil {
		return Params{}, err
	}
	if p.XorOut, err = parseInt(m, "xorout"); err != nil {
		return Params{}, err
	}
	if p.Check, err = parseInt(m, "check"); err != nil {
		return Params{}, err
	}
	if p.Residue, err = parseInt(m, "residue"); err != nil {
		return Params{}, err
	}
	if p.RefIn, err = parseBool(m, "refin"); err != nil {
		return Params{}, err
	}
	if p.RefOut, err = parseBool(m, "refout"); err != nil {
		return Params{}, err
	}

	p.Name = "CUSTOM"
	if v, ok := m["name"]; ok {
		p.Name = unquote(v)
	}
	if v, ok := m["alias"]; ok {
		for _, a := range strings.Split(unquote(v), ",") {
			if a != "" {
				p.Aliases = append(p.Aliases, a)
			}
		}
	}

	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) validate() error {
	if p.Width < 1 || p.Width > 64 {
		return &ParseError{Field: "width", Reason: fmt.Sprintf("must be between 1 and 64, got %d", p.Width)}
	}
	for _, f := range []struct {
		name  string
		value uint64
	}{
		{"poly", p.Poly},
		{"init", p.Init},
		{"xorout", p.XorOut},
		{"check", p.Check},
		{"residue", p.Residue},
	} {
		if p.Width < 64 && f.value>>uint(p.Width) != 0 {
			return &RangeError{Field: f.name, Value: f.value, Width: p.Width}
		}
	}
	return nil
}

func parseInt(m map[string]string, key string) (uint64, error) {
	s, ok := m[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, &ParseError{Field: key, Reason: fmt.Sprintf("invalid integer value %q", s)}
	}
	return v, nil
}

func parseBool(m map[string]string, key string) (bool, error) {
	s, ok := m[key]
	if !ok {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ParseError{Field: key, Reason: fmt.Sprintf("invalid bool value %q", s)}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
