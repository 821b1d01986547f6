package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines length units used by configuration and the canvas backend.
// Layout itself works in device pixels; physical units are converted with a
// dots-per-millimetre factor.

// Unit represents the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // bare numbers
	UnitPX               // device pixels
	UnitMM               // millimeters
	UnitPT               // points
	UnitIN               // inches
)

// Conversion constants between pt, mm and inches.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4

	// DefaultDPMM is 96 dpi expressed in dots per millimetre.
	DefaultDPMM = 96 / InToMm
)

// String returns a short suffix for a Unit value.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitPT:
		return "pt"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimetres. Pixel lengths need dpmm.
func (l Length) ToMM(dpmm float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToMm
	case UnitIN:
		return l.Value * InToMm
	case UnitPX:
		if dpmm <= 0 {
			dpmm = DefaultDPMM
		}
		return l.Value / dpmm
	}
	return l.Value
}

// ToPT converts the length to points.
func (l Length) ToPT(dpmm float64) float64 {
	if l.Unit == UnitPT || l.Unit == UnitNone {
		return l.Value
	}
	return l.ToMM(dpmm) * MmToPt
}

// ToPX converts the length to device pixels.
func (l Length) ToPX(dpmm float64) float64 {
	if l.Unit == UnitPX || l.Unit == UnitNone {
		return l.Value
	}
	if dpmm <= 0 {
		dpmm = DefaultDPMM
	}
	return l.ToMM(dpmm) * dpmm
}

// ParseLength parses strings such as "14pt", "3.5mm", "12px" or "0.5in".
// A bare number keeps UnitNone and is read as points by ToPT.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"pt", UnitPT}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}
