// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package convert

import (
	"math"
)

// minifloat describes a narrow IEEE 754 style binary format.
//
// Format (1 + expBits + mantBits bits):
//   - Top bit:   Sign
//   - Next bits: Exponent (biased)
//   - Low bits:  Mantissa
//
// Special values follow IEEE 754: an all-ones exponent is Inf (mantissa 0) or
// NaN, a zero exponent is zero or subnormal.
type minifloat struct {
	expBits  uint
	mantBits uint
	bias     int
}

var (
	// fp8E4M3 is the 1-byte float layout (max normal 240).
	fp8E4M3 = minifloat{expBits: 4, mantBits: 3, bias: 7}
	// float16 is IEEE 754 binary16 (max normal 65504).
	float16 = minifloat{expBits: 5, mantBits: 10, bias: 15}
)

func (m minifloat) maxExp() uint32 {
	return 1<<m.expBits - 1
}

// decode converts raw bits to float32.
func (m minifloat) decode(bits uint32) float32 {
	sign := (bits >> (m.expBits + m.mantBits)) & 1
	exponent := (bits >> m.mantBits) & m.maxExp()
	mantissa := bits & (1<<m.mantBits - 1)

	var value float64
	switch {
	case exponent == m.maxExp():
		if mantissa != 0 {
			return float32(math.NaN())
		}
		value = math.Inf(1)
	case exponent == 0:
		// Subnormal: 0.mantissa x 2^(1-bias).
		value = math.Ldexp(float64(mantissa), 1-m.bias-int(m.mantBits)) //nolint:gosec // G115: small constants
	default:
		// Normal: 1.mantissa x 2^(exp-bias).
		value = math.Ldexp(float64(mantissa|1<<m.mantBits), int(exponent)-m.bias-int(m.mantBits)) //nolint:gosec // G115: small constants
	}
	if sign == 1 {
		value = -value
	}
	return float32(value)
}

// encode converts float32 to raw bits, rounding to nearest even.
func (m minifloat) encode(f float32) uint32 {
	signShift := m.expBits + m.mantBits
	v := float64(f)

	var sign uint32
	if math.Signbit(v) {
		sign = 1 << signShift
		v = -v
	}

	switch {
	case math.IsNaN(v):
		return m.maxExp()<<m.mantBits | 1<<(m.mantBits-1)
	case math.IsInf(v, 0):
		return sign | m.maxExp()<<m.mantBits
	case v == 0:
		return sign
	}

	frac, exp := math.Frexp(v) // v = frac x 2^exp, frac in [0.5, 1)
	biased := exp - 1 + m.bias

	if biased <= 0 {
		// Subnormal. A result of 1<<mantBits rolls into the smallest normal.
		mant := math.RoundToEven(math.Ldexp(v, m.bias-1+int(m.mantBits))) //nolint:gosec // G115: small constants
		return sign | uint32(mant)
	}

	mant := math.RoundToEven((frac*2 - 1) * float64(uint32(1)<<m.mantBits))
	if mant >= float64(uint32(1)<<m.mantBits) {
		mant = 0
		biased++
	}
	if biased >= int(m.maxExp()) {
		return sign | m.maxExp()<<m.mantBits
	}
	return sign | uint32(biased)<<m.mantBits | uint32(mant) //nolint:gosec // G115: range checked above
}

// Float16ToFloat32 decodes an IEEE 754 binary16 value.
func Float16ToFloat32(bits uint16) float32 {
	return float16.decode(uint32(bits))
}

// Float32ToFloat16 encodes an IEEE 754 binary16 value.
func Float32ToFloat16(f float32) uint16 {
	return uint16(float16.encode(f)) //nolint:gosec // G115: 16-bit layout
}

// FP8ToFloat32 decodes a 1-byte E4M3 value.
func FP8ToFloat32(bits uint8) float32 {
	return fp8E4M3.decode(uint32(bits))
}

// Float32ToFP8 encodes a 1-byte E4M3 value.
func Float32ToFP8(f float32) uint8 {
	return uint8(fp8E4M3.encode(f)) //nolint:gosec // G115: 8-bit layout
}
