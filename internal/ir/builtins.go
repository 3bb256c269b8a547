package ir

import "math"

// foldFn evaluates one of the fixed Fn builtins (spec.md §3) over concrete
// arguments, constant-folding it away at intern time. Two of the five
// (sin_bits, cos_bits) and one (bit_rev) take a trailing bit-width operand;
// pow2/log2 are unary. The exact fixed-point encoding for sin_bits/cos_bits
// is an engineering choice the distilled spec leaves open; it is fixed
// here to an unsigned width-bit fixed-point value computed with
// math.Sin/math.Cos and rounded, so it is deterministic and reproducible
// across compiler runs (a requirement of Testable Property 4, idempotence).
func foldFn(op FnOp, args []uint64) (uint64, bool) {
	switch op {
	case Pow2:
		if len(args) != 1 || args[0] >= 64 {
			return 0, false
		}
		return uint64(1) << args[0], true
	case Log2:
		if len(args) != 1 || args[0] == 0 {
			return 0, false
		}
		v := args[0]
		var n uint64
		for v > 1 {
			v >>= 1
			n++
		}
		return n, true
	case SinBits:
		return trigBits(args, math.Sin)
	case CosBits:
		return trigBits(args, math.Cos)
	case BitRev:
		if len(args) != 2 || args[1] == 0 || args[1] > 64 {
			return 0, false
		}
		return bitRev(args[0], uint(args[1])), true
	default:
		return 0, false
	}
}

// trigBits maps a phase value (0..2^width, wrapping at a full turn) through
// f, rescaled into an unsigned width-bit fixed-point result in [0, 2^width).
func trigBits(args []uint64, f func(float64) float64) (uint64, bool) {
	if len(args) != 2 || args[1] == 0 || args[1] > 63 {
		return 0, false
	}
	phase, width := args[0], args[1]
	span := uint64(1) << width
	turn := float64(phase%span) / float64(span) * 2 * math.Pi
	scaled := (f(turn) + 1) / 2 * float64(span-1)
	return uint64(math.Round(scaled)), true
}

func bitRev(v uint64, width uint) uint64 {
	var out uint64
	for i := uint(0); i < width; i++ {
		if v&(1<<i) != 0 {
			out |= 1 << (width - 1 - i)
		}
	}
	return out
}
