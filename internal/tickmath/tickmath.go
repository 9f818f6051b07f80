package tickmath

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the minimum tick that may be passed to GetSqrtRatioAtTick.
	MinTick = -887272
	// MaxTick is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MaxTick = -MinTick
)

var (
	// MinSqrtRatio is GetSqrtRatioAtTick(MinTick).
	MinSqrtRatio = uint256.NewInt(4295128739)
	// MaxSqrtRatio is GetSqrtRatioAtTick(MaxTick).
	MaxSqrtRatio = mustDec("1461446703485210103287273052203988822378723970342")

	ErrTickOutOfRange  = errors.New("tick out of range")
	ErrPriceOutOfRange = errors.New("sqrt price out of range")
)

var (
	one        = uint256.NewInt(1)
	maxUint256 = new(uint256.Int).Not(new(uint256.Int))
	mask32     = uint256.NewInt(0xffffffff)

	// sqrtFactors[i] is sqrt(1.0001^-(2^i)) in UQ128.128, used to assemble
	// the ratio from the binary digits of |tick|.
	sqrtFactors = [20]*uint256.Int{
		mustHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		mustHex("0xfff97272373d413259a46990580e213a"),
		mustHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		mustHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		mustHex("0xffcb9843d60f6159c9db58835c926644"),
		mustHex("0xff973b41fa98c081472e6896dfb254c0"),
		mustHex("0xff2ea16466c96a3843ec78b326b52861"),
		mustHex("0xfe5dee046a99a2a811c461f1969c3053"),
		mustHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		mustHex("0xf987a7253ac413176f2b074cf7815e54"),
		mustHex("0xf3392b0822b70005940c7a398e4b70f3"),
		mustHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		mustHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		mustHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		mustHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		mustHex("0x31be135f97d08fd981231505542fcfa6"),
		mustHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		mustHex("0x5d6af8dedb81196699c329225ee604"),
		mustHex("0x2216e584f5fa1ea926041bedfe98"),
		mustHex("0x48a170391f7dc42444e8fa2"),
	}

	q128One = mustHex("0x100000000000000000000000000000000")

	magicSqrt10001 = mustHex("0x3627a301d71055774c85")
	magicTickLow   = mustHex("0x28f6481ab7f045a5af012a19d003aaa")
	magicTickHigh  = mustHex("0xdb2df09e81959a81455e260799a0632f")
)

func mustHex(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

func mustDec(s string) *uint256.Int {
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		panic(err)
	}
	return v
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as a Q64.96 value.
// The Q128.128 intermediate is right-shifted by 32 with any fractional
// remainder rounded up, so the returned price never understates the tick
// boundary.
func GetSqrtRatioAtTick(tick int) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: %d", ErrTickOutOfRange, tick)
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(sqrtFactors[0])
	} else {
		ratio.Set(q128One)
	}
	for i := 1; i < len(sqrtFactors); i++ {
		if absTick&(1<<i) != 0 {
			ratio.Mul(ratio, sqrtFactors[i]).Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up.
	remainder := new(uint256.Int).And(ratio, mask32)
	ratio.Rsh(ratio, 32)
	if !remainder.IsZero() {
		ratio.Add(ratio, one)
	}
	return ratio, nil
}

// GetTickAtSqrtRatio returns the greatest tick whose ratio is at most
// sqrtPriceX96. It takes an integer log2 of the price (most significant bit
// plus fourteen bits of binary-fraction refinement), scales it by
// log2(1.0001)^-1 into lower/upper tick candidates and resolves the pair
// against GetSqrtRatioAtTick.
func GetTickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int, error) {
	if sqrtPriceX96.Lt(MinSqrtRatio) || !sqrtPriceX96.Lt(MaxSqrtRatio) {
		return 0, fmt.Errorf("%w: %s", ErrPriceOutOfRange, sqrtPriceX96.Dec())
	}

	ratio := new(uint256.Int).Lsh(sqrtPriceX96, 32)
	msb := ratio.BitLen() - 1

	r := new(uint256.Int)
	if msb >= 128 {
		r.Rsh(ratio, uint(msb-127))
	} else {
		r.Lsh(ratio, uint(127-msb))
	}

	// log2 of the price as a signed Q64.64, two's complement.
	log2 := new(uint256.Int)
	if msb >= 128 {
		log2.SetUint64(uint64(msb - 128)).Lsh(log2, 64)
	} else {
		log2.SetUint64(uint64(128 - msb)).Lsh(log2, 64)
		log2.Neg(log2)
	}

	f := new(uint256.Int)
	for i := 0; i < 14; i++ {
		r.Mul(r, r).Rsh(r, 127)
		f.Rsh(r, 128)
		log2.Or(log2, new(uint256.Int).Lsh(f, uint(63-i)))
		r.Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := new(uint256.Int).Mul(log2, magicSqrt10001)

	tickLow := signedShift128(new(uint256.Int).Sub(logSqrt10001, magicTickLow))
	tickHigh := signedShift128(new(uint256.Int).Add(logSqrt10001, magicTickHigh))

	if tickLow == tickHigh {
		return tickLow, nil
	}

	ratioAtHigh, err := GetSqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if !sqrtPriceX96.Lt(ratioAtHigh) {
		return tickHigh, nil
	}
	return tickLow, nil
}

// signedShift128 arithmetic-shifts a two's-complement 256-bit value right by
// 128 and narrows it to int; callers only pass values whose result fits a
// tick index.
func signedShift128(v *uint256.Int) int {
	shifted := new(uint256.Int).SRsh(v, 128)
	return int(int64(shifted.Uint64()))
}

// NearestUsableTick rounds tick to the nearest multiple of tickSpacing,
// halves toward positive infinity, clamped so the result stays inside
// [MinTick, MaxTick].
func NearestUsableTick(tick, tickSpacing int) int {
	remainder := ((tick % tickSpacing) + tickSpacing) % tickSpacing
	rounded := tick - remainder
	if 2*remainder >= tickSpacing {
		rounded += tickSpacing
	}
	if rounded < MinTick {
		rounded += tickSpacing
	} else if rounded > MaxTick {
		rounded -= tickSpacing
	}
	return rounded
}
