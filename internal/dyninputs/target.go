package dyninputs

import (
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// MaxTarget caps the slot count a counter value can ask for.
const MaxTarget = 1024

// targetFromValue interprets a counter widget value as a slot count. Null,
// unknown and non-numeric values count as zero; fractions are truncated;
// negatives are zero.
func targetFromValue(v cty.Value) int {
	if !v.IsKnown() || v.IsNull() {
		return 0
	}

	num, err := convert.Convert(v, cty.Number)
	if err != nil || !num.IsKnown() || num.IsNull() {
		return 0
	}

	var n int
	if err := gocty.FromCtyValue(num, &n); err != nil {
		// Fractional or out of int range.
		bf := num.AsBigFloat()
		if bf.IsInf() {
			if bf.Sign() > 0 {
				return MaxTarget
			}
			return 0
		}
		i, _ := bf.Int(new(big.Int))
		if !i.IsInt64() {
			if i.Sign() > 0 {
				return MaxTarget
			}
			return 0
		}
		n = int(i.Int64())
	}
	return min(max(n, 0), MaxTarget)
}

// sameValue reports whether two counter readings are indistinguishable.
func sameValue(a, b cty.Value) bool {
	aNull, bNull := a.IsNull(), b.IsNull()
	if aNull || bNull {
		return aNull && bNull
	}
	return a.RawEquals(b)
}
