package mathutil

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	//NativeOne represents a single unit of the native currency in base units, precision 12
	NativeOne = uint64(math.Pow10(12))
	//NativeOneDecimal represents a single unit of the native currency as decimal.Decimal
	NativeOneDecimal = decimal.NewFromInt(int64(NativeOne))
	//TokenOne represents a single unit of a tokenized asset in base units, precision 3
	TokenOne = uint64(math.Pow10(3))
	//TokenOneDecimal represents a single unit of a tokenized asset as decimal.Decimal
	TokenOneDecimal = decimal.NewFromInt(int64(TokenOne))
)

func init() {
	decimal.DivisionPrecision = 12
}

// NativeAmount converts an amount of base units to native display units.
func NativeAmount(baseUnits uint64) decimal.Decimal {
	return decimalFromUint(baseUnits).Div(NativeOneDecimal)
}

// TokenAmount converts an amount of base units to asset display units.
func TokenAmount(baseUnits uint64) decimal.Decimal {
	return decimalFromUint(baseUnits).Div(TokenOneDecimal)
}

// Ratio divides x by y as decimals, returning zero when y is zero.
func Ratio(x, y uint64) decimal.Decimal {
	if y == 0 {
		return decimal.Zero
	}
	return decimalFromUint(x).Div(decimalFromUint(y))
}

// BigAdd sums two uint64 numbers without intermediate overflow.
func BigAdd(x, y uint64) *big.Int {
	X, Y := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	return new(big.Int).Add(X, Y)
}

// BigSub subtracts y from x without intermediate overflow.
func BigSub(x, y uint64) *big.Int {
	X, Y := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	return new(big.Int).Sub(X, Y)
}

func decimalFromUint(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
