package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// The ledger counts value in an integer base unit; humans write decimal
// amounts. Conversion is exact string arithmetic, never floating point,
// since rounding a price corrupts payments.

const baseDecimals = 18

var baseUnit = big.NewInt(params.Ether)

// ToBase converts a human decimal amount (e.g. "0.01") to base units.
// Amounts with more than 18 fractional digits or non-numeric input are
// rejected.
func ToBase(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	// SetString tolerates an embedded sign, so digits are checked first.
	if (whole == "" && frac == "") || !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > baseDecimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", amount, baseDecimals)
	}
	// Right-pad the fraction to 18 digits so whole+frac is the base amount.
	frac += strings.Repeat("0", baseDecimals-len(frac))

	w, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	f, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	result := new(big.Int).Mul(w, baseUnit)
	result.Add(result, f)
	if neg {
		result.Neg(result)
	}
	return result, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FromBase renders a base-unit value as a human decimal string with
// trailing zeros trimmed.
func FromBase(value *big.Int) string {
	if value == nil {
		return "0"
	}
	v := new(big.Int).Set(value)
	neg := v.Sign() < 0
	if neg {
		v.Neg(v)
	}

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(v, baseUnit, frac)

	out := whole.String()
	if frac.Sign() > 0 {
		digits := fmt.Sprintf("%0*s", baseDecimals, frac.String())
		digits = strings.TrimRight(digits, "0")
		out += "." + digits
	}
	if neg {
		out = "-" + out
	}
	return out
}
