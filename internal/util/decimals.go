package util

import (
	"math/big"
	"strings"
)

// IsNativeToken checks if the token address represents a chain's native token
func IsNativeToken(token string) bool {
	return token == "" || strings.EqualFold(token, "native") ||
		strings.EqualFold(token, "0x0000000000000000000000000000000000000000")
}

// FromBaseUnits converts base units to a human-readable amount
// e.g., "10000000" with 6 decimals -> "10"
func FromBaseUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()
	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	// Pad with leading zeros if needed
	if len(str) <= decimals {
		str = strings.Repeat("0", decimals-len(str)+1) + str
	}

	// Insert decimal point
	insertPos := len(str) - decimals
	whole := str[:insertPos]
	frac := str[insertPos:]

	// Remove trailing zeros from fractional part
	frac = strings.TrimRight(frac, "0")

	var result string
	if frac == "" {
		result = whole
	} else {
		result = whole + "." + frac
	}

	if negative {
		result = "-" + result
	}

	return result
}
