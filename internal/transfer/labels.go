package transfer

import (
	"math/big"

	"github.com/vultisig/xpay/internal/util"
)

// ActualAmountReadable renders the quoted raw amount in whole units of the
// source asset. It is empty until both are known.
func ActualAmountReadable(st *State) string {
	amount, ok := st.ActualAmount()
	if !ok {
		return ""
	}
	parsed, ok := st.SourceParsedAccount.Value()
	if !ok || parsed.Decimals == 0 {
		return ""
	}
	return util.FromBaseUnits(amount, int(parsed.Decimals))
}

// ApproveLabel is the caption of the approval action.
func ApproveLabel(st *State, unlimited bool) string {
	if unlimited {
		return "Approve Unlimited Tokens"
	}
	readable := ActualAmountReadable(st)
	amount, ok := st.ActualAmount()
	if readable == "" && ok {
		readable = amount.String()
	}

	one := false
	if parsed, pok := st.SourceParsedAccount.Value(); ok && pok {
		unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(parsed.Decimals)), nil)
		one = amount.Cmp(unit) == 0
	}
	if one {
		return "Approve " + readable + " Token"
	}
	return "Approve " + readable + " Tokens"
}
