package evm

import (
	"github.com/vultisig/xpay/internal/chain"
)

type Contracts struct {
	TokenBridge string
	CoreBridge  string
}

// DefaultContracts are the mainnet Wormhole deployments.
var DefaultContracts = map[chain.ID]Contracts{
	chain.Ethereum: {
		TokenBridge: "0x3ee18B2214AFF97000D974cf647E7C347E8fa585",
		CoreBridge:  "0x98f3c9e6E3fAce36bAAd05FE09d375Ef1464288B",
	},
	chain.Bsc: {
		TokenBridge: "0xB6F6D86a8f9879A9c87f643768d9efc38c1Da6E7",
		CoreBridge:  "0x98f3c9e6E3fAce36bAAd05FE09d375Ef1464288B",
	},
	chain.Polygon: {
		TokenBridge: "0x5a58505a96D1dbf8dF91cB21B54419FC36e93fdE",
		CoreBridge:  "0x7A4B5a56256163F07b2C80A7cA55aBE66c4ec4d7",
	},
	chain.Avalanche: {
		TokenBridge: "0x0e082F06FF657D94310cB8cE8B0D9a04541d8052",
		CoreBridge:  "0x54a8e5f9c4CbA08F9943965859F6c34eAF03E26c",
	},
}

// SupportedEVMChains returns the EVM chains with a known bridge deployment.
func SupportedEVMChains() []chain.ID {
	res := make([]chain.ID, 0, len(DefaultContracts))
	for _, info := range chain.All() {
		if _, ok := DefaultContracts[info.ID]; ok {
			res = append(res, info.ID)
		}
	}
	return res
}
