package chain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ID is the Wormhole chain id.
type ID uint16

const (
	Unset     ID = 0
	Solana    ID = 1
	Ethereum  ID = 2
	Terra     ID = 3
	Bsc       ID = 4
	Polygon   ID = 5
	Avalanche ID = 6
	Aurora    ID = 9
	Fantom    ID = 10
	Celo      ID = 14
	Near      ID = 15
	Moonbeam  ID = 16
	Aptos     ID = 22
	Arbitrum  ID = 23
	Optimism  ID = 24
	Base      ID = 30
)

type Info struct {
	ID   ID
	Name string
	Kind Kind
	// EvmChainID is the EIP-155 id, zero for non-EVM chains.
	EvmChainID uint64
	// NativeDecimals of the gas token.
	NativeDecimals uint8
}

var infos = map[ID]Info{
	Solana:    {ID: Solana, Name: "Solana", Kind: KindSolana, NativeDecimals: 9},
	Ethereum:  {ID: Ethereum, Name: "Ethereum", Kind: KindEVM, EvmChainID: 1, NativeDecimals: 18},
	Terra:     {ID: Terra, Name: "Terra", Kind: KindTerra, NativeDecimals: 6},
	Bsc:       {ID: Bsc, Name: "BinanceSmartChain", Kind: KindEVM, EvmChainID: 56, NativeDecimals: 18},
	Polygon:   {ID: Polygon, Name: "Polygon", Kind: KindEVM, EvmChainID: 137, NativeDecimals: 18},
	Avalanche: {ID: Avalanche, Name: "Avalanche", Kind: KindEVM, EvmChainID: 43114, NativeDecimals: 18},
	Aurora:    {ID: Aurora, Name: "Aurora", Kind: KindEVM, EvmChainID: 1313161554, NativeDecimals: 18},
	Fantom:    {ID: Fantom, Name: "Fantom", Kind: KindEVM, EvmChainID: 250, NativeDecimals: 18},
	Celo:      {ID: Celo, Name: "Celo", Kind: KindEVM, EvmChainID: 42220, NativeDecimals: 18},
	Near:      {ID: Near, Name: "Near", Kind: KindNear, NativeDecimals: 24},
	Moonbeam:  {ID: Moonbeam, Name: "Moonbeam", Kind: KindEVM, EvmChainID: 1284, NativeDecimals: 18},
	Aptos:     {ID: Aptos, Name: "Aptos", Kind: KindAptos, NativeDecimals: 8},
	Arbitrum:  {ID: Arbitrum, Name: "Arbitrum", Kind: KindEVM, EvmChainID: 42161, NativeDecimals: 18},
	Optimism:  {ID: Optimism, Name: "Optimism", Kind: KindEVM, EvmChainID: 10, NativeDecimals: 18},
	Base:      {ID: Base, Name: "Base", Kind: KindEVM, EvmChainID: 8453, NativeDecimals: 18},
}

func Lookup(id ID) (Info, bool) {
	info, ok := infos[id]
	return info, ok
}

// Parse accepts either a chain name (case-insensitive) or its numeric id.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	for id, info := range infos {
		if strings.EqualFold(info.Name, s) {
			return id, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		if _, ok := infos[ID(n)]; ok {
			return ID(n), nil
		}
	}
	return Unset, fmt.Errorf("unknown chain: %s", s)
}

func (id ID) String() string {
	if info, ok := infos[id]; ok {
		return info.Name
	}
	return fmt.Sprintf("chain(%d)", uint16(id))
}

func (id ID) IsEVM() bool {
	info, ok := infos[id]
	return ok && info.Kind == KindEVM
}

// All returns every known chain ordered by id.
func All() []Info {
	res := make([]Info, 0, len(infos))
	for _, info := range infos {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
