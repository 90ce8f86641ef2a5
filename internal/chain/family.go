package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

type Kind int

const (
	KindEVM Kind = iota + 1
	KindSolana
	KindTerra
	KindNear
	KindAptos
)

func (k Kind) String() string {
	switch k {
	case KindEVM:
		return "evm"
	case KindSolana:
		return "solana"
	case KindTerra:
		return "terra"
	case KindNear:
		return "near"
	case KindAptos:
		return "aptos"
	default:
		return "unknown"
	}
}

// Family converts between a chain's native address form and the fixed
// 32-byte hex form carried in cross-chain transfer messages.
type Family interface {
	Kind() Kind
	CanonicalHex(native string) (string, error)
	Native(hexAddr string) (string, error)
	// Readable renders hexAddr for display. identity is the locally held
	// account identity for the chain, empty when none is connected.
	Readable(hexAddr, identity string) string
}

var families = map[Kind]Family{
	KindEVM:    evmFamily{},
	KindSolana: solanaFamily{},
	KindTerra:  terraFamily{hrp: "terra"},
	KindNear:   nearFamily{},
	KindAptos:  aptosFamily{},
}

func FamilyOf(id ID) (Family, error) {
	info, ok := infos[id]
	if !ok {
		return nil, fmt.Errorf("unknown chain: %d", uint16(id))
	}
	f, ok := families[info.Kind]
	if !ok {
		return nil, fmt.Errorf("no address family for chain: %s", id)
	}
	return f, nil
}

func decode32(hexAddr string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(hexAddr, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex address: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("expected 32-byte address, got %d bytes", len(b))
	}
	return b, nil
}

func pad32(b []byte) (string, error) {
	if len(b) > 32 {
		return "", fmt.Errorf("address longer than 32 bytes: %d", len(b))
	}
	return hex.EncodeToString(ecommon.LeftPadBytes(b, 32)), nil
}

type evmFamily struct{}

func (evmFamily) Kind() Kind { return KindEVM }

func (evmFamily) CanonicalHex(native string) (string, error) {
	if !ecommon.IsHexAddress(native) {
		return "", fmt.Errorf("invalid EVM address: %s", native)
	}
	return pad32(ecommon.HexToAddress(native).Bytes())
}

func (evmFamily) Native(hexAddr string) (string, error) {
	b, err := decode32(hexAddr)
	if err != nil {
		return "", err
	}
	return ecommon.BytesToAddress(b[12:]).Hex(), nil
}

func (f evmFamily) Readable(hexAddr, _ string) string {
	return nativeOrRaw(f, hexAddr)
}

type solanaFamily struct{}

func (solanaFamily) Kind() Kind { return KindSolana }

func (solanaFamily) CanonicalHex(native string) (string, error) {
	b, err := base58.Decode(native)
	if err != nil {
		return "", fmt.Errorf("invalid Solana address: %w", err)
	}
	if len(b) != 32 {
		return "", fmt.Errorf("invalid Solana address length: %d", len(b))
	}
	return hex.EncodeToString(b), nil
}

func (solanaFamily) Native(hexAddr string) (string, error) {
	b, err := decode32(hexAddr)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

func (f solanaFamily) Readable(hexAddr, _ string) string {
	return nativeOrRaw(f, hexAddr)
}

type terraFamily struct {
	hrp string
}

func (terraFamily) Kind() Kind { return KindTerra }

func (f terraFamily) CanonicalHex(native string) (string, error) {
	hrp, data, err := bech32.Decode(native)
	if err != nil {
		return "", fmt.Errorf("invalid Terra address: %w", err)
	}
	if hrp != f.hrp {
		return "", fmt.Errorf("unexpected bech32 prefix: %s", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("failed to convert bech32 data: %w", err)
	}
	return pad32(raw)
}

func (f terraFamily) Native(hexAddr string) (string, error) {
	b, err := decode32(hexAddr)
	if err != nil {
		return "", err
	}
	raw := b
	// account addresses are 20 bytes, contract addresses use all 32
	if isZero(b[:12]) {
		raw = b[12:]
	}
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	return bech32.Encode(f.hrp, conv)
}

func (f terraFamily) Readable(hexAddr, _ string) string {
	return nativeOrRaw(f, hexAddr)
}

// nearFamily addresses accounts by the sha256 of the account id, the same
// derivation used for emitter addresses.
type nearFamily struct{}

func (nearFamily) Kind() Kind { return KindNear }

func (nearFamily) CanonicalHex(native string) (string, error) {
	if native == "" {
		return "", fmt.Errorf("empty NEAR account id")
	}
	return HashAccountID(native), nil
}

func (nearFamily) Native(hexAddr string) (string, error) {
	if _, err := decode32(hexAddr); err != nil {
		return "", err
	}
	return strings.TrimPrefix(hexAddr, "0x"), nil
}

func (nearFamily) Readable(hexAddr, identity string) string {
	if identity != "" && HashAccountID(identity) == strings.ToLower(strings.TrimPrefix(hexAddr, "0x")) {
		return identity
	}
	return hexAddr
}

func HashAccountID(accountID string) string {
	sum := sha256.Sum256([]byte(accountID))
	return hex.EncodeToString(sum[:])
}

type aptosFamily struct{}

func (aptosFamily) Kind() Kind { return KindAptos }

func (aptosFamily) CanonicalHex(native string) (string, error) {
	s := strings.TrimPrefix(native, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid Aptos address: %w", err)
	}
	return pad32(b)
}

func (aptosFamily) Native(hexAddr string) (string, error) {
	if _, err := decode32(hexAddr); err != nil {
		return "", err
	}
	return "0x" + strings.TrimPrefix(hexAddr, "0x"), nil
}

func (aptosFamily) Readable(hexAddr, _ string) string {
	if hexAddr == "" {
		return ""
	}
	return "0x" + strings.TrimPrefix(hexAddr, "0x")
}

func nativeOrRaw(f Family, hexAddr string) string {
	if hexAddr == "" {
		return ""
	}
	native, err := f.Native(hexAddr)
	if err != nil {
		return hexAddr
	}
	return native
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
