package chain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEVMFamily_PadsToThirtyTwoBytes(t *testing.T) {
	f, err := FamilyOf(Ethereum)
	require.NoError(t, err)

	hexAddr, err := f.CanonicalHex("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	require.NoError(t, err)
	require.Len(t, hexAddr, 64)
	require.Equal(t, strings.Repeat("0", 24)+"90f8bf6a479f320ead074411a4b0e7944ea8c9c1", hexAddr)

	native, err := f.Native(hexAddr)
	require.NoError(t, err)
	require.Equal(t, "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1", native)

	_, err = f.CanonicalHex("not-an-address")
	require.Error(t, err)
}

func TestSolanaFamily_RoundTrip(t *testing.T) {
	f, err := FamilyOf(Solana)
	require.NoError(t, err)

	const addr = "So11111111111111111111111111111111111111112"
	hexAddr, err := f.CanonicalHex(addr)
	require.NoError(t, err)
	require.Len(t, hexAddr, 64)

	native, err := f.Native(hexAddr)
	require.NoError(t, err)
	require.Equal(t, addr, native)
}

func TestTerraFamily_RoundTrip(t *testing.T) {
	f, err := FamilyOf(Terra)
	require.NoError(t, err)

	hexAddr := strings.Repeat("0", 24) + "0102030405060708090a0b0c0d0e0f1011121314"
	native, err := f.Native(hexAddr)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(native, "terra1"))

	back, err := f.CanonicalHex(native)
	require.NoError(t, err)
	require.Equal(t, hexAddr, back)

	_, err = f.CanonicalHex("cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu")
	require.Error(t, err)
}

func TestNearFamily_ReadableOnlyWhenHashMatches(t *testing.T) {
	f, err := FamilyOf(Near)
	require.NoError(t, err)

	hexAddr, err := f.CanonicalHex("alice.near")
	require.NoError(t, err)
	require.Equal(t, HashAccountID("alice.near"), hexAddr)

	require.Equal(t, "alice.near", f.Readable(hexAddr, "alice.near"))
	require.Equal(t, hexAddr, f.Readable(hexAddr, "bob.near"))
	require.Equal(t, hexAddr, f.Readable(hexAddr, ""))
}

func TestAptosFamily_Readable(t *testing.T) {
	f, err := FamilyOf(Aptos)
	require.NoError(t, err)

	hexAddr, err := f.CanonicalHex("0x1")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("0", 63)+"1", hexAddr)
	require.Equal(t, "0x"+hexAddr, f.Readable(hexAddr, ""))
}

func TestParse(t *testing.T) {
	id, err := Parse("polygon")
	require.NoError(t, err)
	require.Equal(t, Polygon, id)

	id, err = Parse("2")
	require.NoError(t, err)
	require.Equal(t, Ethereum, id)

	_, err = Parse("2abc")
	require.Error(t, err)

	require.True(t, Base.IsEVM())
	require.False(t, Solana.IsEVM())
	require.Equal(t, "chain(999)", ID(999).String())
}

func TestConfigMap_IsTransferDisabled(t *testing.T) {
	m := DefaultConfigMap()
	require.True(t, m.IsTransferDisabled(Aurora, true))
	require.True(t, m.IsTransferDisabled(Aurora, false))
	require.False(t, m.IsTransferDisabled(Ethereum, true))

	m[Polygon] = Config{DisableTransfers: DisableFrom}
	require.True(t, m.IsTransferDisabled(Polygon, true))
	require.False(t, m.IsTransferDisabled(Polygon, false))

	m[Bsc] = Config{DisableTransfers: DisableTo}
	require.False(t, m.IsTransferDisabled(Bsc, true))
	require.True(t, m.IsTransferDisabled(Bsc, false))
}

func TestLoadConfigMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	content := `
Ethereum:
  disableTransfers: from
  migrationAssets:
    "0x1111111111111111111111111111111111111111": "0x2222222222222222222222222222222222222222"
Aurora:
  disableTransfers: false
"5":
  disableTransfers: true
  warningMessage:
    text: paused
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadConfigMap(path)
	require.NoError(t, err)
	require.True(t, m.IsTransferDisabled(Ethereum, true))
	require.False(t, m.IsTransferDisabled(Aurora, true))
	require.True(t, m.IsTransferDisabled(Polygon, false))
	require.Equal(t, "paused", m.Warning(Polygon).Text)

	current, ok := m.MigrationTarget(Ethereum, "0x1111111111111111111111111111111111111111")
	require.True(t, ok)
	require.Equal(t, "0x2222222222222222222222222222222222222222", current)

	_, ok = m.MigrationTarget(Ethereum, "0x3333333333333333333333333333333333333333")
	require.False(t, ok)
}

func TestLoadConfigMap_RejectsBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Ethereum:\n  disableTransfers: sideways\n"), 0o600))

	_, err := LoadConfigMap(path)
	require.Error(t, err)
}
