package chain

import (
	"fmt"
	"os"

	ecommon "github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type DisableTransfers string

const (
	DisableNone DisableTransfers = ""
	DisableAll  DisableTransfers = "all"
	DisableTo   DisableTransfers = "to"
	DisableFrom DisableTransfers = "from"
)

// UnmarshalYAML accepts `true`, `false`, `"to"` or `"from"`.
func (d *DisableTransfers) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!bool" {
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			*d = DisableAll
		} else {
			*d = DisableNone
		}
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch DisableTransfers(s) {
	case DisableNone, DisableAll, DisableTo, DisableFrom:
		*d = DisableTransfers(s)
		return nil
	default:
		return fmt.Errorf("invalid disableTransfers value: %q", s)
	}
}

type Link struct {
	URL  string `yaml:"url" json:"url"`
	Text string `yaml:"text" json:"text"`
}

type WarningMessage struct {
	Text string `yaml:"text" json:"text"`
	Link *Link  `yaml:"link,omitempty" json:"link,omitempty"`
}

type Config struct {
	DisableTransfers DisableTransfers `yaml:"disableTransfers"`
	WarningMessage   *WarningMessage  `yaml:"warningMessage,omitempty"`
	// MigrationAssets maps legacy asset ids to their current replacement.
	MigrationAssets map[string]string `yaml:"migrationAssets,omitempty"`
}

// ConfigMap is built once at startup and only read afterwards.
type ConfigMap map[ID]Config

func DefaultConfigMap() ConfigMap {
	return ConfigMap{
		Aurora: {
			DisableTransfers: DisableAll,
			WarningMessage: &WarningMessage{
				Text: "As a precautionary measure, Wormhole Network and Portal have paused Aurora support temporarily.",
			},
		},
		Solana: {
			MigrationAssets: map[string]string{
				"2WDq7wSs9zYrpx2kbHDA4RUTRch2CCTP6ZWaH4GNfnQQ": "KgV1GvrHQmRBY8sHQQeUKwTm2r2h8t4C8qt12Cw1HVE",
			},
		},
	}
}

// LoadConfigMap merges the YAML file at path over the defaults. Top-level
// keys are chain names or numeric chain ids.
func LoadConfigMap(path string) (ConfigMap, error) {
	m := DefaultConfigMap()
	if path == "" {
		return m, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain config: %w", err)
	}

	var parsed map[string]Config
	err = yaml.Unmarshal(raw, &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chain config: %w", err)
	}

	for name, cfg := range parsed {
		id, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("chain config: %w", err)
		}
		m[id] = cfg
	}
	return m, nil
}

// IsTransferDisabled reports whether transfers out of (isSource) or into the
// chain are administratively paused.
func (m ConfigMap) IsTransferDisabled(id ID, isSource bool) bool {
	cfg, ok := m[id]
	if !ok {
		return false
	}
	switch cfg.DisableTransfers {
	case DisableAll:
		return true
	case DisableFrom:
		return isSource
	case DisableTo:
		return !isSource
	default:
		return false
	}
}

func (m ConfigMap) Warning(id ID) *WarningMessage {
	return m[id].WarningMessage
}

// MigrationTarget returns the replacement for a legacy asset. EVM addresses
// are compared in checksum form.
func (m ConfigMap) MigrationTarget(id ID, asset string) (string, bool) {
	assets := m[id].MigrationAssets
	if len(assets) == 0 || asset == "" {
		return "", false
	}
	if id.IsEVM() {
		want := ecommon.HexToAddress(asset)
		for legacy, current := range assets {
			if ecommon.HexToAddress(legacy) == want {
				return current, true
			}
		}
		return "", false
	}
	current, ok := assets[asset]
	return current, ok
}
