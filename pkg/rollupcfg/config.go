// Package rollupcfg loads the immutable per-chain rollup configuration:
// the allowed EoA and contract code hashes, the sUDT validator code hash,
// and the challenge script code hash. It follows the teacher's own
// config.Config / yaml.v3 pattern (pkg/config in the retrieval pack).
package rollupcfg

import (
	"encoding/hex"
	"os"

	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the rollup's immutable chain configuration.
type Config struct {
	RollupScriptHash        [32]byte   `yaml:"-"`
	RollupScriptHashHex      string    `yaml:"RollupScriptHash"`
	AllowedEoaCodeHashes     []string  `yaml:"AllowedEoaCodeHashes"`
	AllowedContractCodeHashes []string `yaml:"AllowedContractCodeHashes"`
	SudtValidatorCodeHash    string    `yaml:"SudtValidatorCodeHash"`
	ChallengeScriptCodeHash  string    `yaml:"ChallengeScriptCodeHash"`
}

// Load reads and parses a YAML rollup config, rejecting anything larger
// than limits.MaxRollupConfig per spec §4.4/§5.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "rollupcfg: read")
	}
	return Parse(raw)
}

// Parse decodes raw YAML bytes into a Config, enforcing the size cap.
func Parse(raw []byte) (*Config, error) {
	if len(raw) > limits.MaxRollupConfig {
		return nil, gwerr.Wrap(gwerr.BufferOverflow, errors.New("rollupcfg: exceeds max rollup config size"))
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "rollupcfg: unmarshal")
	}
	decoded, err := hex.DecodeString(cfg.RollupScriptHashHex)
	if err != nil {
		return nil, errors.Wrap(err, "rollupcfg: decode RollupScriptHash")
	}
	if len(decoded) != len(cfg.RollupScriptHash) {
		return nil, errors.Errorf("rollupcfg: RollupScriptHash must be %d bytes, got %d", len(cfg.RollupScriptHash), len(decoded))
	}
	copy(cfg.RollupScriptHash[:], decoded)
	return &cfg, nil
}

// IsAllowedEoaCodeHash reports whether codeHash (hex, no 0x prefix) is in
// the EoA allow-list.
func (c *Config) IsAllowedEoaCodeHash(codeHash string) bool {
	return contains(c.AllowedEoaCodeHashes, codeHash)
}

// IsAllowedContractCodeHash reports whether codeHash is in the contract
// allow-list.
func (c *Config) IsAllowedContractCodeHash(codeHash string) bool {
	return contains(c.AllowedContractCodeHashes, codeHash)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
