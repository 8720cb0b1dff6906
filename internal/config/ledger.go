package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tcfw/govern/pkg/governance"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/tcfw/govern/pkg/weight"
)

type Ledger struct {
	DecayHalfLife  time.Duration
	ProximityScale float64
	Threshold      float64
	Weights        weight.Config

	IdentityScheme string
	IdentitySeed   string

	// VoteLogPath enables the persistent vote log when not empty
	VoteLogPath string
}

const (
	Cfg_ledger_decayHalfLife  = "ledger.decay_half_life"
	Cfg_ledger_proximityScale = "ledger.proximity_scale"
	Cfg_ledger_threshold      = "ledger.threshold"
	Cfg_identity_scheme       = "identity.scheme"
	Cfg_identity_seed         = "identity.seed"
	Cfg_votelog_path          = "votelog.path"
)

// DefaultIdentitySeed keeps simulations reproducible when no seed is
// configured. It must not be used for anything that needs secrecy.
const DefaultIdentitySeed = "govern-simulation-seed"

var (
	envKeyReplacer = strings.NewReplacer(".", "_")

	ledgerDefaults = map[string]interface{}{
		Cfg_ledger_decayHalfLife:  governance.DefaultDecayHalfLife,
		Cfg_ledger_proximityScale: governance.DefaultProximityScale,
		Cfg_ledger_threshold:      weight.PhiConjugate,
		Cfg_identity_scheme:       identity.SchemeEd25519,
		Cfg_identity_seed:         DefaultIdentitySeed,
		Cfg_votelog_path:          "",
	}
)

func init() {
	for k, v := range ledgerDefaults {
		viper.SetDefault(k, v)
	}

	d := weight.DefaultConfig()
	for k, v := range map[string]interface{}{
		"weight.base_unit":  d.BaseUnit,
		"weight.normalizer": d.Normalizer,
		"weight.amplitude":  d.Amplitude,
		"weight.harmonic":   d.Harmonic,
		"weight.conjugate":  d.Conjugate,
	} {
		viper.SetDefault(k, v)
	}
}

func buildLedgerConfig() (*Ledger, error) {
	c := &Ledger{}

	c.DecayHalfLife = viper.GetDuration(Cfg_ledger_decayHalfLife)
	c.ProximityScale = viper.GetFloat64(Cfg_ledger_proximityScale)
	c.Threshold = viper.GetFloat64(Cfg_ledger_threshold)
	c.IdentityScheme = viper.GetString(Cfg_identity_scheme)
	c.IdentitySeed = viper.GetString(Cfg_identity_seed)
	c.VoteLogPath = viper.GetString(Cfg_votelog_path)

	c.Weights = weight.Config{
		BaseUnit:   viper.GetFloat64("weight.base_unit"),
		Normalizer: viper.GetFloat64("weight.normalizer"),
		Amplitude:  viper.GetFloat64("weight.amplitude"),
		Harmonic:   viper.GetFloat64("weight.harmonic"),
		Conjugate:  viper.GetFloat64("weight.conjugate"),
	}

	if err := c.Weights.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Options converts the config into ledger options. The vote log and
// identity provider are built by the caller.
func (c *Ledger) Options() []governance.Option {
	return []governance.Option{
		governance.WithWeights(c.Weights),
		governance.WithDecayHalfLife(c.DecayHalfLife),
		governance.WithProximityScale(c.ProximityScale),
		governance.WithDefaultThreshold(c.Threshold),
	}
}
