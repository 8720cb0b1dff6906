package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/weight"
)

func TestBuildDefaults(t *testing.T) {
	c, err := build()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 7, c.Population().Rows)
	assert.Equal(t, embedding.Polyhedral, c.Population().Layout)
	assert.Equal(t, embedding.DefaultConfig(), c.Population().Embedding)
	assert.Equal(t, uint64(1<<16), c.Population().MaxParticipants)

	assert.Equal(t, time.Hour, c.Ledger().DecayHalfLife)
	assert.Equal(t, 100.0, c.Ledger().ProximityScale)
	assert.Equal(t, weight.PhiConjugate, c.Ledger().Threshold)
	assert.Equal(t, weight.DefaultConfig(), c.Ledger().Weights)
	assert.Equal(t, "ed25519", c.Ledger().IdentityScheme)
	assert.Len(t, c.Ledger().Options(), 4)
}

func TestBuildOverrides(t *testing.T) {
	viper.Set(Cfg_population_layout, "spiral")
	viper.Set("layout.spiral.scale", 42.0)
	viper.Set("weight.amplitude", 0.2)
	viper.Set(Cfg_ledger_decayHalfLife, "30m")
	defer func() {
		viper.Set(Cfg_population_layout, populationDefaults[Cfg_population_layout])
		viper.Set("layout.spiral.scale", embedding.DefaultConfig().Spiral.Scale)
		viper.Set("weight.amplitude", weight.DefaultConfig().Amplitude)
		viper.Set(Cfg_ledger_decayHalfLife, time.Hour)
	}()

	c, err := build()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, embedding.Spiral, c.Population().Layout)
	assert.Equal(t, 42.0, c.Population().Embedding.Spiral.Scale)
	assert.Equal(t, 0.2, c.Ledger().Weights.Amplitude)
	assert.Equal(t, 30*time.Minute, c.Ledger().DecayHalfLife)
}

func TestBuildInvalid(t *testing.T) {
	viper.Set(Cfg_population_layout, "hexagonal")
	defer viper.Set(Cfg_population_layout, populationDefaults[Cfg_population_layout])

	_, err := build()
	assert.Error(t, err)

	viper.Set(Cfg_population_layout, "spiral")
	viper.Set("weight.normalizer", 0)
	defer viper.Set("weight.normalizer", weight.DefaultConfig().Normalizer)

	_, err = build()
	assert.Error(t, err)
}
