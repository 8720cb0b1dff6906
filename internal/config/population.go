package config

import (
	"github.com/spf13/viper"
	"github.com/tcfw/govern/pkg/embedding"
)

type Population struct {
	Rows            int
	Layout          embedding.Kind
	MaxParticipants uint64
	Concurrency     int
	Embedding       embedding.Config
}

const (
	Cfg_population_rows            = "population.rows"
	Cfg_population_layout          = "population.layout"
	Cfg_population_maxParticipants = "population.max_participants"
	Cfg_population_concurrency     = "population.concurrency"
)

var (
	populationDefaults = map[string]interface{}{
		Cfg_population_rows:            7,
		Cfg_population_layout:          embedding.Polyhedral.String(),
		Cfg_population_maxParticipants: 1 << 16,
		Cfg_population_concurrency:     8,
	}
)

func init() {
	for k, v := range populationDefaults {
		viper.SetDefault(k, v)
	}

	d := embedding.DefaultConfig()
	for k, v := range map[string]interface{}{
		"layout.base_radius":             d.BaseRadius,
		"layout.spiral.scale":            d.Spiral.Scale,
		"layout.spiral.layer_size":       d.Spiral.LayerSize,
		"layout.spiral.z_amplitude":      d.Spiral.ZAmplitude,
		"layout.extended.scale":          d.Extended.Scale,
		"layout.extended.layer_size":     d.Extended.LayerSize,
		"layout.extended.z_amplitude":    d.Extended.ZAmplitude,
		"layout.polyhedral.anchors":      d.Polyhedral.Anchors,
		"layout.polyhedral.inner_count":  d.Polyhedral.InnerCount,
		"layout.polyhedral.inner_radius": d.Polyhedral.InnerRadius,
		"layout.polyhedral.outer_count":  d.Polyhedral.OuterCount,
		"layout.polyhedral.outer_radius": d.Polyhedral.OuterRadius,
		"layout.polyhedral.solid_scale":  d.Polyhedral.SolidScale,
	} {
		viper.SetDefault(k, v)
	}
}

func buildPopulationConfig() (*Population, error) {
	c := &Population{}

	c.Rows = viper.GetInt(Cfg_population_rows)
	c.MaxParticipants = viper.GetUint64(Cfg_population_maxParticipants)
	c.Concurrency = viper.GetInt(Cfg_population_concurrency)

	kind, err := embedding.ParseKind(viper.GetString(Cfg_population_layout))
	if err != nil {
		return nil, err
	}
	c.Layout = kind

	c.Embedding = embedding.Config{
		BaseRadius: viper.GetFloat64("layout.base_radius"),
		Spiral:     spiralConfig("layout.spiral"),
		Extended:   spiralConfig("layout.extended"),
		Polyhedral: embedding.PolyhedralConfig{
			Anchors:     viper.GetString("layout.polyhedral.anchors"),
			InnerCount:  viper.GetInt("layout.polyhedral.inner_count"),
			InnerRadius: viper.GetFloat64("layout.polyhedral.inner_radius"),
			OuterCount:  viper.GetInt("layout.polyhedral.outer_count"),
			OuterRadius: viper.GetFloat64("layout.polyhedral.outer_radius"),
			SolidScale:  viper.GetFloat64("layout.polyhedral.solid_scale"),
		},
	}

	if err := c.Embedding.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// spiralConfig reads each key on its own so env overrides of nested keys
// are honoured
func spiralConfig(prefix string) embedding.SpiralConfig {
	return embedding.SpiralConfig{
		Scale:      viper.GetFloat64(prefix + ".scale"),
		LayerSize:  viper.GetInt(prefix + ".layer_size"),
		ZAmplitude: viper.GetFloat64(prefix + ".z_amplitude"),
	}
}
