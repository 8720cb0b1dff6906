package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/governance"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/tcfw/govern/pkg/weight"
)

// gencfg prints a govern.yaml with every tunable at its default and a
// freshly generated identity seed.
func main() {
	scheme := flag.String("scheme", identity.SchemeEd25519, "identity scheme")
	layout := flag.String("layout", embedding.Polyhedral.String(), "layout strategy")
	rows := flag.Int("rows", 7, "triangle rows")
	flag.Parse()

	if _, err := embedding.ParseKind(*layout); err != nil {
		panic(err)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		panic(err)
	}

	l := embedding.DefaultConfig()
	w := weight.DefaultConfig()

	cfg := map[string]interface{}{
		"population": map[string]interface{}{
			"rows":             *rows,
			"layout":           *layout,
			"max_participants": governance.DefaultMaxParticipants,
			"concurrency":      governance.DefaultPopulateConcurrency,
		},
		"layout": map[string]interface{}{
			"base_radius": l.BaseRadius,
			"spiral":      spiral(l.Spiral),
			"extended":    spiral(l.Extended),
			"polyhedral": map[string]interface{}{
				"anchors":      l.Polyhedral.Anchors,
				"inner_count":  l.Polyhedral.InnerCount,
				"inner_radius": l.Polyhedral.InnerRadius,
				"outer_count":  l.Polyhedral.OuterCount,
				"outer_radius": l.Polyhedral.OuterRadius,
				"solid_scale":  l.Polyhedral.SolidScale,
			},
		},
		"weight": map[string]interface{}{
			"base_unit":  w.BaseUnit,
			"normalizer": w.Normalizer,
			"amplitude":  w.Amplitude,
			"harmonic":   w.Harmonic,
			"conjugate":  w.Conjugate,
		},
		"ledger": map[string]interface{}{
			"decay_half_life": governance.DefaultDecayHalfLife.String(),
			"proximity_scale": governance.DefaultProximityScale,
			"threshold":       weight.PhiConjugate,
		},
		"identity": map[string]interface{}{
			"scheme": *scheme,
			"seed":   hex.EncodeToString(seed),
		},
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		panic(err)
	}
	enc.Close()
}

func spiral(s embedding.SpiralConfig) map[string]interface{} {
	return map[string]interface{}{
		"scale":       s.Scale,
		"layer_size":  s.LayerSize,
		"z_amplitude": s.ZAmplitude,
	}
}
