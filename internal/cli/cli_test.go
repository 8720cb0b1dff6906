package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testEngine(t *testing.T) *engine {
	viper.Set("population.rows", 4)
	t.Cleanup(func() { viper.Set("population.rows", 7) })

	e, err := newEngine(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)

	return e
}

func TestSimulateUnanimous(t *testing.T) {
	e := testEngine(t)

	prop, err := simulate(context.Background(), e, simOptions{seed: 1, payload: "p", yes: 1, participation: 1})
	require.NoError(t, err)

	res, err := e.ledger.CheckConsensus(prop.ID)
	require.NoError(t, err)

	assert.Equal(t, 15, res.Votes)
	assert.Equal(t, 0.0, res.NoWeight)
	assert.True(t, res.Reached)
}

func TestSimulateDeterministic(t *testing.T) {
	o := simOptions{seed: 42, payload: "p", yes: 0.5, participation: 0.8}

	a := testEngine(t)
	pa, err := simulate(context.Background(), a, o)
	require.NoError(t, err)

	b := testEngine(t)
	pb, err := simulate(context.Background(), b, o)
	require.NoError(t, err)

	va, err := a.ledger.ListVotes(pa.ID)
	require.NoError(t, err)
	vb, err := b.ledger.ListVotes(pb.ID)
	require.NoError(t, err)

	require.Equal(t, len(va), len(vb))
	for i := range va {
		assert.Equal(t, va[i].Participant, vb[i].Participant)
		assert.Equal(t, va[i].Value, vb[i].Value)
	}
}

func TestExport(t *testing.T) {
	e := testEngine(t)

	prop, err := simulate(context.Background(), e, simOptions{seed: 7, payload: "raise quorum", yes: 0.6, participation: 1})
	require.NoError(t, err)

	snap, err := e.ledger.Snapshot(prop.ID)
	require.NoError(t, err)

	doc, err := newExportDoc(snap)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, writeExport(buf, doc))

	out := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, prop.ID.String(), out["id"])
	assert.Equal(t, "raise quorum", out["payload"])
	assert.NotEmpty(t, out["voterFilter"])
	assert.Contains(t, out, "result")
	assert.Len(t, out["nodes"], 15)
}
