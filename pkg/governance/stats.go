package governance

import (
	"sort"

	"github.com/tcfw/govern/pkg/embedding"
	"gonum.org/v1/gonum/floats"
)

type Stats struct {
	Participants     int            `yaml:"participants"`
	Proposals        int            `yaml:"proposals"`
	Votes            int            `yaml:"votes"`
	Layouts          []string       `yaml:"layouts"`
	AverageInfluence float64        `yaml:"averageInfluence"`
	TotalVotingPower float64        `yaml:"totalVotingPower"`
	Layers           map[int]int    `yaml:"layers"`
	Values           map[uint64]int `yaml:"values"`
}

// Stats summarises the registered population
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{
		Participants: l.index.Len(),
		Proposals:    len(l.proposals),
		Layers:       make(map[int]int),
		Values:       make(map[uint64]int),
	}

	for _, v := range l.votes {
		s.Votes += len(v)
	}

	kinds := make(map[embedding.Kind]struct{})
	influence := make([]float64, 0, s.Participants)
	power := make([]float64, 0, s.Participants)

	l.index.Ascend(func(p *Participant) bool {
		kinds[p.Position.Kind] = struct{}{}
		influence = append(influence, p.Influence)
		power = append(power, p.VotingPower)
		s.Layers[p.Position.Layer]++
		s.Values[p.Value]++
		return true
	})

	for k := range kinds {
		s.Layouts = append(s.Layouts, k.String())
	}
	sort.Strings(s.Layouts)

	if s.Participants > 0 {
		s.AverageInfluence = floats.Sum(influence) / float64(s.Participants)
		s.TotalVotingPower = floats.Sum(power)
	}

	return s
}
