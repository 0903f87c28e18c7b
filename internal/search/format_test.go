package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeDirect(t *testing.T) {
	m := DirectMatch{
		Route: RouteRef{Name: "S12D"},
		Stops: []string{"Howrah", "Esplanade", "Park Street"},
	}
	assert.Equal(t, "S12D (Howrah → Esplanade → Park Street)", DescribeDirect(m))
}

func TestDescribeCombination(t *testing.T) {
	c := TransferCombination{
		First:  Leg{Route: RouteRef{Name: "205"}, From: "Barasat", To: "Park Street"},
		Second: Leg{Route: RouteRef{Name: "S12D"}, From: "Park Street", To: "Jadavpur"},
	}
	assert.Equal(t, "205 (Barasat → Park Street) → S12D (Park Street → Jadavpur)", DescribeCombination(c))
}

func TestResultLines(t *testing.T) {
	e := sampleEngine()

	direct, err := e.Search(Query{Source: "Howrah", Destination: "Park Street"})
	require.NoError(t, err)
	assert.Equal(t, "Direct Buses:", direct.Heading())
	assert.Equal(t, []string{
		"S12D (Howrah → Esplanade → Park Street)",
		"AC12D (Howrah → Esplanade → Park Street)",
	}, direct.Lines())

	combos, err := e.Search(Query{Source: "Barasat", Destination: "Jadavpur"})
	require.NoError(t, err)
	assert.Equal(t, "Bus Combinations:", combos.Heading())
	assert.Equal(t, []string{
		"205 (Barasat → Park Street) → S12D (Park Street → Jadavpur)",
		"205 (Barasat → Esplanade) → S12D (Esplanade → Jadavpur)",
	}, combos.Lines())
}
