package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

func TestHourOfRejectsOutOfRange(t *testing.T) {
	h, ok := hourOf(2 * 3600)
	require.True(t, ok)
	assert.Equal(t, 2, h)

	_, ok = hourOf(-1)
	assert.False(t, ok)

	h, ok = hourOf(28*3600 + 3599)
	require.True(t, ok)
	assert.Equal(t, 28, h)

	_, ok = hourOf(29 * 3600)
	assert.False(t, ok)
}

func TestShardIsOneBased(t *testing.T) {
	assert.True(t, shard(0, 1, 1))
	assert.True(t, shard(5, 1, 1))

	assert.True(t, shard(0, 3, 1))
	assert.False(t, shard(1, 3, 1))
	assert.False(t, shard(2, 3, 1))
	assert.True(t, shard(3, 3, 1))

	assert.True(t, shard(1, 3, 2))
	assert.True(t, shard(2, 3, 3))
}

func makeOdTrips(n int) []network.OdTrip {
	trips := make([]network.OdTrip, n)
	for i := range trips {
		trips[i].DepartureTimeSeconds = (n - i) * 60
	}
	return trips
}

func TestSampleIndexesIsDeterministicForAGivenSeed(t *testing.T) {
	odTrips := makeOdTrips(50)
	params := query.BatchParameters{Seed: 42}

	first := sampleIndexes(odTrips, params)
	second := sampleIndexes(odTrips, params)
	assert.Equal(t, first, second)

	other := sampleIndexes(odTrips, query.BatchParameters{Seed: 43})
	assert.NotEqual(t, first, other)
}

func TestSampleIndexesSizeComputedBeforeSharding(t *testing.T) {
	odTrips := makeOdTrips(100)

	// A 50% sample ratio must yield 50 sampled indexes regardless of how
	// many shards the caller later asks Run to split them into — sample
	// size and shard count are independent knobs (spec §9 open question
	// 1's fix of the original conflating the two).
	params := query.BatchParameters{Seed: 7, OdTripsSampleRatio: 0.5}
	sampled := sampleIndexes(odTrips, params)
	assert.Len(t, sampled, 50)

	params.BatchesCount = 4
	sampledWithShards := sampleIndexes(odTrips, params)
	assert.Len(t, sampledWithShards, 50)
}

func TestSampleIndexesSampleSizeOverridesRatio(t *testing.T) {
	odTrips := makeOdTrips(20)
	params := query.BatchParameters{Seed: 1, OdTripsSampleRatio: 0.5, OdTripsSampleSize: 3}
	sampled := sampleIndexes(odTrips, params)
	assert.Len(t, sampled, 3)
}

// twoStopNetworkWithOdTrips builds the same minimal A->B network as the
// csa package tests, plus a handful of OdTrips departing before the
// single 10:00 connection so Run can route all of them.
func twoStopNetworkWithOdTrips(n int) *network.Network {
	net := &network.Network{
		Nodes:    []network.Node{{Index: 0}, {Index: 1}},
		Agencies: []network.Agency{{Index: 0}},
		Modes:    []network.Mode{{Index: 0}},
		Services: []network.Service{{Index: 0}},
		Lines:    []network.Line{{Index: 0, AgencyIdx: 0, ModeIdx: 0}},
		Paths:    []network.Path{{Index: 0, LineIdx: 0, NodesRef: []network.NodeIndex{0, 1}}},
		Trips:    []network.Trip{{Index: 0, LineIdx: 0, PathIdx: 0, ServiceIdx: 0, AgencyIdx: 0, ModeIdx: 0}},
	}
	net.ForwardConnections = []network.Connection{
		{DepNodeIdx: 0, ArrNodeIdx: 1, DepTime: 10 * 3600, ArrTime: 10*3600 + 210, TripIdx: 0, CanBoard: true, CanUnboard: true, SequenceInTrip: 0},
	}
	net.Trips[0].ConnectionsRef = []network.ConnectionIndex{0}

	odTrips := make([]network.OdTrip, n)
	for i := range odTrips {
		odTrips[i] = network.OdTrip{
			PersonIdx:            -1,
			DepartureTimeSeconds: 9*3600 + 50*60,
			OriginNodesIdx:       []network.NodeIndex{0},
			OriginNodesTravelTimeSec: []int{0},
			DestinationNodesIdx:      []network.NodeIndex{1},
			DestinationNodesTravelTimeSec: []int{0},
			ExpansionFactor: 1.0,
		}
	}
	net.OdTrips = odTrips
	net.Build()
	return net
}

type emptyOracle struct{}

func (emptyOracle) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) { return nil, nil }

func TestRunRoutesEverySampledOdTripAndAccumulatesProfiles(t *testing.T) {
	net := twoStopNetworkWithOdTrips(5)
	scratch := query.NewScratch(net)

	params := query.BatchParameters{
		Base:              query.Parameters{}.WithDefaults(),
		BatchesCount:      1,
		BatchNumber:       1,
		CalculateProfiles: true,
	}

	summary, err := Run(context.Background(), net, scratch, emptyOracle{}, params)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.SampledCount)
	assert.Equal(t, 5, summary.RoutedCount)
	assert.Equal(t, 0, summary.FailedCount)

	lp, ok := summary.LineProfiles[0]
	require.True(t, ok)
	assert.Equal(t, 5.0, lp.TotalDemand)
	assert.Equal(t, 5.0, lp.HourlyDemand[10])
}
