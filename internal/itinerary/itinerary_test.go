package itinerary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/csa"
	"github.com/chairemobilite/trrouting-go/internal/itinerary"
	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

type noopOracle struct{}

func (noopOracle) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) { return nil, nil }

// threeStopNetwork is A -> B -> C on a single two-segment trip.
func threeStopNetwork() *network.Network {
	net := &network.Network{
		Nodes:    make([]network.Node, 3),
		Agencies: []network.Agency{{Index: 0}},
		Modes:    []network.Mode{{Index: 0}},
		Services: []network.Service{{Index: 0}},
		Lines:    []network.Line{{Index: 0, AgencyIdx: 0, ModeIdx: 0}},
		Paths:    []network.Path{{Index: 0, LineIdx: 0, NodesRef: []network.NodeIndex{0, 1, 2}}},
		Trips:    []network.Trip{{Index: 0, LineIdx: 0, PathIdx: 0, ServiceIdx: 0, AgencyIdx: 0, ModeIdx: 0}},
	}
	for i := range net.Nodes {
		net.Nodes[i].Index = network.NodeIndex(i)
	}
	first := network.Connection{DepNodeIdx: 0, ArrNodeIdx: 1, DepTime: 8 * 3600, ArrTime: 8*3600 + 300, TripIdx: 0, CanBoard: true, CanUnboard: true, SequenceInTrip: 0}
	second := network.Connection{DepNodeIdx: 1, ArrNodeIdx: 2, DepTime: 8*3600 + 300, ArrTime: 8*3600 + 600, TripIdx: 0, CanBoard: true, CanUnboard: true, SequenceInTrip: 1}
	net.ForwardConnections = []network.Connection{first, second}
	// ReverseConnections is the same array sorted by ArrTime descending.
	net.ReverseConnections = []network.Connection{second, first}
	net.Trips[0].ConnectionsRef = []network.ConnectionIndex{0, 1}
	net.Build()
	return net
}

func TestFromForwardReconstructsSingleTripJourney(t *testing.T) {
	net := threeStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 7*3600 + 50*60,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeDeparture,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 2, WalkSeconds: 60}},
	}.WithDefaults()

	require.NoError(t, csa.Reset(net, scratch, params, noopOracle{}, true, true))
	egressNode, err := csa.RunForward(context.Background(), net, scratch, params)
	require.NoError(t, err)
	require.Equal(t, network.NodeIndex(2), egressNode)

	it := itinerary.FromForward(net, scratch, egressNode, scratch.DepartureTimeSeconds)

	require.Len(t, it.Steps, 4)
	assert.Equal(t, itinerary.StepAccess, it.Steps[0].Kind)
	assert.Equal(t, itinerary.StepBoarding, it.Steps[1].Kind)
	assert.Equal(t, network.NodeIndex(0), it.Steps[1].FromNode)
	assert.Equal(t, 8*3600, it.Steps[1].DepartureTimeSeconds)
	assert.Equal(t, itinerary.StepUnboarding, it.Steps[2].Kind)
	assert.Equal(t, network.NodeIndex(2), it.Steps[2].ToNode)
	assert.Equal(t, 8*3600+600, it.Steps[2].ArrivalTimeSeconds)
	assert.Equal(t, itinerary.StepEgress, it.Steps[3].Kind)
	assert.Equal(t, 60, it.Steps[3].WalkSeconds)

	assert.Equal(t, 0, it.NumberOfTransfers)
	assert.Equal(t, 600, it.InVehicleTravelTimeSeconds)
	assert.Equal(t, 60, it.EgressTravelTimeSeconds)
	assert.Equal(t, it.ArrivalTimeSeconds-it.DepartureTimeSeconds, it.TotalTravelTimeSeconds)
}

// TestFromReverseReconstructsSingleTripJourney mirrors the forward test on
// the reverse sweep, matching spec.md's "Reverse-time equivalence" example:
// a late requested arrival must still resolve the same 8:00 boarding.
func TestFromReverseReconstructsSingleTripJourney(t *testing.T) {
	net := threeStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 9 * 3600,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeArrival,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 2, WalkSeconds: 60}},
	}.WithDefaults()

	require.NoError(t, csa.Reset(net, scratch, params, noopOracle{}, true, true))
	accessNode, err := csa.RunReverse(context.Background(), net, scratch, params)
	require.NoError(t, err)
	require.Equal(t, network.NodeIndex(0), accessNode)

	it := itinerary.FromReverse(net, scratch, accessNode, scratch.ArrivalTimeSeconds)

	require.Len(t, it.Steps, 4)
	assert.Equal(t, itinerary.StepAccess, it.Steps[0].Kind)
	assert.Equal(t, itinerary.StepBoarding, it.Steps[1].Kind)
	assert.Equal(t, network.NodeIndex(0), it.Steps[1].FromNode)
	assert.Equal(t, 8*3600, it.Steps[1].DepartureTimeSeconds)
	assert.Equal(t, itinerary.StepUnboarding, it.Steps[2].Kind)
	assert.Equal(t, network.NodeIndex(2), it.Steps[2].ToNode)
	assert.Equal(t, 8*3600+600, it.Steps[2].ArrivalTimeSeconds)
	assert.Equal(t, itinerary.StepEgress, it.Steps[3].Kind)
	assert.Equal(t, 60, it.Steps[3].WalkSeconds)

	assert.Equal(t, 600, it.InVehicleTravelTimeSeconds)
	assert.Equal(t, 60, it.EgressTravelTimeSeconds)
}
