package csa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/csa"
	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

// fixedOracle returns the same footpaths for every point, enough to drive
// tests that only care about a fixed origin/destination pair.
type fixedOracle struct {
	footpaths []network.Footpath
}

func (f fixedOracle) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) {
	return f.footpaths, nil
}

// twoStopNetwork builds a minimal network with two nodes (A=0, B=1)
// connected by one line/path/trip running a single timetabled connection
// from A to B, grounded on csa_route_calculation_test.cpp's
// NodeToNodeCalculation fixture: departure at 10:00, 210s in-vehicle time.
func twoStopNetwork() *network.Network {
	net := &network.Network{
		Nodes: []network.Node{
			{Index: 0, Code: "A"},
			{Index: 1, Code: "B"},
		},
		Agencies: []network.Agency{{Index: 0, Acronym: "AG"}},
		Modes:    []network.Mode{{Index: 0, ShortName: "bus"}},
		Services: []network.Service{{Index: 0, Name: "weekday"}},
		Lines:    []network.Line{{Index: 0, AgencyIdx: 0, ModeIdx: 0}},
		Paths:    []network.Path{{Index: 0, LineIdx: 0, NodesRef: []network.NodeIndex{0, 1}}},
		Trips: []network.Trip{
			{Index: 0, LineIdx: 0, PathIdx: 0, ServiceIdx: 0, AgencyIdx: 0, ModeIdx: 0},
		},
	}
	conn := network.Connection{
		DepNodeIdx: 0, ArrNodeIdx: 1,
		DepTime: 10 * 3600, ArrTime: 10*3600 + 210,
		TripIdx: 0, CanBoard: true, CanUnboard: true, SequenceInTrip: 0,
	}
	net.ForwardConnections = []network.Connection{conn}
	net.ReverseConnections = []network.Connection{conn}
	net.Trips[0].ConnectionsRef = []network.ConnectionIndex{0}
	net.Footpaths = map[network.NodeIndex][]network.Footpath{}
	net.Build()
	return net
}

// TestReverseNodeToNodeCalculation exercises spec.md's "Reverse-time
// equivalence" example directly: requesting an arrival well after the
// single trip's 10:03:30 arrival must still resolve the same 10:00
// boarding, on the reverse sweep this time.
func TestReverseNodeToNodeCalculation(t *testing.T) {
	net := twoStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 11*3600 + 15*60,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeArrival,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 1, WalkSeconds: 0}},
	}.WithDefaults()

	oracle := fixedOracle{}
	require.NoError(t, csa.Reset(net, scratch, params, oracle, true, true))

	accessNode, err := csa.RunReverse(context.Background(), net, scratch, params)
	require.NoError(t, err)
	assert.Equal(t, network.NodeIndex(0), accessNode)
	assert.Equal(t, 10*3600, scratch.NodesReverseTentativeTime[0])
}

func TestNodeToNodeCalculation(t *testing.T) {
	net := twoStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 9*3600 + 50*60,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeDeparture,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 1, WalkSeconds: 0}},
	}.WithDefaults()

	oracle := fixedOracle{}
	require.NoError(t, csa.Reset(net, scratch, params, oracle, true, true))

	egressNode, err := csa.RunForward(context.Background(), net, scratch, params)
	require.NoError(t, err)
	assert.Equal(t, network.NodeIndex(1), egressNode)
	assert.Equal(t, 10*3600+210, scratch.NodesTentativeTime[1])
}

// TestNoRoutingBecauseTooEarly sets a departure so far before the single
// trip's boarding time that the wait exceeds MaxFirstWaitingTimeSeconds:
// the sweep refuses to board it, mirroring
// csa_route_calculation_test.cpp's NoRoutingBecauseTooEarly.
func TestNoRoutingBecauseTooEarly(t *testing.T) {
	net := twoStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 2 * 3600,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeDeparture,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 1, WalkSeconds: 0}},
	}.WithDefaults()

	oracle := fixedOracle{}
	require.NoError(t, csa.Reset(net, scratch, params, oracle, true, true))

	_, err := csa.RunForward(context.Background(), net, scratch, params)
	require.Error(t, err)
	reason, ok := csa.IsNoRoutingFound(err)
	require.True(t, ok)
	assert.Equal(t, csa.ReasonNoRoutingFound, reason.Reason)
}

func TestNoRoutingBecauseNoAccess(t *testing.T) {
	net := twoStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 9*3600 + 50*60,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeDeparture,
	}.WithDefaults()

	oracle := fixedOracle{} // resolves to no footpaths at all
	require.NoError(t, csa.Reset(net, scratch, params, oracle, true, true))

	_, err := csa.RunForward(context.Background(), net, scratch, params)
	require.Error(t, err)
	reason, ok := csa.IsNoRoutingFound(err)
	require.True(t, ok)
	assert.Equal(t, csa.ReasonNoAccessAtOrigin, reason.Reason)
}

// TestNodeExclusionFiltersByMembershipNotMode exercises the spec §9 open
// question 2 fix directly: excluding the trip's path's node must disable
// the trip regardless of the trip's mode index, which is what the
// original's buggy comparison (modeIdx against exceptNodesIdx) would not
// have done for this fixture (mode 0 never appears in exceptNodesIdx, so
// the buggy version would never exclude this trip).
func TestNodeExclusionFiltersByMembershipNotMode(t *testing.T) {
	net := twoStopNetwork()
	scratch := query.NewScratch(net)

	params := query.Parameters{
		HasOrigin: true, HasDest: true,
		TimeOfTripSeconds: 9*3600 + 50*60,
		HasTimeOfTrip:     true,
		TimeType:          query.TimeTypeDeparture,
		AccessFootpaths:   []query.ExplicitFootpath{{NodeIdx: 0, WalkSeconds: 0}},
		EgressFootpaths:   []query.ExplicitFootpath{{NodeIdx: 1, WalkSeconds: 0}},
		ExceptNodesIdx:    []network.NodeIndex{0},
	}.WithDefaults()

	oracle := fixedOracle{}
	require.NoError(t, csa.Reset(net, scratch, params, oracle, true, true))
	assert.Equal(t, int8(-1), scratch.TripsEnabled[0])

	_, err := csa.RunForward(context.Background(), net, scratch, params)
	require.Error(t, err)
	reason, ok := csa.IsNoRoutingFound(err)
	require.True(t, ok)
	assert.Equal(t, csa.ReasonNoRoutingFound, reason.Reason)
}
