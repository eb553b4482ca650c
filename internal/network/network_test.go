package network_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

func TestBuildIndexesUUIDLookups(t *testing.T) {
	nodeID := uuid.New()
	lineID := uuid.New()
	scenarioID := uuid.New()

	net := &network.Network{
		Nodes:     []network.Node{{UUID: nodeID, Index: 0, Code: "A"}},
		Lines:     []network.Line{{UUID: lineID, Index: 0}},
		Scenarios: []network.Scenario{{UUID: scenarioID, Index: 0, Name: "base"}},
	}
	net.Build()

	idx, ok := net.NodeByUUID(nodeID.String())
	require.True(t, ok)
	assert.Equal(t, network.NodeIndex(0), idx)

	_, ok = net.NodeByUUID(uuid.New().String())
	assert.False(t, ok)

	sc, ok := net.ScenarioByUUID(scenarioID.String())
	require.True(t, ok)
	assert.Equal(t, "base", sc.Name)
}

func TestBuildInitializesNilFootpaths(t *testing.T) {
	net := &network.Network{}
	net.Build()
	assert.NotNil(t, net.Footpaths)
	assert.Empty(t, net.Footpaths)
}

func TestAccessorsReturnPointersIntoSlices(t *testing.T) {
	net := &network.Network{
		Nodes: []network.Node{{Index: 0}, {Index: 1, Code: "B"}},
		Lines: []network.Line{{Index: 0, ShortName: "L1"}},
		Paths: []network.Path{{Index: 0, NodesRef: []network.NodeIndex{0, 1}}},
		Trips: []network.Trip{{Index: 0, LineIdx: 0}},
	}
	net.Build()

	assert.Equal(t, "B", net.Node(1).Code)
	assert.Equal(t, "L1", net.Line(0).ShortName)
	assert.Equal(t, 1, net.Path(0).SegmentCount())
	assert.Equal(t, network.LineIndex(0), net.Trip(0).LineIdx)

	// Mutating through the returned pointer affects the backing slice: the
	// accessors are meant for in-place reads by the kernel, not copies.
	net.Node(1).Code = "B2"
	assert.Equal(t, "B2", net.Nodes[1].Code)
}

func TestStringSummarizesCounts(t *testing.T) {
	net := &network.Network{
		Nodes:              make([]network.Node, 2),
		Lines:              make([]network.Line, 1),
		Trips:              make([]network.Trip, 3),
		ForwardConnections: make([]network.Connection, 4),
	}
	net.Build()
	assert.Equal(t, "Network{nodes=2 lines=1 trips=3 fwdConns=4}", net.String())
}
