package network

import "fmt"

// Network is the immutable, indexed transit network: every by-index lookup
// the kernel needs, plus the two pre-sorted connection arrays the CSA
// sweep scans. Nothing in this package mutates a Network after Build
// returns it — see spec §4.A / §5 "shared resources".
type Network struct {
	Nodes     []Node
	Lines     []Line
	Paths     []Path
	Trips     []Trip
	Services  []Service
	Agencies  []Agency
	Modes     []Mode
	Scenarios []Scenario
	Persons   []Person
	OdTrips   []OdTrip

	// ForwardConnections is sorted by DepTime ascending, ties broken by
	// (TripIdx, SequenceInTrip) ascending.
	ForwardConnections []Connection
	// ReverseConnections is sorted by ArrTime descending, ties broken by
	// (TripIdx, SequenceInTrip) descending.
	ReverseConnections []Connection

	// Footpaths maps a node index to every footpath originating there.
	Footpaths map[NodeIndex][]Footpath

	nodeByUUID     map[string]NodeIndex
	lineByUUID     map[string]LineIndex
	scenarioByUUID map[string]ScenarioIndex
}

// Build indexes lookup maps once after all slices are populated. Callers
// (the cache loaders) populate the exported slices directly, then call
// Build before the Network is handed to any query worker.
func (n *Network) Build() {
	n.nodeByUUID = make(map[string]NodeIndex, len(n.Nodes))
	for _, node := range n.Nodes {
		n.nodeByUUID[node.UUID.String()] = node.Index
	}
	n.lineByUUID = make(map[string]LineIndex, len(n.Lines))
	for _, line := range n.Lines {
		n.lineByUUID[line.UUID.String()] = line.Index
	}
	n.scenarioByUUID = make(map[string]ScenarioIndex, len(n.Scenarios))
	for _, sc := range n.Scenarios {
		n.scenarioByUUID[sc.UUID.String()] = sc.Index
	}
	if n.Footpaths == nil {
		n.Footpaths = make(map[NodeIndex][]Footpath)
	}
}

func (n *Network) NodeByUUID(id string) (NodeIndex, bool) {
	idx, ok := n.nodeByUUID[id]
	return idx, ok
}

func (n *Network) ScenarioByUUID(id string) (*Scenario, bool) {
	idx, ok := n.scenarioByUUID[id]
	if !ok {
		return nil, false
	}
	return &n.Scenarios[idx], true
}

func (n *Network) Node(idx NodeIndex) *Node { return &n.Nodes[idx] }
func (n *Network) Line(idx LineIndex) *Line { return &n.Lines[idx] }
func (n *Network) Path(idx PathIndex) *Path { return &n.Paths[idx] }
func (n *Network) Trip(idx TripIndex) *Trip { return &n.Trips[idx] }

func (n *Network) String() string {
	return fmt.Sprintf("Network{nodes=%d lines=%d trips=%d fwdConns=%d}",
		len(n.Nodes), len(n.Lines), len(n.Trips), len(n.ForwardConnections))
}
