package query

import "github.com/chairemobilite/trrouting-go/internal/network"

// JourneyKind tags what kind of back-pointer step a Journey record
// represents.
type JourneyKind int8

const (
	KindNone JourneyKind = iota
	KindAccess
	KindTransit
	KindTransfer
	KindEgress
)

// Journey is the per-node back-pointer record of spec §3: how the
// tentative time at a node was achieved. EnterConn/ExitConn are -1 when
// not applicable (access/transfer legs carry no connection).
type Journey struct {
	EnterConn       network.ConnectionIndex
	ExitConn        network.ConnectionIndex
	PrevNode        network.NodeIndex
	PrevJourneyWalk int
	WalkToHere      int
	Kind            JourneyKind
}

var emptyJourney = Journey{EnterConn: -1, ExitConn: -1, PrevNode: -1, PrevJourneyWalk: -1, WalkToHere: -1, Kind: KindNone}

// Scratch is the per-query mutable state of spec §3/§4.B: allocated once
// per worker, sized to the network, and only ever refilled by Reset —
// never reallocated. Not safe for concurrent queries.
type Scratch struct {
	net *network.Network

	NodesTentativeTime        []int
	NodesReverseTentativeTime []int
	NodesAccessTravelTime     []int
	NodesEgressTravelTime     []int

	TripsEnabled                           []int8 // -1 or 1
	TripsUsable                            []network.ConnectionIndex
	TripsEnterConnection                   []network.ConnectionIndex
	TripsExitConnection                    []network.ConnectionIndex
	TripsEnterConnectionTransferTravelTime []int
	TripsExitConnectionTransferTravelTime  []int

	ForwardJourneys       []Journey
	ForwardEgressJourneys []Journey
	ReverseJourneys       []Journey
	ReverseAccessJourneys []Journey

	AccessFootpaths []network.Footpath
	EgressFootpaths []network.Footpath

	DepartureTimeSeconds int
	ArrivalTimeSeconds   int

	MinAccessTravelTime int
	MaxAccessTravelTime int
	MinEgressTravelTime int
	MaxEgressTravelTime int

	// hasReset marks whether Reset has ever run on this Scratch, so the
	// "first call for this query" branch of spec §4.C step 3 can be
	// honored even when resetAccessPaths is false.
	hasReset bool
}

// NewScratch allocates a Scratch sized to net. Call once per worker.
func NewScratch(net *network.Network) *Scratch {
	nNodes := len(net.Nodes)
	nTrips := len(net.Trips)
	s := &Scratch{
		net: net,

		NodesTentativeTime:        make([]int, nNodes),
		NodesReverseTentativeTime: make([]int, nNodes),
		NodesAccessTravelTime:     make([]int, nNodes),
		NodesEgressTravelTime:     make([]int, nNodes),

		TripsEnabled:                           make([]int8, nTrips),
		TripsUsable:                            make([]network.ConnectionIndex, nTrips),
		TripsEnterConnection:                   make([]network.ConnectionIndex, nTrips),
		TripsExitConnection:                    make([]network.ConnectionIndex, nTrips),
		TripsEnterConnectionTransferTravelTime: make([]int, nTrips),
		TripsExitConnectionTransferTravelTime:  make([]int, nTrips),

		ForwardJourneys:       make([]Journey, nNodes),
		ForwardEgressJourneys: make([]Journey, nNodes),
		ReverseJourneys:       make([]Journey, nNodes),
		ReverseAccessJourneys: make([]Journey, nNodes),
	}
	return s
}
