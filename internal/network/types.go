// Package network holds the immutable, indexed transit network model: the
// output of the loader (§4.A of the design) that the rest of the kernel
// reads but never mutates after load.
package network

import "github.com/google/uuid"

// NodeIndex, LineIndex, PathIndex, TripIndex and ConnectionIndex are dense,
// zero-based indices assigned once at load time and stable for the process
// lifetime.
type NodeIndex int32
type LineIndex int32
type PathIndex int32
type TripIndex int32
type ServiceIndex int32
type AgencyIndex int32
type ModeIndex int32
type ConnectionIndex int32
type ScenarioIndex int32

// Node is a stable network location: a stop, station or point of interest.
type Node struct {
	UUID  uuid.UUID
	Index NodeIndex
	Code  string
	Name  string
	Lat   float64
	Lon   float64
}

// Line groups paths and trips under one operator brand (e.g. a bus route
// number serving two directions).
type Line struct {
	UUID      uuid.UUID
	Index     LineIndex
	Code      string
	ShortName string
	LongName  string
	AgencyIdx AgencyIndex
	ModeIdx   ModeIndex
}

// Path is the ordered stop sequence a line's trips follow. NodesRef has
// k+1 entries defining k segments; segment i runs NodesRef[i]->NodesRef[i+1].
type Path struct {
	UUID     uuid.UUID
	Index    PathIndex
	LineIdx  LineIndex
	NodesRef []NodeIndex
}

func (p *Path) SegmentCount() int { return len(p.NodesRef) - 1 }

// Trip is one timetabled traversal of a Path on a Service calendar day.
type Trip struct {
	UUID       uuid.UUID
	Index      TripIndex
	LineIdx    LineIndex
	PathIdx    PathIndex
	ServiceIdx ServiceIndex
	AgencyIdx  AgencyIndex
	ModeIdx    ModeIndex
	// ConnectionsRef holds, in sequence order, the index into
	// Network.ForwardConnections of each segment this trip realizes. Kept so the
	// batch engine can look up a connection's departure time by
	// (tripIdx, sequenceInTrip) without a second pass over the arrays.
	ConnectionsRef []ConnectionIndex
}

// Connection is one timetabled edge: segment `SequenceInTrip` of trip
// `TripIdx`, running from DepNodeIdx to ArrNodeIdx. DepTime/ArrTime are
// seconds since service start and may exceed 86400 for overnight trips.
type Connection struct {
	DepNodeIdx     NodeIndex
	ArrNodeIdx     NodeIndex
	DepTime        int
	ArrTime        int
	TripIdx        TripIndex
	CanBoard       bool
	CanUnboard     bool
	SequenceInTrip int
}

// Footpath is a precomputed, symmetric walking edge between two nodes.
type Footpath struct {
	FromNodeIdx NodeIndex
	ToNodeIdx   NodeIndex
	WalkSeconds int
}

// Service represents one calendar/service-day definition a trip belongs to.
type Service struct {
	UUID  uuid.UUID
	Index ServiceIndex
	Name  string
}

// Agency is an operating authority.
type Agency struct {
	UUID    uuid.UUID
	Index   AgencyIndex
	Acronym string
	Name    string
}

// Mode is a transport mode (bus, tram, rail, walk...).
type Mode struct {
	Index     ModeIndex
	ShortName string
}

// Scenario is a named subset specification resolving to a boolean mask on
// trips: a trip is included only if it passes every non-empty "only" set
// and none of the "except" sets.
type Scenario struct {
	UUID  uuid.UUID
	Index ScenarioIndex
	Name  string

	OnlyServicesIdx []ServiceIndex
	OnlyLinesIdx    []LineIndex
	OnlyAgenciesIdx []AgencyIndex
	OnlyModesIdx    []ModeIndex
	OnlyNodesIdx    []NodeIndex

	ExceptServicesIdx []ServiceIndex
	ExceptLinesIdx    []LineIndex
	ExceptAgenciesIdx []AgencyIndex
	ExceptModesIdx    []ModeIndex
	ExceptNodesIdx    []NodeIndex
}

// OdTrip is a synthetic person-trip from the demand survey used by the
// batch engine, with its precomputed walk access/egress resolved at load
// time by the street-network walk-time oracle.
type OdTrip struct {
	UUID        uuid.UUID
	InternalID  string
	PersonIdx   int
	OriginLat   float64
	OriginLon   float64
	DestLat     float64
	DestLon     float64
	DepartureTimeSeconds int
	ArrivalTimeSeconds   int
	Mode                 string
	OriginActivity       string
	DestinationActivity  string
	DataSource           string
	ExpansionFactor      float64

	OnlyWalkingTravelTimeSeconds  int
	OnlyCyclingTravelTimeSeconds  int
	OnlyDrivingTravelTimeSeconds  int

	OriginNodesIdx              []NodeIndex
	OriginNodesTravelTimeSec    []int
	DestinationNodesIdx         []NodeIndex
	DestinationNodesTravelTimeSec []int
}

// Person carries the demographic attributes used to filter OD trips in
// batch mode.
type Person struct {
	AgeGroup   string
	Gender     string
	Occupation string
}
