package csa

import (
	"math"

	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
	"github.com/rs/zerolog/log"
)

// WalkOracle is the external collaborator of spec §1/§4.C step 3: given an
// arbitrary point, it returns the nodes walkable from it together with the
// raw walk time in seconds (before WalkingSpeedFactor is applied). The
// concrete implementation (internal/walkoracle) is swapped in by the
// caller; csa only depends on this interface.
type WalkOracle interface {
	AccessibleNodes(lon, lat float64) ([]network.Footpath, error)
}

// Reset implements spec §4.C: it clears the scratch, resolves access/egress
// footpaths, computes the time anchor and rebuilds the trip-enable mask.
//
// resetAccessPaths and resetFilters mirror the original's two independent
// flags: an access/egress re-resolution is idempotent when
// resetAccessPaths is false and a prior resolution already happened on
// this Scratch (spec invariant 5, "reset is idempotent").
func Reset(net *network.Network, s *query.Scratch, params query.Parameters, oracle WalkOracle, resetAccessPaths, resetFilters bool) error {
	clearScratch(net, s)

	// 2. Decide time anchor.
	s.DepartureTimeSeconds = -1
	s.ArrivalTimeSeconds = -1
	if params.OdTrip != nil && params.IsForward() {
		s.DepartureTimeSeconds = params.OdTrip.DepartureTimeSeconds
	} else if params.HasTimeOfTrip && params.IsForward() {
		s.DepartureTimeSeconds = params.TimeOfTripSeconds
	}
	if params.OdTrip != nil && !params.IsForward() {
		s.ArrivalTimeSeconds = params.OdTrip.ArrivalTimeSeconds
	} else if params.HasTimeOfTrip && !params.IsForward() {
		s.ArrivalTimeSeconds = params.TimeOfTripSeconds
	}

	s.MinAccessTravelTime = query.MaxInt
	s.MaxAccessTravelTime = -1
	s.MinEgressTravelTime = query.MaxInt
	s.MaxEgressTravelTime = -1

	needAccess := !params.ReturnAllNodesResult || s.DepartureTimeSeconds >= -1
	if needAccess {
		if resetAccessPaths || !s.hasReset {
			footpaths, err := resolveAccessFootpaths(net, params, oracle)
			if err != nil {
				return err
			}
			s.AccessFootpaths = footpaths
		}
		for _, fp := range s.AccessFootpaths {
			w := int(math.Ceil(float64(fp.WalkSeconds) / params.WalkingSpeedFactor))
			if w > params.MaxAccessTravelTimeSeconds {
				continue
			}
			s.NodesAccessTravelTime[fp.ToNodeIdx] = w
			s.ForwardJourneys[fp.ToNodeIdx] = query.Journey{EnterConn: -1, ExitConn: -1, PrevNode: -1, PrevJourneyWalk: -1, WalkToHere: w, Kind: query.KindAccess}
			s.NodesTentativeTime[fp.ToNodeIdx] = s.DepartureTimeSeconds + w + params.MinWaitingTimeSeconds
			if w < s.MinAccessTravelTime {
				s.MinAccessTravelTime = w
			}
			if w > s.MaxAccessTravelTime {
				s.MaxAccessTravelTime = w
			}
		}
	}

	needEgress := !params.ReturnAllNodesResult || s.ArrivalTimeSeconds >= -1
	if needEgress {
		if resetAccessPaths || !s.hasReset {
			footpaths, err := resolveEgressFootpaths(net, params, oracle)
			if err != nil {
				return err
			}
			s.EgressFootpaths = footpaths
		}
		for _, fp := range s.EgressFootpaths {
			w := int(math.Ceil(float64(fp.WalkSeconds) / params.WalkingSpeedFactor))
			if w > params.MaxEgressTravelTimeSeconds {
				continue
			}
			s.NodesEgressTravelTime[fp.ToNodeIdx] = w
			s.ReverseJourneys[fp.ToNodeIdx] = query.Journey{EnterConn: -1, ExitConn: -1, PrevNode: -1, PrevJourneyWalk: -1, WalkToHere: w, Kind: query.KindEgress}
			s.NodesReverseTentativeTime[fp.ToNodeIdx] = s.ArrivalTimeSeconds - w
			if w > s.MaxEgressTravelTime {
				s.MaxEgressTravelTime = w
			}
			if w < s.MinEgressTravelTime {
				s.MinEgressTravelTime = w
			}
		}
	}

	if resetFilters {
		applyTripFilters(net, s, params)
	}

	s.hasReset = true

	log.Debug().
		Int("accessNodes", len(s.AccessFootpaths)).
		Int("egressNodes", len(s.EgressFootpaths)).
		Bool("resetFilters", resetFilters).
		Msg("csa reset complete")

	return nil
}

func clearScratch(net *network.Network, s *query.Scratch) {
	for i := range s.NodesTentativeTime {
		s.NodesTentativeTime[i] = query.MaxInt
		s.NodesReverseTentativeTime[i] = -1
		s.NodesAccessTravelTime[i] = -1
		s.NodesEgressTravelTime[i] = -1
		s.ForwardJourneys[i] = query.Journey{EnterConn: -1, ExitConn: -1, PrevNode: -1, PrevJourneyWalk: -1, WalkToHere: -1, Kind: query.KindNone}
		s.ForwardEgressJourneys[i] = s.ForwardJourneys[i]
		s.ReverseJourneys[i] = s.ForwardJourneys[i]
		s.ReverseAccessJourneys[i] = s.ForwardJourneys[i]
	}
	for i := range s.TripsEnterConnection {
		s.TripsEnterConnection[i] = -1
		s.TripsExitConnection[i] = -1
		s.TripsEnterConnectionTransferTravelTime[i] = query.MaxInt
		s.TripsExitConnectionTransferTravelTime[i] = query.MaxInt
		s.TripsUsable[i] = -1
	}
	if len(s.TripsEnabled) > 0 && s.TripsEnabled[0] == 0 {
		// first reset ever: trips start enabled (matches the original's
		// all-enabled initial state; later resets only touch this when
		// resetFilters asks for it).
		for i := range s.TripsEnabled {
			s.TripsEnabled[i] = 1
		}
	}
}

func resolveAccessFootpaths(net *network.Network, params query.Parameters, oracle WalkOracle) ([]network.Footpath, error) {
	if params.OdTrip != nil {
		fps := make([]network.Footpath, len(params.OdTrip.OriginNodesIdx))
		for i, idx := range params.OdTrip.OriginNodesIdx {
			fps[i] = network.Footpath{ToNodeIdx: idx, WalkSeconds: params.OdTrip.OriginNodesTravelTimeSec[i]}
		}
		return fps, nil
	}
	if len(params.AccessFootpaths) > 0 {
		fps := make([]network.Footpath, len(params.AccessFootpaths))
		for i, e := range params.AccessFootpaths {
			fps[i] = network.Footpath{ToNodeIdx: e.NodeIdx, WalkSeconds: e.WalkSeconds}
		}
		return fps, nil
	}
	return oracle.AccessibleNodes(params.Origin.Lon, params.Origin.Lat)
}

func resolveEgressFootpaths(net *network.Network, params query.Parameters, oracle WalkOracle) ([]network.Footpath, error) {
	if params.OdTrip != nil {
		fps := make([]network.Footpath, len(params.OdTrip.DestinationNodesIdx))
		for i, idx := range params.OdTrip.DestinationNodesIdx {
			fps[i] = network.Footpath{ToNodeIdx: idx, WalkSeconds: params.OdTrip.DestinationNodesTravelTimeSec[i]}
		}
		return fps, nil
	}
	if len(params.EgressFootpaths) > 0 {
		fps := make([]network.Footpath, len(params.EgressFootpaths))
		for i, e := range params.EgressFootpaths {
			fps[i] = network.Footpath{ToNodeIdx: e.NodeIdx, WalkSeconds: e.WalkSeconds}
		}
		return fps, nil
	}
	return oracle.AccessibleNodes(params.Destination.Lon, params.Destination.Lat)
}

// applyTripFilters rebuilds the trip-enable mask from all-enabled by
// AND-ing in the scenario's "only" sets and AND-NOT-ing its "except" sets.
//
// Fixes the copy-paste bug noted in spec §9 open question 2: the original
// C++ compares trip.modeIdx against onlyNodesIdx/exceptNodesIdx. Here,
// node-based inclusion/exclusion is evaluated against the trip's own
// path's node membership, as the spec requires.
func applyTripFilters(net *network.Network, s *query.Scratch, params query.Parameters) {
	for i := range s.TripsEnabled {
		s.TripsEnabled[i] = 1
	}

	pathHasNode := make(map[network.PathIndex]map[network.NodeIndex]bool)
	nodeMember := func(pathIdx network.PathIndex, nodeSet []network.NodeIndex) bool {
		if len(nodeSet) == 0 {
			return false
		}
		set, ok := pathHasNode[pathIdx]
		if !ok {
			set = make(map[network.NodeIndex]bool, len(net.Paths[pathIdx].NodesRef))
			for _, n := range net.Paths[pathIdx].NodesRef {
				set[n] = true
			}
			pathHasNode[pathIdx] = set
		}
		for _, n := range nodeSet {
			if set[n] {
				return true
			}
		}
		return false
	}

	for i := range net.Trips {
		trip := &net.Trips[i]

		if len(params.OnlyServicesIdx) > 0 && !containsServiceIdx(params.OnlyServicesIdx, trip.ServiceIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.OnlyLinesIdx) > 0 && !containsLineIdx(params.OnlyLinesIdx, trip.LineIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.OnlyModesIdx) > 0 && !containsModeIdx(params.OnlyModesIdx, trip.ModeIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.OnlyAgenciesIdx) > 0 && !containsAgencyIdx(params.OnlyAgenciesIdx, trip.AgencyIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.OnlyNodesIdx) > 0 && !nodeMember(trip.PathIdx, params.OnlyNodesIdx) {
			s.TripsEnabled[i] = -1
			continue
		}

		if len(params.ExceptServicesIdx) > 0 && containsServiceIdx(params.ExceptServicesIdx, trip.ServiceIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.ExceptLinesIdx) > 0 && containsLineIdx(params.ExceptLinesIdx, trip.LineIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.ExceptModesIdx) > 0 && containsModeIdx(params.ExceptModesIdx, trip.ModeIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.ExceptAgenciesIdx) > 0 && containsAgencyIdx(params.ExceptAgenciesIdx, trip.AgencyIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
		if len(params.ExceptNodesIdx) > 0 && nodeMember(trip.PathIdx, params.ExceptNodesIdx) {
			s.TripsEnabled[i] = -1
			continue
		}
	}
}

func containsServiceIdx(set []network.ServiceIndex, v network.ServiceIndex) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
func containsLineIdx(set []network.LineIndex, v network.LineIndex) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
func containsModeIdx(set []network.ModeIndex, v network.ModeIndex) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
func containsAgencyIdx(set []network.AgencyIndex, v network.AgencyIndex) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
