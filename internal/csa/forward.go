package csa

import (
	"context"
	"math"

	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

// timeoutPollInterval is how many connections the forward/reverse sweeps
// scan between context-cancellation checks (spec §5).
const timeoutPollInterval = 4096

// RunForward performs the earliest-arrival CSA sweep of spec §4.D over
// net.ForwardConnections, starting from the access nodes Reset already
// populated in s. It returns the winning egress node index, or a
// *NoRoutingFoundError wrapped via NewNoRoutingFoundError when no journey
// reaches any egress node within the configured bounds.
func RunForward(ctx context.Context, net *network.Network, s *query.Scratch, params query.Parameters) (network.NodeIndex, error) {
	if s.MaxAccessTravelTime < 0 {
		return -1, NewNoRoutingFoundError(ReasonNoAccessAtOrigin)
	}

	bestEgressTime := query.MaxInt
	bestEgressNode := network.NodeIndex(-1)

	for i, conn := range net.ForwardConnections {
		if i%timeoutPollInterval == 0 {
			select {
			case <-ctx.Done():
				return -1, &TimeoutError{}
			default:
			}
		}

		if conn.DepTime < s.DepartureTimeSeconds {
			continue
		}
		// Bound the sweep: once a connection departs past the best known
		// egress arrival there is no point scanning further (connections
		// are time-sorted ascending).
		if conn.DepTime >= bestEgressTime {
			break
		}
		if s.TripsEnabled[conn.TripIdx] < 0 {
			continue
		}

		tripIdx := conn.TripIdx

		boarded := s.TripsUsable[tripIdx] >= 0
		canBoardHere := conn.CanBoard && s.NodesTentativeTime[conn.DepNodeIdx] <= conn.DepTime &&
			s.NodesTentativeTime[conn.DepNodeIdx] != query.MaxInt

		if !boarded {
			if !canBoardHere {
				continue
			}
			waited := conn.DepTime - s.NodesTentativeTime[conn.DepNodeIdx]
			if s.ForwardJourneys[conn.DepNodeIdx].Kind == query.KindAccess {
				if waited > params.MaxFirstWaitingTimeSeconds {
					continue
				}
			} else if waited < params.MinWaitingTimeSeconds {
				// Spec §4.D step 3: a non-access boarding needs at least
				// MinWaitingTimeSeconds of slack since the node's tentative
				// time, not just any arrival at-or-before conn.DepTime.
				continue
			}
			s.TripsUsable[tripIdx] = network.ConnectionIndex(i)
			s.TripsEnterConnection[tripIdx] = network.ConnectionIndex(i)
			s.TripsEnterConnectionTransferTravelTime[tripIdx] = s.NodesTentativeTime[conn.DepNodeIdx]
		} else if canBoardHere {
			// A strictly-better boarding further along the same trip:
			// prefer it only if it actually improves reach (never
			// re-board on a tie; spec's strict tie-break rule).
			if s.NodesTentativeTime[conn.DepNodeIdx] < s.TripsEnterConnectionTransferTravelTime[tripIdx] {
				s.TripsEnterConnection[tripIdx] = network.ConnectionIndex(i)
				s.TripsEnterConnectionTransferTravelTime[tripIdx] = s.NodesTentativeTime[conn.DepNodeIdx]
			}
		}

		if s.TripsUsable[tripIdx] < 0 || !conn.CanUnboard {
			continue
		}

		arrival := conn.ArrTime
		if arrival-s.DepartureTimeSeconds > params.MaxTotalTravelTimeSeconds {
			continue
		}
		if arrival >= s.NodesTentativeTime[conn.ArrNodeIdx] {
			continue
		}

		s.NodesTentativeTime[conn.ArrNodeIdx] = arrival
		s.TripsExitConnection[tripIdx] = network.ConnectionIndex(i)
		s.ForwardJourneys[conn.ArrNodeIdx] = query.Journey{
			EnterConn: s.TripsEnterConnection[tripIdx],
			ExitConn:  network.ConnectionIndex(i),
			// PrevNode jumps straight to where this continuous ride was
			// boarded, not to conn.DepNodeIdx: the latter is just this
			// segment's own neighbor, and for a multi-segment trip every
			// intermediate stop also carries a Transit journey record from
			// its own arrival relaxation. Walking back segment-by-segment
			// would replay the same ride as one leg per segment.
			PrevNode:        net.ForwardConnections[s.TripsEnterConnection[tripIdx]].DepNodeIdx,
			PrevJourneyWalk: 0,
			WalkToHere:      0,
			Kind:            query.KindTransit,
		}

		relaxFootpaths(net, s, conn.ArrNodeIdx, arrival, params, true)

		if w := s.NodesEgressTravelTime[conn.ArrNodeIdx]; w >= 0 {
			total := arrival + w
			// Spec §4.D step 5: the cap applies to the walk-inclusive total,
			// not just the in-network arrival checked above.
			if total-s.DepartureTimeSeconds <= params.MaxTotalTravelTimeSeconds && total < bestEgressTime {
				bestEgressTime = total
				bestEgressNode = conn.ArrNodeIdx
			}
		}
	}

	if bestEgressNode < 0 {
		return -1, NewNoRoutingFoundError(ReasonNoRoutingFound)
	}
	return bestEgressNode, nil
}

// relaxFootpaths cascades an improved tentative time at fromNode across its
// outgoing (forward) or incoming (reverse) footpaths, subject to
// MaxTransferTravelTimeSeconds. forward selects which tentative-time array
// and journey array is updated.
//
// Spec §4.D step 4: the raw footpath seconds are scaled by
// WalkingSpeedFactor exactly as reset.go's access/egress resolution does,
// and the node's new tentative time folds in MinWaitingTimeSeconds so a
// mid-route transfer carries the same minimum-wait slack as an origin
// access walk does.
func relaxFootpaths(net *network.Network, s *query.Scratch, fromNode network.NodeIndex, atTime int, params query.Parameters, forward bool) {
	for _, fp := range net.Footpaths[fromNode] {
		walk := int(math.Ceil(float64(fp.WalkSeconds) / params.WalkingSpeedFactor))
		if walk > params.MaxTransferTravelTimeSeconds {
			continue
		}
		if forward {
			tw := atTime + walk
			candidate := tw + params.MinWaitingTimeSeconds
			if candidate < s.NodesTentativeTime[fp.ToNodeIdx] {
				s.NodesTentativeTime[fp.ToNodeIdx] = candidate
				s.ForwardJourneys[fp.ToNodeIdx] = query.Journey{
					EnterConn: -1, ExitConn: -1,
					PrevNode:        fromNode,
					PrevJourneyWalk: walk,
					WalkToHere:      walk,
					Kind:            query.KindTransfer,
				}
			}
		} else {
			tw := atTime - walk
			candidate := tw - params.MinWaitingTimeSeconds
			if candidate > s.NodesReverseTentativeTime[fp.ToNodeIdx] {
				s.NodesReverseTentativeTime[fp.ToNodeIdx] = candidate
				s.ReverseJourneys[fp.ToNodeIdx] = query.Journey{
					EnterConn: -1, ExitConn: -1,
					PrevNode:        fromNode,
					PrevJourneyWalk: walk,
					WalkToHere:      walk,
					Kind:            query.KindTransfer,
				}
			}
		}
	}
}
