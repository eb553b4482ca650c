package csa

import (
	"context"

	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

// RunReverse performs the latest-departure CSA sweep of spec §4.D over
// net.ReverseConnections (sorted by ArrTime descending), the mirror image
// of RunForward: it boards trips at their unboarding connection walking
// backward, and looks for the best (latest) access node that still makes
// the egress-anchored arrival time.
func RunReverse(ctx context.Context, net *network.Network, s *query.Scratch, params query.Parameters) (network.NodeIndex, error) {
	if s.MaxEgressTravelTime < 0 {
		return -1, NewNoRoutingFoundError(ReasonNoEgressAtDestination)
	}

	bestAccessTime := -1
	bestAccessNode := network.NodeIndex(-1)

	for i, conn := range net.ReverseConnections {
		if i%timeoutPollInterval == 0 {
			select {
			case <-ctx.Done():
				return -1, &TimeoutError{}
			default:
			}
		}

		if conn.ArrTime > s.ArrivalTimeSeconds {
			continue
		}
		if conn.ArrTime <= bestAccessTime {
			break
		}
		if s.TripsEnabled[conn.TripIdx] < 0 {
			continue
		}

		tripIdx := conn.TripIdx

		boarded := s.TripsUsable[tripIdx] >= 0
		canBoardHere := conn.CanUnboard && s.NodesReverseTentativeTime[conn.ArrNodeIdx] >= conn.ArrTime &&
			s.NodesReverseTentativeTime[conn.ArrNodeIdx] != -1

		if !boarded {
			if !canBoardHere {
				continue
			}
			// MaxFirstWaitingTimeSeconds bounds the wait right after the
			// walk to the very first stop of the journey — an origin-side
			// concept. Arriving at the egress node with slack before the
			// requested deadline costs the rider nothing, so unlike the
			// forward sweep's access-side check this direction has no
			// symmetric gate here. Every other boarding still needs the
			// reverse analog of MinWaitingTimeSeconds (spec §4.D step 3:
			// "ta + minWaitingTimeSeconds <= nodesReverseTentativeTime[v]").
			if s.ReverseJourneys[conn.ArrNodeIdx].Kind != query.KindEgress &&
				s.NodesReverseTentativeTime[conn.ArrNodeIdx]-conn.ArrTime < params.MinWaitingTimeSeconds {
				continue
			}
			s.TripsUsable[tripIdx] = network.ConnectionIndex(i)
			s.TripsExitConnection[tripIdx] = network.ConnectionIndex(i)
			s.TripsExitConnectionTransferTravelTime[tripIdx] = s.NodesReverseTentativeTime[conn.ArrNodeIdx]
		} else if canBoardHere {
			if s.NodesReverseTentativeTime[conn.ArrNodeIdx] > s.TripsExitConnectionTransferTravelTime[tripIdx] {
				s.TripsExitConnection[tripIdx] = network.ConnectionIndex(i)
				s.TripsExitConnectionTransferTravelTime[tripIdx] = s.NodesReverseTentativeTime[conn.ArrNodeIdx]
			}
		}

		if s.TripsUsable[tripIdx] < 0 || !conn.CanBoard {
			continue
		}

		departure := conn.DepTime
		if s.ArrivalTimeSeconds-departure > params.MaxTotalTravelTimeSeconds {
			continue
		}
		if departure <= s.NodesReverseTentativeTime[conn.DepNodeIdx] {
			continue
		}

		s.NodesReverseTentativeTime[conn.DepNodeIdx] = departure
		s.TripsEnterConnection[tripIdx] = network.ConnectionIndex(i)
		s.ReverseJourneys[conn.DepNodeIdx] = query.Journey{
			EnterConn: network.ConnectionIndex(i),
			ExitConn:  s.TripsExitConnection[tripIdx],
			// PrevNode jumps straight to where this continuous ride was
			// finally alighted, mirroring forward.go's same fix: every
			// intermediate stop of a multi-segment trip also gets a
			// Transit record from its own departure relaxation, so
			// walking node-by-node would replay one ride as several legs.
			PrevNode:        net.ReverseConnections[s.TripsExitConnection[tripIdx]].ArrNodeIdx,
			PrevJourneyWalk: 0,
			WalkToHere:      0,
			Kind:            query.KindTransit,
		}

		relaxFootpaths(net, s, conn.DepNodeIdx, departure, params, false)

		if w := s.NodesAccessTravelTime[conn.DepNodeIdx]; w >= 0 {
			total := departure - w
			// Spec §4.D step 5: re-check the cap against the walk-inclusive
			// total, not just the in-network departure checked above.
			if s.ArrivalTimeSeconds-total <= params.MaxTotalTravelTimeSeconds && total > bestAccessTime {
				bestAccessTime = total
				bestAccessNode = conn.DepNodeIdx
			}
		}
	}

	if bestAccessNode < 0 {
		return -1, NewNoRoutingFoundError(ReasonNoRoutingFound)
	}
	return bestAccessNode, nil
}
