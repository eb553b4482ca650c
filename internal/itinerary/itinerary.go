// Package itinerary reconstructs a human-facing Itinerary from the
// back-pointer trail a CSA sweep leaves in a query.Scratch (spec §4.E).
package itinerary

import (
	"github.com/chairemobilite/trrouting-go/internal/network"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

// StepKind discriminates the tagged-union Step variants named in spec §9's
// design notes (AccessStep, BoardingStep, UnboardingStep, TransferStep,
// EgressStep).
type StepKind int

const (
	StepAccess StepKind = iota
	StepBoarding
	StepUnboarding
	StepTransfer
	StepEgress
)

// Step is one leg of the reconstructed trail. Only the fields relevant to
// Kind are populated; callers switch on Kind the way a visitor would.
type Step struct {
	Kind StepKind

	FromNode network.NodeIndex
	ToNode   network.NodeIndex

	DepartureTimeSeconds int
	ArrivalTimeSeconds   int
	WalkSeconds          int

	TripIdx network.TripIndex
	LineIdx network.LineIndex

	// EnterConn/ExitConn are set on StepBoarding/StepUnboarding respectively
	// and identify the connection the rider boarded or alighted at. They
	// index into whichever of net.ForwardConnections/net.ReverseConnections
	// the reconstruction (FromForward/FromReverse) walked, letting a caller
	// like internal/batch recover every intermediate connection of a
	// multi-segment ride via trip.ConnectionsRef even though the ride
	// itself collapses to one Boarding/Unboarding pair of Steps.
	EnterConn network.ConnectionIndex
	ExitConn  network.ConnectionIndex
}

// Itinerary is the full reconstructed journey plus its derived totals,
// including the fields spec.md §6 doesn't carry but od_trips_routing.cpp's
// single-calculation result does (see SPEC_FULL.md §12): the original's
// "initialLostTimeAtDepartureSeconds" (time burned between the requested
// departure and the first usable connection) and "numberOfTransfers".
type Itinerary struct {
	Steps []Step

	DepartureTimeSeconds int
	ArrivalTimeSeconds   int
	TotalTravelTimeSeconds int

	InVehicleTravelTimeSeconds int
	WaitingTimeSeconds         int
	FirstWaitingTimeSeconds    int
	AccessTravelTimeSeconds    int
	EgressTravelTimeSeconds    int
	TransferTravelTimeSeconds  int

	InitialLostTimeAtDepartureSeconds int
	NumberOfTransfers                 int
}

// FromForward reconstructs an Itinerary by walking s.ForwardJourneys
// backward from egressNode (the node RunForward returned) to the access
// node where the trail began.
func FromForward(net *network.Network, s *query.Scratch, egressNode network.NodeIndex, requestedDepartureSeconds int) *Itinerary {
	egressWalk := s.NodesEgressTravelTime[egressNode]
	arrivalAtEgressNode := s.NodesTentativeTime[egressNode]

	var steps []Step
	node := egressNode
	transfers := 0
	inVehicle := 0
	transferWalk := 0

	for {
		j := s.ForwardJourneys[node]
		switch j.Kind {
		case query.KindAccess:
			steps = append([]Step{{
				Kind:                 StepAccess,
				ToNode:               node,
				WalkSeconds:          j.WalkToHere,
				DepartureTimeSeconds: requestedDepartureSeconds,
				ArrivalTimeSeconds:   requestedDepartureSeconds + j.WalkToHere,
			}}, steps...)
			goto done
		case query.KindTransit:
			conn := net.ForwardConnections[j.ExitConn]
			enterConn := net.ForwardConnections[j.EnterConn]
			trip := net.Trip(conn.TripIdx)

			// Spec §4.E step 3: a transit leg reconstructs as an alternating
			// BoardingStep/UnboardingStep pair, not one merged record.
			board := Step{
				Kind:                 StepBoarding,
				FromNode:             enterConn.DepNodeIdx,
				DepartureTimeSeconds: enterConn.DepTime,
				TripIdx:              conn.TripIdx,
				LineIdx:              trip.LineIdx,
				EnterConn:            j.EnterConn,
			}
			unb := Step{
				Kind:               StepUnboarding,
				ToNode:             conn.ArrNodeIdx,
				ArrivalTimeSeconds: conn.ArrTime,
				TripIdx:            conn.TripIdx,
				LineIdx:            trip.LineIdx,
				ExitConn:           j.ExitConn,
			}
			inVehicle += conn.ArrTime - enterConn.DepTime
			steps = append([]Step{board, unb}, steps...)
			transfers++
			node = j.PrevNode
			continue
		case query.KindTransfer:
			steps = append([]Step{{
				Kind:                 StepTransfer,
				FromNode:             j.PrevNode,
				ToNode:               node,
				WalkSeconds:          j.WalkToHere,
			}}, steps...)
			transferWalk += j.WalkToHere
			node = j.PrevNode
			continue
		default:
			goto done
		}
	}
done:

	if egressWalk >= 0 {
		steps = append(steps, Step{
			Kind:                 StepEgress,
			FromNode:             egressNode,
			WalkSeconds:          egressWalk,
			DepartureTimeSeconds: arrivalAtEgressNode,
			ArrivalTimeSeconds:   arrivalAtEgressNode + egressWalk,
		})
	}

	// Transit legs are counted once per unboarding; subtract one for the
	// first boarding which is not itself a transfer.
	numberOfTransfers := transfers - 1
	if numberOfTransfers < 0 {
		numberOfTransfers = 0
	}

	it := &Itinerary{
		Steps:                      steps,
		DepartureTimeSeconds:       requestedDepartureSeconds,
		ArrivalTimeSeconds:         arrivalAtEgressNode + egressWalk,
		InVehicleTravelTimeSeconds: inVehicle,
		TransferTravelTimeSeconds:  transferWalk,
		EgressTravelTimeSeconds:    egressWalk,
		NumberOfTransfers:          numberOfTransfers,
	}
	it.TotalTravelTimeSeconds = it.ArrivalTimeSeconds - it.DepartureTimeSeconds
	if len(steps) > 0 {
		it.AccessTravelTimeSeconds = steps[0].WalkSeconds
		firstUsable := it.DepartureTimeSeconds + it.AccessTravelTimeSeconds
		if len(steps) > 1 && steps[1].Kind == StepBoarding {
			it.InitialLostTimeAtDepartureSeconds = steps[1].DepartureTimeSeconds - firstUsable
			it.FirstWaitingTimeSeconds = it.InitialLostTimeAtDepartureSeconds
		}
	}
	it.WaitingTimeSeconds = it.TotalTravelTimeSeconds - it.InVehicleTravelTimeSeconds -
		it.AccessTravelTimeSeconds - it.EgressTravelTimeSeconds - it.TransferTravelTimeSeconds

	return it
}

// FromReverse reconstructs an Itinerary by walking s.ReverseJourneys
// forward from accessNode (the node RunReverse returned) to the egress
// node where the trail ends. It is the mirror of FromForward: the reverse
// sweep's back-pointers run origin-to-destination (PrevNode always points
// further towards the destination), so this walk appends steps in travel
// order instead of prepending them, and its Journey/Connection indices are
// read from net.ReverseConnections, the array RunReverse scanned.
func FromReverse(net *network.Network, s *query.Scratch, accessNode network.NodeIndex, requestedArrivalSeconds int) *Itinerary {
	accessWalk := s.NodesAccessTravelTime[accessNode]
	departureAtAccessNode := s.NodesReverseTentativeTime[accessNode]

	var steps []Step
	node := accessNode
	transfers := 0
	inVehicle := 0
	transferWalk := 0

	steps = append(steps, Step{
		Kind:                 StepAccess,
		ToNode:               node,
		WalkSeconds:          accessWalk,
		DepartureTimeSeconds: departureAtAccessNode - accessWalk,
		ArrivalTimeSeconds:   departureAtAccessNode,
	})

	for {
		j := s.ReverseJourneys[node]
		switch j.Kind {
		case query.KindTransit:
			enterConn := net.ReverseConnections[j.EnterConn]
			exitConn := net.ReverseConnections[j.ExitConn]
			trip := net.Trip(enterConn.TripIdx)

			// Mirrors FromForward's pairing so both directions produce the
			// same Step-kind multiset for the same physical journey (spec
			// §8's round-trip law).
			board := Step{
				Kind:                 StepBoarding,
				FromNode:             enterConn.DepNodeIdx,
				DepartureTimeSeconds: enterConn.DepTime,
				TripIdx:              enterConn.TripIdx,
				LineIdx:              trip.LineIdx,
				EnterConn:            j.EnterConn,
			}
			unb := Step{
				Kind:               StepUnboarding,
				ToNode:             exitConn.ArrNodeIdx,
				ArrivalTimeSeconds: exitConn.ArrTime,
				TripIdx:            enterConn.TripIdx,
				LineIdx:            trip.LineIdx,
				ExitConn:           j.ExitConn,
			}
			inVehicle += exitConn.ArrTime - enterConn.DepTime
			steps = append(steps, board, unb)
			transfers++
			node = j.PrevNode
			continue
		case query.KindTransfer:
			steps = append(steps, Step{
				Kind:        StepTransfer,
				FromNode:    node,
				ToNode:      j.PrevNode,
				WalkSeconds: j.WalkToHere,
			})
			transferWalk += j.WalkToHere
			node = j.PrevNode
			continue
		case query.KindEgress:
			steps = append(steps, Step{
				Kind:                 StepEgress,
				FromNode:             node,
				WalkSeconds:          j.WalkToHere,
				DepartureTimeSeconds: s.NodesReverseTentativeTime[node],
				ArrivalTimeSeconds:   requestedArrivalSeconds,
			})
			goto done
		default:
			goto done
		}
	}
done:

	numberOfTransfers := transfers - 1
	if numberOfTransfers < 0 {
		numberOfTransfers = 0
	}

	egressWalk := 0
	if n := len(steps); n > 0 && steps[n-1].Kind == StepEgress {
		egressWalk = steps[n-1].WalkSeconds
	}

	it := &Itinerary{
		Steps:                      steps,
		DepartureTimeSeconds:       departureAtAccessNode,
		ArrivalTimeSeconds:         requestedArrivalSeconds,
		InVehicleTravelTimeSeconds: inVehicle,
		TransferTravelTimeSeconds:  transferWalk,
		AccessTravelTimeSeconds:    accessWalk,
		EgressTravelTimeSeconds:    egressWalk,
		NumberOfTransfers:          numberOfTransfers,
	}
	it.TotalTravelTimeSeconds = it.ArrivalTimeSeconds - it.DepartureTimeSeconds
	if len(steps) > 1 && steps[1].Kind == StepBoarding {
		firstUsable := it.DepartureTimeSeconds + it.AccessTravelTimeSeconds
		it.InitialLostTimeAtDepartureSeconds = steps[1].DepartureTimeSeconds - firstUsable
		it.FirstWaitingTimeSeconds = it.InitialLostTimeAtDepartureSeconds
	}
	it.WaitingTimeSeconds = it.TotalTravelTimeSeconds - it.InVehicleTravelTimeSeconds -
		it.AccessTravelTimeSeconds - it.EgressTravelTimeSeconds - it.TransferTravelTimeSeconds

	return it
}
