// Package csa implements the reset/filter stage (§4.C) and the forward and
// reverse Connection Scan Algorithm sweeps (§4.D) over an immutable
// network.Network and a private query.Scratch.
package csa

import (
	"fmt"

	"github.com/pkg/errors"
)

// NoRoutingReason enumerates why a sweep found no journey, per spec §7.
type NoRoutingReason int

const (
	ReasonNoAccessAtOrigin NoRoutingReason = iota
	ReasonNoEgressAtDestination
	ReasonNoServiceFromOrigin
	ReasonNoServiceToDestination
	ReasonNoRoutingFound
)

func (r NoRoutingReason) String() string {
	switch r {
	case ReasonNoAccessAtOrigin:
		return "NO_ACCESS_AT_ORIGIN"
	case ReasonNoEgressAtDestination:
		return "NO_EGRESS_AT_DESTINATION"
	case ReasonNoServiceFromOrigin:
		return "NO_SERVICE_FROM_ORIGIN"
	case ReasonNoServiceToDestination:
		return "NO_SERVICE_TO_DESTINATION"
	default:
		return "NO_ROUTING_FOUND"
	}
}

// NoRoutingFoundError is recoverable at the batch level: the caller should
// continue with the next OD trip (spec §7).
type NoRoutingFoundError struct {
	Reason NoRoutingReason
}

func (e *NoRoutingFoundError) Error() string {
	return fmt.Sprintf("no routing found: %s", e.Reason)
}

func NewNoRoutingFoundError(reason NoRoutingReason) error {
	return errors.WithStack(&NoRoutingFoundError{Reason: reason})
}

// IsNoRoutingFound reports whether err is (or wraps) a NoRoutingFoundError,
// and if so, its reason.
func IsNoRoutingFound(err error) (*NoRoutingFoundError, bool) {
	var target *NoRoutingFoundError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// TimeoutError is surfaced when a per-query deadline elapses mid-sweep
// (spec §5 "Cancellation and timeouts"). No partial result is returned.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "deadline exceeded during sweep" }

// MissingDataError signals a required entity is absent (empty scenario,
// missing stop, ...).
type MissingDataError struct {
	Detail string
}

func (e *MissingDataError) Error() string { return "missing data: " + e.Detail }

// InternalError marks an invariant violation — always fatal, never raised
// except on a bug.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string { return "internal invariant violation: " + e.Detail }
