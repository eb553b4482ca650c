package cache

import (
	"sort"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

func sortConnectionsAsc(conns []network.Connection) {
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].DepTime != conns[j].DepTime {
			return conns[i].DepTime < conns[j].DepTime
		}
		if conns[i].TripIdx != conns[j].TripIdx {
			return conns[i].TripIdx < conns[j].TripIdx
		}
		return conns[i].SequenceInTrip < conns[j].SequenceInTrip
	})
}

func sortConnectionsDesc(conns []network.Connection) {
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].ArrTime != conns[j].ArrTime {
			return conns[i].ArrTime > conns[j].ArrTime
		}
		if conns[i].TripIdx != conns[j].TripIdx {
			return conns[i].TripIdx > conns[j].TripIdx
		}
		return conns[i].SequenceInTrip > conns[j].SequenceInTrip
	})
}

// RebuildTripConnectionsRef re-derives each trip's ConnectionsRef from the
// (now sorted) forward connection array, since sorting invalidates any
// indices recorded while connections were being appended in load order.
// Call once after SortConnections during network assembly.
func RebuildTripConnectionsRef(net *network.Network) {
	for i := range net.Trips {
		net.Trips[i].ConnectionsRef = net.Trips[i].ConnectionsRef[:0]
	}
	for i, conn := range net.ForwardConnections {
		t := &net.Trips[conn.TripIdx]
		t.ConnectionsRef = append(t.ConnectionsRef, network.ConnectionIndex(i))
	}
}
