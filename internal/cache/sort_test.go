package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

func TestSortConnectionsAscOrdersByDepTimeThenTripThenSequence(t *testing.T) {
	conns := []network.Connection{
		{DepTime: 100, TripIdx: 1, SequenceInTrip: 0},
		{DepTime: 50, TripIdx: 0, SequenceInTrip: 0},
		{DepTime: 50, TripIdx: 0, SequenceInTrip: 1},
	}
	sortConnectionsAsc(conns)

	assert.Equal(t, 50, conns[0].DepTime)
	assert.Equal(t, 0, conns[0].SequenceInTrip)
	assert.Equal(t, 50, conns[1].DepTime)
	assert.Equal(t, 1, conns[1].SequenceInTrip)
	assert.Equal(t, 100, conns[2].DepTime)
}

func TestSortConnectionsDescOrdersByArrTimeThenTripThenSequenceDescending(t *testing.T) {
	conns := []network.Connection{
		{ArrTime: 50, TripIdx: 0, SequenceInTrip: 0},
		{ArrTime: 100, TripIdx: 1, SequenceInTrip: 0},
		{ArrTime: 100, TripIdx: 1, SequenceInTrip: 1},
	}
	sortConnectionsDesc(conns)

	assert.Equal(t, 100, conns[0].ArrTime)
	assert.Equal(t, 1, conns[0].SequenceInTrip)
	assert.Equal(t, 100, conns[1].ArrTime)
	assert.Equal(t, 0, conns[1].SequenceInTrip)
	assert.Equal(t, 50, conns[2].ArrTime)
}

func TestRebuildTripConnectionsRefReindexesAfterSort(t *testing.T) {
	net := &network.Network{
		Trips: []network.Trip{
			{Index: 0, ConnectionsRef: []network.ConnectionIndex{99}},
			{Index: 1, ConnectionsRef: []network.ConnectionIndex{99}},
		},
		ForwardConnections: []network.Connection{
			{TripIdx: 1, SequenceInTrip: 0},
			{TripIdx: 0, SequenceInTrip: 0},
			{TripIdx: 1, SequenceInTrip: 1},
		},
	}

	RebuildTripConnectionsRef(net)

	assert.Equal(t, []network.ConnectionIndex{1}, net.Trips[0].ConnectionsRef)
	assert.Equal(t, []network.ConnectionIndex{0, 2}, net.Trips[1].ConnectionsRef)
}
