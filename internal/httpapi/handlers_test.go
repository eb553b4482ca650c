package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/httpapi"
	"github.com/chairemobilite/trrouting-go/internal/network"
)

// fixedOracle resolves the origin coordinate (lon=1) to node 0 and the
// destination coordinate (lon=2) to node 1, matching the two fixed query
// points every test below uses.
type fixedOracle struct{}

func (fixedOracle) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) {
	if lon < 1.5 {
		return []network.Footpath{{ToNodeIdx: 0, WalkSeconds: 60}}, nil
	}
	return []network.Footpath{{ToNodeIdx: 1, WalkSeconds: 60}}, nil
}

func twoStopNetwork() *network.Network {
	net := &network.Network{
		Nodes: []network.Node{{Index: 0, Code: "A"}, {Index: 1, Code: "B"}},
		Lines: []network.Line{{Index: 0}},
		Paths: []network.Path{{Index: 0, LineIdx: 0, NodesRef: []network.NodeIndex{0, 1}}},
		Trips: []network.Trip{{Index: 0, LineIdx: 0, PathIdx: 0}},
	}
	conn := network.Connection{
		DepNodeIdx: 0, ArrNodeIdx: 1,
		// 8:30:00 request + 60s access walk + 180s default min waiting
		// time puts the node's tentative time at 8:34:00; the connection
		// must depart no earlier than that to be boardable.
		DepTime: 8*3600 + 35*60, ArrTime: 8*3600 + 45*60,
		TripIdx: 0, CanBoard: true, CanUnboard: true,
	}
	net.ForwardConnections = []network.Connection{conn}
	net.ReverseConnections = []network.Connection{conn}
	net.Trips[0].ConnectionsRef = []network.ConnectionIndex{0}
	net.Build()
	return net
}

func newTestServer() *httpapi.Server {
	net := twoStopNetwork()
	pool := httpapi.NewWorkerPool(net, 2)
	return httpapi.NewServer(net, pool, fixedOracle{}, time.Second)
}

func TestHealthEndpointReturnsOK(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListNodesEndpointReturnsNetworkNodes(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var nodes []network.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	assert.Len(t, nodes, 2)
}

func TestRouteEndpointRejectsMissingCoordinates(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/route?from_lon=1&from_lat=1", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteEndpointReturnsItineraryForValidForwardQuery(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/route?from_lon=1&from_lat=1&to_lon=2&to_lat=2&time=30600", nil) // 8:30:00 request; the only trip departs at 8:35:00
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["Steps"])
}

func TestRouteEndpointReturnsNotFoundWhenNoRoutingExists(t *testing.T) {
	srv := newTestServer()
	// Request a departure time after the network's only connection has
	// already left: no journey can reach the destination.
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/route?from_lon=1&from_lat=1&to_lon=2&to_lat=2&time=100000", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
