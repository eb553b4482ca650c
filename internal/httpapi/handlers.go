package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/chairemobilite/trrouting-go/internal/csa"
	"github.com/chairemobilite/trrouting-go/internal/itinerary"
	"github.com/chairemobilite/trrouting-go/internal/query"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleRoute implements spec §6's single-journey query: "GET
// /api/v1/route?from_lon=&from_lat=&to_lon=&to_lat=&time=&scenario=".
// Generalizes the teacher's GetRoute handler (viewport-based stop lookup
// feeding RAPTOR) into a CSA sweep anchored on the walk oracle's resolved
// access/egress nodes: forward by default, reverse (time is the arrival
// time) when time_type=1.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fromLon, err1 := strconv.ParseFloat(q.Get("from_lon"), 64)
	fromLat, err2 := strconv.ParseFloat(q.Get("from_lat"), 64)
	toLon, err3 := strconv.ParseFloat(q.Get("to_lon"), 64)
	toLat, err4 := strconv.ParseFloat(q.Get("to_lat"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid origin/destination coordinates")
		return
	}

	timeOfTrip := 8*3600 + 30*60
	if t := q.Get("time"); t != "" {
		parsed, err := strconv.Atoi(t)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid time parameter")
			return
		}
		timeOfTrip = parsed
	}

	timeType := query.TimeTypeDeparture
	if tt := q.Get("time_type"); tt == "1" {
		timeType = query.TimeTypeArrival
	}

	params := query.Parameters{
		Origin:            query.Point{Lon: fromLon, Lat: fromLat},
		Destination:       query.Point{Lon: toLon, Lat: toLat},
		HasOrigin:         true,
		HasDest:           true,
		TimeOfTripSeconds: timeOfTrip,
		HasTimeOfTrip:     true,
		TimeType:          timeType,
	}

	if scenarioUUID := q.Get("scenario"); scenarioUUID != "" {
		scenario, ok := s.net.ScenarioByUUID(scenarioUUID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown scenario")
			return
		}
		params.ScenarioUUID = scenarioUUID
		params.OnlyServicesIdx = scenario.OnlyServicesIdx
		params.OnlyLinesIdx = scenario.OnlyLinesIdx
		params.OnlyAgenciesIdx = scenario.OnlyAgenciesIdx
		params.OnlyModesIdx = scenario.OnlyModesIdx
		params.OnlyNodesIdx = scenario.OnlyNodesIdx
		params.ExceptServicesIdx = scenario.ExceptServicesIdx
		params.ExceptLinesIdx = scenario.ExceptLinesIdx
		params.ExceptAgenciesIdx = scenario.ExceptAgenciesIdx
		params.ExceptModesIdx = scenario.ExceptModesIdx
		params.ExceptNodesIdx = scenario.ExceptNodesIdx
	}
	params = params.WithDefaults()

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	scratch := s.workers.Acquire()
	defer s.workers.Release(scratch)

	if err := csa.Reset(s.net, scratch, params, s.oracle, true, true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var it *itinerary.Itinerary
	if params.IsForward() {
		egressNode, err := csa.RunForward(ctx, s.net, scratch, params)
		if err != nil {
			writeRoutingError(w, err)
			return
		}
		it = itinerary.FromForward(s.net, scratch, egressNode, scratch.DepartureTimeSeconds)
	} else {
		accessNode, err := csa.RunReverse(ctx, s.net, scratch, params)
		if err != nil {
			writeRoutingError(w, err)
			return
		}
		it = itinerary.FromReverse(s.net, scratch, accessNode, scratch.ArrivalTimeSeconds)
	}

	writeJSON(w, http.StatusOK, it)
}

func writeRoutingError(w http.ResponseWriter, err error) {
	if reason, ok := csa.IsNoRoutingFound(err); ok {
		writeError(w, http.StatusNotFound, reason.Error())
		return
	}
	if _, ok := err.(*csa.TimeoutError); ok {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
