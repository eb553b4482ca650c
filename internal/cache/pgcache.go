package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

// PgLoader loads a Network directly from a Postgres/PostGIS schema,
// generalizing the teacher's internal/routing/loader.go: the same
// node/line/path/trip shape, reworked from the teacher's RAPTOR
// stop/route/trip tables into the CSA model's connection array.
type PgLoader struct {
	db *pgxpool.Pool
}

func NewPgLoader(db *pgxpool.Pool) *PgLoader {
	return &PgLoader{db: db}
}

// Load reads nodes, lines, paths, trips and their timetabled connections,
// then derives footpaths from a PostGIS proximity join, mirroring the
// teacher's ST_DWithin transfer-generation query.
func (l *PgLoader) Load(ctx context.Context) (*network.Network, error) {
	start := time.Now()
	log.Info().Msg("loading network from postgres")

	net := &network.Network{}

	nodeByDBID := make(map[int]network.NodeIndex)
	rows, err := l.db.Query(ctx, `SELECT id, uuid, code, name, ST_X(location::geometry), ST_Y(location::geometry) FROM nodes`)
	if err != nil {
		return nil, errors.Wrap(err, "query nodes")
	}
	for rows.Next() {
		var dbID int
		var n network.Node
		var rawUUID string
		if err := rows.Scan(&dbID, &rawUUID, &n.Code, &n.Name, &n.Lon, &n.Lat); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan node")
		}
		n.UUID, _ = uuid.Parse(rawUUID)
		n.Index = network.NodeIndex(len(net.Nodes))
		nodeByDBID[dbID] = n.Index
		net.Nodes = append(net.Nodes, n)
	}
	rows.Close()
	log.Info().Int("nodes", len(net.Nodes)).Msg("loaded nodes")

	agencyByDBID := make(map[int]network.AgencyIndex)
	aRows, err := l.db.Query(ctx, `SELECT id, uuid, acronym, name FROM agencies`)
	if err != nil {
		return nil, errors.Wrap(err, "query agencies")
	}
	for aRows.Next() {
		var dbID int
		var a network.Agency
		var rawUUID string
		if err := aRows.Scan(&dbID, &rawUUID, &a.Acronym, &a.Name); err != nil {
			aRows.Close()
			return nil, errors.Wrap(err, "scan agency")
		}
		a.UUID, _ = uuid.Parse(rawUUID)
		a.Index = network.AgencyIndex(len(net.Agencies))
		agencyByDBID[dbID] = a.Index
		net.Agencies = append(net.Agencies, a)
	}
	aRows.Close()

	modeByShortName := make(map[string]network.ModeIndex)
	mRows, err := l.db.Query(ctx, `SELECT short_name FROM modes`)
	if err != nil {
		return nil, errors.Wrap(err, "query modes")
	}
	for mRows.Next() {
		var shortName string
		if err := mRows.Scan(&shortName); err != nil {
			mRows.Close()
			return nil, errors.Wrap(err, "scan mode")
		}
		idx := network.ModeIndex(len(net.Modes))
		modeByShortName[shortName] = idx
		net.Modes = append(net.Modes, network.Mode{Index: idx, ShortName: shortName})
	}
	mRows.Close()

	serviceByDBID := make(map[int]network.ServiceIndex)
	sRows, err := l.db.Query(ctx, `SELECT id, uuid, name FROM services`)
	if err != nil {
		return nil, errors.Wrap(err, "query services")
	}
	for sRows.Next() {
		var dbID int
		var s network.Service
		var rawUUID string
		if err := sRows.Scan(&dbID, &rawUUID, &s.Name); err != nil {
			sRows.Close()
			return nil, errors.Wrap(err, "scan service")
		}
		s.UUID, _ = uuid.Parse(rawUUID)
		s.Index = network.ServiceIndex(len(net.Services))
		serviceByDBID[dbID] = s.Index
		net.Services = append(net.Services, s)
	}
	sRows.Close()

	lineByDBID := make(map[int]network.LineIndex)
	lRows, err := l.db.Query(ctx, `SELECT id, uuid, code, short_name, long_name, agency_id, mode_short_name FROM lines`)
	if err != nil {
		return nil, errors.Wrap(err, "query lines")
	}
	for lRows.Next() {
		var dbID, agencyDBID int
		var modeShortName string
		var line network.Line
		var rawUUID string
		if err := lRows.Scan(&dbID, &rawUUID, &line.Code, &line.ShortName, &line.LongName, &agencyDBID, &modeShortName); err != nil {
			lRows.Close()
			return nil, errors.Wrap(err, "scan line")
		}
		line.UUID, _ = uuid.Parse(rawUUID)
		line.Index = network.LineIndex(len(net.Lines))
		line.AgencyIdx = agencyByDBID[agencyDBID]
		line.ModeIdx = modeByShortName[modeShortName]
		lineByDBID[dbID] = line.Index
		net.Lines = append(net.Lines, line)
	}
	lRows.Close()
	log.Info().Int("lines", len(net.Lines)).Msg("loaded lines")

	pathByDBID := make(map[int]network.PathIndex)
	pRows, err := l.db.Query(ctx, `SELECT id, uuid, line_id FROM paths`)
	if err != nil {
		return nil, errors.Wrap(err, "query paths")
	}
	type pathRow struct {
		dbID   int
		lineID int
		uuid   string
	}
	var pathRowsBuf []pathRow
	for pRows.Next() {
		var pr pathRow
		if err := pRows.Scan(&pr.dbID, &pr.uuid, &pr.lineID); err != nil {
			pRows.Close()
			return nil, errors.Wrap(err, "scan path")
		}
		pathRowsBuf = append(pathRowsBuf, pr)
	}
	pRows.Close()

	for _, pr := range pathRowsBuf {
		nodeRows, err := l.db.Query(ctx, `SELECT node_id FROM path_nodes WHERE path_id=$1 ORDER BY sequence`, pr.dbID)
		if err != nil {
			return nil, errors.Wrap(err, "query path_nodes")
		}
		var nodesRef []network.NodeIndex
		for nodeRows.Next() {
			var nodeDBID int
			if err := nodeRows.Scan(&nodeDBID); err != nil {
				nodeRows.Close()
				return nil, errors.Wrap(err, "scan path_node")
			}
			if idx, ok := nodeByDBID[nodeDBID]; ok {
				nodesRef = append(nodesRef, idx)
			}
		}
		nodeRows.Close()
		if len(nodesRef) < 2 {
			continue
		}
		var path network.Path
		path.UUID, _ = uuid.Parse(pr.uuid)
		path.Index = network.PathIndex(len(net.Paths))
		path.LineIdx = lineByDBID[pr.lineID]
		path.NodesRef = nodesRef
		pathByDBID[pr.dbID] = path.Index
		net.Paths = append(net.Paths, path)
	}
	log.Info().Int("paths", len(net.Paths)).Msg("loaded paths")

	tRows, err := l.db.Query(ctx, `SELECT id, uuid, path_id, service_id FROM trips`)
	if err != nil {
		return nil, errors.Wrap(err, "query trips")
	}
	type tripRow struct {
		dbID      int
		uuid      string
		pathDBID  int
		serviceID int
	}
	var tripRowsBuf []tripRow
	for tRows.Next() {
		var tr tripRow
		if err := tRows.Scan(&tr.dbID, &tr.uuid, &tr.pathDBID, &tr.serviceID); err != nil {
			tRows.Close()
			return nil, errors.Wrap(err, "scan trip")
		}
		tripRowsBuf = append(tripRowsBuf, tr)
	}
	tRows.Close()

	for _, tr := range tripRowsBuf {
		pathIdx, ok := pathByDBID[tr.pathDBID]
		if !ok {
			continue
		}
		path := net.Path(pathIdx)

		var trip network.Trip
		trip.UUID, _ = uuid.Parse(tr.uuid)
		trip.Index = network.TripIndex(len(net.Trips))
		trip.PathIdx = pathIdx
		trip.LineIdx = path.LineIdx
		trip.ServiceIdx = serviceByDBID[tr.serviceID]
		trip.AgencyIdx = net.Line(path.LineIdx).AgencyIdx
		trip.ModeIdx = net.Line(path.LineIdx).ModeIdx

		stRows, err := l.db.Query(ctx, `SELECT sequence, departure_time_seconds, arrival_time_seconds, can_board, can_unboard FROM stop_times WHERE trip_id=$1 ORDER BY sequence`, tr.dbID)
		if err != nil {
			return nil, errors.Wrap(err, "query stop_times")
		}
		type st struct {
			seq                  int
			dep, arr             int
			canBoard, canUnboard bool
		}
		var stopTimes []st
		for stRows.Next() {
			var s st
			if err := stRows.Scan(&s.seq, &s.dep, &s.arr, &s.canBoard, &s.canUnboard); err != nil {
				stRows.Close()
				return nil, errors.Wrap(err, "scan stop_time")
			}
			stopTimes = append(stopTimes, s)
		}
		stRows.Close()

		for i := 0; i+1 < len(stopTimes) && i+1 < len(path.NodesRef); i++ {
			conn := network.Connection{
				DepNodeIdx:     path.NodesRef[i],
				ArrNodeIdx:     path.NodesRef[i+1],
				DepTime:        stopTimes[i].dep,
				ArrTime:        stopTimes[i+1].arr,
				TripIdx:        trip.Index,
				CanBoard:       stopTimes[i].canBoard,
				CanUnboard:     stopTimes[i+1].canUnboard,
				SequenceInTrip: i,
			}
			connIdx := network.ConnectionIndex(len(net.ForwardConnections))
			net.ForwardConnections = append(net.ForwardConnections, conn)
			trip.ConnectionsRef = append(trip.ConnectionsRef, connIdx)
		}
		net.Trips = append(net.Trips, trip)
	}
	log.Info().Int("trips", len(net.Trips)).Int("connections", len(net.ForwardConnections)).Msg("loaded trips")

	SortConnections(net)
	RebuildTripConnectionsRef(net)

	fpRows, err := l.db.Query(ctx, `
		SELECT n1.id, n2.id, ST_Distance(n1.location::geography, n2.location::geography)
		FROM nodes n1
		JOIN nodes n2 ON ST_DWithin(n1.location::geography, n2.location::geography, 300)
		WHERE n1.id != n2.id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query footpaths")
	}
	net.Footpaths = make(map[network.NodeIndex][]network.Footpath)
	for fpRows.Next() {
		var dbID1, dbID2 int
		var dist float64
		if err := fpRows.Scan(&dbID1, &dbID2, &dist); err != nil {
			fpRows.Close()
			return nil, errors.Wrap(err, "scan footpath")
		}
		idx1, ok1 := nodeByDBID[dbID1]
		idx2, ok2 := nodeByDBID[dbID2]
		if !ok1 || !ok2 {
			continue
		}
		walkSeconds := int(dist / 1.1) // ~1.1 m/s default walking speed
		net.Footpaths[idx1] = append(net.Footpaths[idx1], network.Footpath{FromNodeIdx: idx1, ToNodeIdx: idx2, WalkSeconds: walkSeconds})
	}
	fpRows.Close()

	net.Build()
	log.Info().Dur("elapsed", time.Since(start)).Msg("network load complete")
	return net, nil
}

// SortConnections orders net.ForwardConnections by departure time (ties by
// trip then sequence) and builds net.ReverseConnections as the
// arrival-time-descending mirror, per spec §3's array ordering invariant.
func SortConnections(net *network.Network) {
	sortConnectionsAsc(net.ForwardConnections)

	net.ReverseConnections = make([]network.Connection, len(net.ForwardConnections))
	copy(net.ReverseConnections, net.ForwardConnections)
	sortConnectionsDesc(net.ReverseConnections)
}
