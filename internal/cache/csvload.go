package cache

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

// csvNode/csvLine/... mirror a GTFS-style flat-file export: one row per
// entity, referencing other entities by UUID string rather than by the
// in-memory dense index (which only exists after loading).
type csvNode struct {
	UUID string  `csv:"uuid"`
	Code string  `csv:"code"`
	Name string  `csv:"name"`
	Lat  float64 `csv:"lat"`
	Lon  float64 `csv:"lon"`
}

type csvAgency struct {
	UUID    string `csv:"uuid"`
	Acronym string `csv:"acronym"`
	Name    string `csv:"name"`
}

type csvService struct {
	UUID string `csv:"uuid"`
	Name string `csv:"name"`
}

type csvLine struct {
	UUID        string `csv:"uuid"`
	Code        string `csv:"code"`
	ShortName   string `csv:"short_name"`
	LongName    string `csv:"long_name"`
	AgencyUUID  string `csv:"agency_uuid"`
	ModeShortName string `csv:"mode"`
}

type csvPath struct {
	UUID     string `csv:"uuid"`
	LineUUID string `csv:"line_uuid"`
	NodeUUID string `csv:"node_uuid"`
	Sequence int    `csv:"sequence"`
}

type csvTrip struct {
	UUID        string `csv:"uuid"`
	PathUUID    string `csv:"path_uuid"`
	ServiceUUID string `csv:"service_uuid"`
}

type csvStopTime struct {
	TripUUID             string `csv:"trip_uuid"`
	Sequence             int    `csv:"sequence"`
	DepartureTimeSeconds int    `csv:"departure_time_seconds"`
	ArrivalTimeSeconds   int    `csv:"arrival_time_seconds"`
	CanBoard             bool   `csv:"can_board"`
	CanUnboard           bool   `csv:"can_unboard"`
}

// LoadCSV builds a Network from a directory of GTFS-shaped CSV files
// (nodes.csv, agencies.csv, services.csv, lines.csv, paths.csv, trips.csv,
// stop_times.csv), using gocarina/gocsv for the struct<->row marshaling —
// the same tagged-struct idiom the pack's GTFS tooling (tidbyt-gtfs)
// pulls this library in for.
func LoadCSV(dir string) (*network.Network, error) {
	net := &network.Network{}

	nodeIdx := make(map[string]network.NodeIndex)
	var nodes []csvNode
	if err := readCSV(filepath.Join(dir, "nodes.csv"), &nodes); err != nil {
		return nil, err
	}
	for _, r := range nodes {
		n := network.Node{Code: r.Code, Name: r.Name, Lat: r.Lat, Lon: r.Lon, Index: network.NodeIndex(len(net.Nodes))}
		n.UUID, _ = uuid.Parse(r.UUID)
		nodeIdx[r.UUID] = n.Index
		net.Nodes = append(net.Nodes, n)
	}

	agencyIdx := make(map[string]network.AgencyIndex)
	var agencies []csvAgency
	if err := readCSV(filepath.Join(dir, "agencies.csv"), &agencies); err != nil {
		return nil, err
	}
	for _, r := range agencies {
		a := network.Agency{Acronym: r.Acronym, Name: r.Name, Index: network.AgencyIndex(len(net.Agencies))}
		a.UUID, _ = uuid.Parse(r.UUID)
		agencyIdx[r.UUID] = a.Index
		net.Agencies = append(net.Agencies, a)
	}

	serviceIdx := make(map[string]network.ServiceIndex)
	var services []csvService
	if err := readCSV(filepath.Join(dir, "services.csv"), &services); err != nil {
		return nil, err
	}
	for _, r := range services {
		s := network.Service{Name: r.Name, Index: network.ServiceIndex(len(net.Services))}
		s.UUID, _ = uuid.Parse(r.UUID)
		serviceIdx[r.UUID] = s.Index
		net.Services = append(net.Services, s)
	}

	modeIdx := make(map[string]network.ModeIndex)
	modeOf := func(shortName string) network.ModeIndex {
		if idx, ok := modeIdx[shortName]; ok {
			return idx
		}
		idx := network.ModeIndex(len(net.Modes))
		modeIdx[shortName] = idx
		net.Modes = append(net.Modes, network.Mode{Index: idx, ShortName: shortName})
		return idx
	}

	lineIdx := make(map[string]network.LineIndex)
	var lines []csvLine
	if err := readCSV(filepath.Join(dir, "lines.csv"), &lines); err != nil {
		return nil, err
	}
	for _, r := range lines {
		l := network.Line{
			Code: r.Code, ShortName: r.ShortName, LongName: r.LongName,
			AgencyIdx: agencyIdx[r.AgencyUUID], ModeIdx: modeOf(r.ModeShortName),
			Index: network.LineIndex(len(net.Lines)),
		}
		l.UUID, _ = uuid.Parse(r.UUID)
		lineIdx[r.UUID] = l.Index
		net.Lines = append(net.Lines, l)
	}

	pathIdx := make(map[string]network.PathIndex)
	var pathRows []csvPath
	if err := readCSV(filepath.Join(dir, "paths.csv"), &pathRows); err != nil {
		return nil, err
	}
	orderedNodesByPath := make(map[string][]csvPath)
	for _, r := range pathRows {
		orderedNodesByPath[r.UUID] = append(orderedNodesByPath[r.UUID], r)
	}
	for pathUUID, rows := range orderedNodesByPath {
		sortPathRowsBySequence(rows)
		var nodesRef []network.NodeIndex
		for _, row := range rows {
			if idx, ok := nodeIdx[row.NodeUUID]; ok {
				nodesRef = append(nodesRef, idx)
			}
		}
		if len(nodesRef) < 2 {
			continue
		}
		p := network.Path{LineIdx: lineIdx[rows[0].LineUUID], NodesRef: nodesRef, Index: network.PathIndex(len(net.Paths))}
		p.UUID, _ = uuid.Parse(pathUUID)
		pathIdx[pathUUID] = p.Index
		net.Paths = append(net.Paths, p)
	}

	tripIdx := make(map[string]network.TripIndex)
	var trips []csvTrip
	if err := readCSV(filepath.Join(dir, "trips.csv"), &trips); err != nil {
		return nil, err
	}
	for _, r := range trips {
		pIdx, ok := pathIdx[r.PathUUID]
		if !ok {
			continue
		}
		path := net.Path(pIdx)
		t := network.Trip{
			PathIdx: pIdx, LineIdx: path.LineIdx, ServiceIdx: serviceIdx[r.ServiceUUID],
			AgencyIdx: net.Line(path.LineIdx).AgencyIdx, ModeIdx: net.Line(path.LineIdx).ModeIdx,
			Index: network.TripIndex(len(net.Trips)),
		}
		t.UUID, _ = uuid.Parse(r.UUID)
		tripIdx[r.UUID] = t.Index
		net.Trips = append(net.Trips, t)
	}

	var stopTimes []csvStopTime
	if err := readCSV(filepath.Join(dir, "stop_times.csv"), &stopTimes); err != nil {
		return nil, err
	}
	byTrip := make(map[string][]csvStopTime)
	for _, st := range stopTimes {
		byTrip[st.TripUUID] = append(byTrip[st.TripUUID], st)
	}
	for tripUUID, sts := range byTrip {
		tIdx, ok := tripIdx[tripUUID]
		if !ok {
			continue
		}
		sortStopTimesBySequence(sts)
		trip := &net.Trips[tIdx]
		path := net.Path(trip.PathIdx)
		for i := 0; i+1 < len(sts) && i+1 < len(path.NodesRef); i++ {
			conn := network.Connection{
				DepNodeIdx: path.NodesRef[i], ArrNodeIdx: path.NodesRef[i+1],
				DepTime: sts[i].DepartureTimeSeconds, ArrTime: sts[i+1].ArrivalTimeSeconds,
				TripIdx: tIdx, CanBoard: sts[i].CanBoard, CanUnboard: sts[i+1].CanUnboard,
				SequenceInTrip: i,
			}
			connIdx := network.ConnectionIndex(len(net.ForwardConnections))
			net.ForwardConnections = append(net.ForwardConnections, conn)
			trip.ConnectionsRef = append(trip.ConnectionsRef, connIdx)
		}
	}

	SortConnections(net)
	RebuildTripConnectionsRef(net)
	net.Build()
	return net, nil
}

func readCSV[T any](path string, out *[]T) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return errors.Wrapf(gocsv.UnmarshalFile(f, out), "unmarshal %s", path)
}

func sortPathRowsBySequence(rows []csvPath) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].Sequence > rows[j].Sequence; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

func sortStopTimesBySequence(rows []csvStopTime) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].Sequence > rows[j].Sequence; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}
