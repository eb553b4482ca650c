// Package walkoracle supplies the concrete WalkOracle implementations the
// csa package's reset stage calls when a query carries neither an OdTrip
// nor explicit access/egress footpaths: it resolves an arbitrary
// lon/lat point to the nodes walkable from it, generalizing the
// teacher's PostGIS ST_DWithin transfer-generation query to a
// per-point lookup instead of an all-pairs precompute.
package walkoracle

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

const defaultRadiusMeters = 500
const defaultWalkSpeedMetersPerSecond = 1.1

// PostGIS resolves access/egress nodes with a live ST_DWithin query
// against the same schema internal/cache.PgLoader reads, the way the
// teacher's loader.go precomputes transfers — but evaluated lazily for an
// arbitrary query point rather than once for every stored node pair.
type PostGIS struct {
	db            *pgxpool.Pool
	radiusMeters  float64
	walkMetersSec float64
}

func NewPostGIS(db *pgxpool.Pool) *PostGIS {
	return &PostGIS{db: db, radiusMeters: defaultRadiusMeters, walkMetersSec: defaultWalkSpeedMetersPerSecond}
}

func (p *PostGIS) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.Query(ctx, `
		SELECT id, ST_Distance(location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		FROM nodes
		WHERE ST_DWithin(location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
	`, lon, lat, p.radiusMeters)
	if err != nil {
		return nil, errors.Wrap(err, "query accessible nodes")
	}
	defer rows.Close()

	var out []network.Footpath
	for rows.Next() {
		var dbID int
		var dist float64
		if err := rows.Scan(&dbID, &dist); err != nil {
			return nil, errors.Wrap(err, "scan accessible node")
		}
		out = append(out, network.Footpath{
			ToNodeIdx:   network.NodeIndex(dbID),
			WalkSeconds: int(dist / p.walkMetersSec),
		})
	}
	return out, rows.Err()
}
