package cache

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

// SqliteFootpathCache is a durable, embedded store for resolved walk-oracle
// results keyed by exact point coordinates. Unlike the Redis-backed cache
// in internal/walkoracle it survives process restarts. No package or
// command in this module opens it: neither the batch engine nor the CLI
// reads config.NetworkConfig.SqliteCachePath.
type SqliteFootpathCache struct {
	db *sql.DB
}

func OpenSqliteFootpathCache(path string) (*SqliteFootpathCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite footpath cache")
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS footpaths (
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		to_node INTEGER NOT NULL,
		walk_seconds INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_footpaths_point ON footpaths(lon, lat);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create footpaths schema")
	}
	return &SqliteFootpathCache{db: db}, nil
}

func (c *SqliteFootpathCache) Close() error { return c.db.Close() }

func (c *SqliteFootpathCache) Get(lon, lat float64) ([]network.Footpath, bool, error) {
	rows, err := c.db.Query(`SELECT to_node, walk_seconds FROM footpaths WHERE lon = ? AND lat = ?`, lon, lat)
	if err != nil {
		return nil, false, errors.Wrap(err, "query footpath cache")
	}
	defer rows.Close()

	var out []network.Footpath
	for rows.Next() {
		var toNode int32
		var walkSeconds int
		if err := rows.Scan(&toNode, &walkSeconds); err != nil {
			return nil, false, errors.Wrap(err, "scan footpath cache row")
		}
		out = append(out, network.Footpath{ToNodeIdx: network.NodeIndex(toNode), WalkSeconds: walkSeconds})
	}
	return out, len(out) > 0, rows.Err()
}

func (c *SqliteFootpathCache) Put(lon, lat float64, footpaths []network.Footpath) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin footpath cache tx")
	}
	stmt, err := tx.Prepare(`INSERT INTO footpaths(lon, lat, to_node, walk_seconds) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare footpath cache insert")
	}
	defer stmt.Close()
	for _, fp := range footpaths {
		if _, err := stmt.Exec(lon, lat, int32(fp.ToNodeIdx), fp.WalkSeconds); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "insert footpath cache row")
		}
	}
	return errors.Wrap(tx.Commit(), "commit footpath cache tx")
}
