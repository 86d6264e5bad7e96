// Package store persists finished planning episodes to a local SQLite
// database so benchmark runs and ground-station sessions can be replayed
// and compared after the fact.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

type Store struct {
	*sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS episodes (
		episode_id         TEXT PRIMARY KEY,
		planning_time      DOUBLE,
		preprocessing_time DOUBLE,
		iterations         BIGINT,
		improvements       BIGINT,
		initial_cost       DOUBLE,
		final_cost         DOUBLE,
		configuration      TEXT,
		created_at         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS segments (
		episode_id  TEXT,
		trajectory  BIGINT,
		seq         BIGINT,
		x           DOUBLE,
		y           DOUBLE,
		z           DOUBLE,
		dir         DOUBLE,
		length      DOUBLE,
		start_time  DOUBLE,
		PRIMARY KEY(episode_id, trajectory, seq),
		FOREIGN KEY(episode_id) REFERENCES episodes(episode_id)
	);
`

// Open opens (creating if needed) the episode database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

// Episode is a persisted planning episode: run statistics plus the final
// plan flattened to per-trajectory segment rows.
type Episode struct {
	ID                string
	PlanningTime      float64
	PreprocessingTime float64
	Iterations        int
	Improvements      int
	InitialCost       float64
	FinalCost         float64
	Configuration     json.RawMessage
	CreatedAt         time.Time
	Trajectories      [][]StoredSegment
}

// StoredSegment is one row of a flattened trajectory.
type StoredSegment struct {
	X, Y, Z   float64
	Dir       float64
	Length    float64
	StartTime float64
}

// SaveEpisode writes a finished search result in a single transaction.
func (s *Store) SaveEpisode(res *vns.SearchResult) error {
	if res == nil || res.FinalPlan == nil {
		return fmt.Errorf("store: cannot save an incomplete search result")
	}
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO episodes (
			episode_id, planning_time, preprocessing_time, iterations,
			improvements, initial_cost, final_cost, configuration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Metadata.EpisodeID, res.Metadata.PlanningTime,
		res.Metadata.PreprocessingTime, res.Metadata.Iterations,
		res.Metadata.Improvements, res.InitialPlan.Cost(),
		res.FinalPlan.Cost(), string(res.Metadata.Configuration),
	)
	if err != nil {
		return fmt.Errorf("store: insert episode: %w", err)
	}

	ins, err := tx.Prepare(
		`INSERT INTO segments (episode_id, trajectory, seq, x, y, z, dir, length, start_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()

	p := res.FinalPlan
	for ti := 0; ti < p.NumTrajectories(); ti++ {
		traj := p.Trajectory(ti)
		for si := 0; si < traj.Size(); si++ {
			seg := traj.Segment(si)
			_, err := ins.Exec(res.Metadata.EpisodeID, ti, si,
				seg.Start.X, seg.Start.Y, seg.Start.Z, seg.Start.Dir,
				seg.Length, traj.StartTime(si))
			if err != nil {
				return fmt.Errorf("store: insert segment %d/%d: %w", ti, si, err)
			}
		}
	}
	return tx.Commit()
}

// LoadEpisode reads back one episode by id.
func (s *Store) LoadEpisode(id string) (*Episode, error) {
	ep := &Episode{ID: id}
	var configuration string
	err := s.QueryRow(
		`SELECT planning_time, preprocessing_time, iterations, improvements,
		        initial_cost, final_cost, configuration, created_at
		 FROM episodes WHERE episode_id = ?`, id).Scan(
		&ep.PlanningTime, &ep.PreprocessingTime, &ep.Iterations,
		&ep.Improvements, &ep.InitialCost, &ep.FinalCost,
		&configuration, &ep.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: no episode %q", id)
	}
	if err != nil {
		return nil, err
	}
	ep.Configuration = json.RawMessage(configuration)

	rows, err := s.Query(
		`SELECT trajectory, x, y, z, dir, length, start_time
		 FROM segments WHERE episode_id = ? ORDER BY trajectory, seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ti int
		var seg StoredSegment
		if err := rows.Scan(&ti, &seg.X, &seg.Y, &seg.Z, &seg.Dir, &seg.Length, &seg.StartTime); err != nil {
			return nil, err
		}
		for len(ep.Trajectories) <= ti {
			ep.Trajectories = append(ep.Trajectories, nil)
		}
		ep.Trajectories[ti] = append(ep.Trajectories[ti], seg)
	}
	return ep, rows.Err()
}

// ListEpisodes returns episode ids newest first.
func (s *Store) ListEpisodes() ([]string, error) {
	rows, err := s.Query(`SELECT episode_id FROM episodes ORDER BY created_at DESC, episode_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
