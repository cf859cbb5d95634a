package util

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"montage/timeline"
)

// Database wraps the SQL database with project/track/keyframe methods.
// It implements timeline.Persistence.
type Database struct {
	db *sql.DB
}

// InitDatabase creates and initializes the database under dataDir.
func InitDatabase(dataDir string) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "montage.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		aspect_ratio TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		quality TEXT,
		duration INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		type TEXT NOT NULL,
		label TEXT NOT NULL,
		locked BOOLEAN DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		volume REAL NOT NULL DEFAULT 100,
		muted BOOLEAN DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS keyframes (
		id TEXT PRIMARY KEY,
		track_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		data TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tracks_project ON tracks(project_id);
	CREATE INDEX IF NOT EXISTS idx_keyframes_track ON keyframes(track_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveProject inserts or replaces a project row.
func (d *Database) SaveProject(p *timeline.Project) error {
	query := `INSERT OR REPLACE INTO projects
		(id, title, description, aspect_ratio, width, height, quality, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query, p.ID, p.Title, p.Description, string(p.AspectRatio),
		p.Width, p.Height, p.Quality, p.Duration, p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	return err
}

// GetProject loads one project row.
func (d *Database) GetProject(id string) (*timeline.Project, error) {
	row := d.db.QueryRow(`SELECT id, title, description, aspect_ratio, width, height, quality, duration, created_at, updated_at
		FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*timeline.Project, error) {
	var p timeline.Project
	var description sql.NullString
	var aspect string
	var createdAt, updatedAt int64
	err := row.Scan(&p.ID, &p.Title, &description, &aspect, &p.Width, &p.Height,
		&p.Quality, &p.Duration, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.AspectRatio = timeline.AspectRatio(aspect)
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// ListProjects returns all projects, most recently updated first.
func (d *Database) ListProjects() ([]timeline.Project, error) {
	rows, err := d.db.Query(`SELECT id, title, description, aspect_ratio, width, height, quality, duration, created_at, updated_at
		FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []timeline.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			continue
		}
		results = append(results, *p)
	}
	return results, nil
}

// DeleteProject removes a project and cascades to its tracks and keyframes.
func (d *Database) DeleteProject(id string) error {
	if _, err := d.db.Exec(`DELETE FROM keyframes WHERE track_id IN (SELECT id FROM tracks WHERE project_id = ?)`, id); err != nil {
		return err
	}
	if _, err := d.db.Exec(`DELETE FROM tracks WHERE project_id = ?`, id); err != nil {
		return err
	}
	_, err := d.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}

// SaveTrack inserts or replaces a track row.
func (d *Database) SaveTrack(t *timeline.Track) error {
	query := `INSERT OR REPLACE INTO tracks
		(id, project_id, type, label, locked, sort_order, volume, muted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query, t.ID, t.ProjectID, string(t.Type), t.Label,
		t.Locked, t.Order, t.Volume, t.Muted)
	return err
}

// DeleteTrack removes a track row and its keyframes.
func (d *Database) DeleteTrack(id string) error {
	if _, err := d.db.Exec(`DELETE FROM keyframes WHERE track_id = ?`, id); err != nil {
		return err
	}
	_, err := d.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	return err
}

// SaveKeyframe inserts or replaces a keyframe row. The media payload is
// stored as JSON.
func (d *Database) SaveKeyframe(k *timeline.Keyframe) error {
	data, err := json.Marshal(k.Data)
	if err != nil {
		return fmt.Errorf("failed to encode keyframe data: %v", err)
	}
	query := `INSERT OR REPLACE INTO keyframes (id, track_id, ts, duration, data) VALUES (?, ?, ?, ?, ?)`
	_, err = d.db.Exec(query, k.ID, k.TrackID, k.Timestamp, k.Duration, string(data))
	return err
}

// DeleteKeyframe removes a keyframe row.
func (d *Database) DeleteKeyframe(id string) error {
	_, err := d.db.Exec(`DELETE FROM keyframes WHERE id = ?`, id)
	return err
}

// LoadProject loads a project with its tracks and keyframes grouped by
// track, the shape the timeline store is constructed from.
func (d *Database) LoadProject(id string) (*timeline.Project, []timeline.Track, map[string][]timeline.Keyframe, error) {
	project, err := d.GetProject(id)
	if err == sql.ErrNoRows {
		return nil, nil, nil, fmt.Errorf("project not found: %s", id)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load project: %v", err)
	}

	rows, err := d.db.Query(`SELECT id, project_id, type, label, locked, sort_order, volume, muted
		FROM tracks WHERE project_id = ?`, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load tracks: %v", err)
	}
	defer rows.Close()

	var tracks []timeline.Track
	for rows.Next() {
		var t timeline.Track
		var trackType string
		if err := rows.Scan(&t.ID, &t.ProjectID, &trackType, &t.Label, &t.Locked, &t.Order, &t.Volume, &t.Muted); err != nil {
			continue
		}
		t.Type = timeline.TrackType(trackType)
		tracks = append(tracks, t)
	}

	keyframes := make(map[string][]timeline.Keyframe)
	for _, t := range tracks {
		kfRows, err := d.db.Query(`SELECT id, track_id, ts, duration, data FROM keyframes WHERE track_id = ? ORDER BY ts`, t.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load keyframes: %v", err)
		}
		for kfRows.Next() {
			var k timeline.Keyframe
			var data string
			if err := kfRows.Scan(&k.ID, &k.TrackID, &k.Timestamp, &k.Duration, &data); err != nil {
				continue
			}
			if err := json.Unmarshal([]byte(data), &k.Data); err != nil {
				fmt.Printf("Warning: skipping keyframe %s with bad payload: %v\n", k.ID, err)
				continue
			}
			keyframes[t.ID] = append(keyframes[t.ID], k)
		}
		kfRows.Close()
	}

	return project, tracks, keyframes, nil
}
