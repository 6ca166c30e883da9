// Package persistence stores complete game snapshots in SQLite. A save is a
// full replace inside one transaction; a load reconstructs a resumable
// session.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/engine"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/game"
	"github.com/talgya/energyville/internal/weather"
)

// ErrNoSave is returned by Load when the database holds no snapshot.
var ErrNoSave = errors.New("no saved game")

// DB wraps a SQLite connection for snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the snapshot database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS city (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS residences (
		id TEXT PRIMARY KEY,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plants (
		id TEXT PRIMARY KEY,
		tech TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS infrastructures (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS managers (
		name TEXT PRIMARY KEY,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// cityState is the savable subset of the city aggregate; the building
// collections live in their own tables.
type cityState struct {
	Name                    string       `json:"name"`
	Level                   int          `json:"level"`
	Clock                   time.Time    `json:"clock"`
	Founded                 time.Time    `json:"founded"`
	Money                   float64      `json:"money"`
	Happiness               float64      `json:"happiness"`
	Coverage                float64      `json:"coverage"`
	ConsecutiveHappyHours   int          `json:"consecutive_happy_hours"`
	ConsecutiveUnhappyHours int          `json:"consecutive_unhappy_hours"`
	ShortfallHours          int          `json:"shortfall_hours"`
	DemandMultiplier        float64      `json:"demand_multiplier"`
	RevenueMultiplier       float64      `json:"revenue_multiplier"`
	History                 city.History `json:"history"`
}

type record struct {
	id   string
	kind string
	blob []byte
}

// snapshot is the fully marshaled game state, captured under the session's
// mutation boundary so the database write can happen outside it.
type snapshot struct {
	cityBlob        []byte
	residences      []record
	plants          []record
	infrastructures []record
	managers        map[string][]byte
	seed            int64
	speed           string
}

func capture(s *game.Session, seed int64) (*snapshot, error) {
	snap := &snapshot{managers: map[string][]byte{}, seed: seed}
	var err error
	s.TM.Do(func() {
		c := s.City
		snap.cityBlob, err = json.Marshal(cityState{
			Name:                    c.Name,
			Level:                   c.Level,
			Clock:                   c.Clock,
			Founded:                 c.Founded,
			Money:                   c.Money,
			Happiness:               c.Happiness,
			Coverage:                c.Coverage,
			ConsecutiveHappyHours:   c.ConsecutiveHappyHours,
			ConsecutiveUnhappyHours: c.ConsecutiveUnhappyHours,
			ShortfallHours:          c.ShortfallHours,
			DemandMultiplier:        c.DemandMultiplier,
			RevenueMultiplier:       c.RevenueMultiplier,
			History:                 c.History,
		})
		if err != nil {
			return
		}
		for _, r := range c.Residences {
			blob, merr := json.Marshal(r)
			if merr != nil {
				err = merr
				return
			}
			snap.residences = append(snap.residences, record{id: r.Building.ID, blob: blob})
		}
		for _, p := range c.Plants {
			blob, merr := json.Marshal(p)
			if merr != nil {
				err = merr
				return
			}
			snap.plants = append(snap.plants, record{
				id: p.Base().ID, kind: string(p.Tech()), blob: blob,
			})
		}
		for _, inf := range c.Infrastructures {
			blob, merr := json.Marshal(inf)
			if merr != nil {
				err = merr
				return
			}
			snap.infrastructures = append(snap.infrastructures, record{
				id: inf.Building.ID, kind: string(inf.Kind), blob: blob,
			})
		}
		for name, m := range map[string]any{
			"energy":     s.Grid,
			"economy":    s.Economy,
			"population": s.Population,
			"gameevent":  s.Events,
		} {
			blob, merr := json.Marshal(m)
			if merr != nil {
				err = merr
				return
			}
			snap.managers[name] = blob
		}
	})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	snap.speed = s.TM.Speed().String()
	return snap, nil
}

// Save writes a complete snapshot of the session, replacing any previous one.
func (db *DB) Save(s *game.Session, seed int64) error {
	snap, err := capture(s, seed)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"city", "residences", "plants", "infrastructures", "managers"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO city (id, state_json) VALUES (1, ?)",
		string(snap.cityBlob)); err != nil {
		return fmt.Errorf("insert city: %w", err)
	}
	for _, r := range snap.residences {
		if _, err := tx.Exec("INSERT INTO residences (id, state_json) VALUES (?, ?)",
			r.id, string(r.blob)); err != nil {
			return fmt.Errorf("insert residence %s: %w", r.id, err)
		}
	}
	for _, r := range snap.plants {
		if _, err := tx.Exec("INSERT INTO plants (id, tech, state_json) VALUES (?, ?, ?)",
			r.id, r.kind, string(r.blob)); err != nil {
			return fmt.Errorf("insert plant %s: %w", r.id, err)
		}
	}
	for _, r := range snap.infrastructures {
		if _, err := tx.Exec("INSERT INTO infrastructures (id, kind, state_json) VALUES (?, ?, ?)",
			r.id, r.kind, string(r.blob)); err != nil {
			return fmt.Errorf("insert infrastructure %s: %w", r.id, err)
		}
	}
	for name, blob := range snap.managers {
		if _, err := tx.Exec("INSERT INTO managers (name, state_json) VALUES (?, ?)",
			name, string(blob)); err != nil {
			return fmt.Errorf("insert manager %s: %w", name, err)
		}
	}

	meta := map[string]string{
		"seed":     strconv.FormatInt(snap.seed, 10),
		"speed":    snap.speed,
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
			k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	slog.Info("game saved",
		"residences", len(snap.residences),
		"plants", len(snap.plants),
		"infrastructures", len(snap.infrastructures))
	return nil
}

// Load reconstructs a resumable session from the stored snapshot. Returns
// ErrNoSave when the database is empty.
func (db *DB) Load() (*game.Session, int64, error) {
	var cityBlob string
	if err := db.conn.Get(&cityBlob, "SELECT state_json FROM city WHERE id = 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNoSave
		}
		return nil, 0, fmt.Errorf("load city: %w", err)
	}

	var cs cityState
	if err := json.Unmarshal([]byte(cityBlob), &cs); err != nil {
		return nil, 0, fmt.Errorf("unmarshal city: %w", err)
	}

	seed, err := db.metaInt("seed")
	if err != nil {
		return nil, 0, err
	}
	speedName, err := db.meta("speed")
	if err != nil {
		return nil, 0, err
	}

	rnd := entropy.NewSource(seed)
	wf := weather.NewField(seed)
	c := city.Empty(cs.Name, cs.Money, rnd, wf)
	c.Level = cs.Level
	c.Clock = cs.Clock
	c.Founded = cs.Founded
	c.Happiness = cs.Happiness
	c.Coverage = cs.Coverage
	c.ConsecutiveHappyHours = cs.ConsecutiveHappyHours
	c.ConsecutiveUnhappyHours = cs.ConsecutiveUnhappyHours
	c.ShortfallHours = cs.ShortfallHours
	c.DemandMultiplier = cs.DemandMultiplier
	c.RevenueMultiplier = cs.RevenueMultiplier
	c.History = cs.History

	if err := db.loadBuildings(c); err != nil {
		return nil, 0, err
	}
	c.AttachRand(rnd, wf)
	c.RefreshDerived()

	s := game.Assemble(c, rnd, engine.ParseSpeed(speedName))
	if err := db.loadManagers(s); err != nil {
		return nil, 0, err
	}

	slog.Info("game loaded", "city", c.Name, "clock", c.Clock, "population", c.Population)
	return s, seed, nil
}

func (db *DB) loadBuildings(c *city.City) error {
	type row struct {
		Kind string `db:"kind"`
		Blob string `db:"state_json"`
	}

	var resRows []struct {
		Blob string `db:"state_json"`
	}
	if err := db.conn.Select(&resRows, "SELECT state_json FROM residences"); err != nil {
		return fmt.Errorf("load residences: %w", err)
	}
	for _, r := range resRows {
		var res building.Residence
		if err := json.Unmarshal([]byte(r.Blob), &res); err != nil {
			return fmt.Errorf("unmarshal residence: %w", err)
		}
		c.Residences = append(c.Residences, &res)
	}

	var plantRows []row
	if err := db.conn.Select(&plantRows, "SELECT tech AS kind, state_json FROM plants"); err != nil {
		return fmt.Errorf("load plants: %w", err)
	}
	for _, r := range plantRows {
		p, err := unmarshalPlant(building.Tech(r.Kind), []byte(r.Blob))
		if err != nil {
			return err
		}
		c.Plants = append(c.Plants, p)
	}

	var infRows []row
	if err := db.conn.Select(&infRows, "SELECT kind, state_json FROM infrastructures"); err != nil {
		return fmt.Errorf("load infrastructures: %w", err)
	}
	for _, r := range infRows {
		var inf building.Infrastructure
		if err := json.Unmarshal([]byte(r.Blob), &inf); err != nil {
			return fmt.Errorf("unmarshal infrastructure: %w", err)
		}
		c.Infrastructures = append(c.Infrastructures, &inf)
	}
	return nil
}

func unmarshalPlant(tech building.Tech, blob []byte) (building.Plant, error) {
	var p building.Plant
	switch tech {
	case building.TechSolar:
		p = &building.SolarPlant{}
	case building.TechWind:
		p = &building.WindTurbine{}
	case building.TechNuclear:
		p = &building.NuclearPlant{}
	default:
		p = &building.CoalPlant{}
	}
	if err := json.Unmarshal(blob, p); err != nil {
		return nil, fmt.Errorf("unmarshal %s plant: %w", tech, err)
	}
	return p, nil
}

func (db *DB) loadManagers(s *game.Session) error {
	targets := map[string]any{
		"energy":     s.Grid,
		"economy":    s.Economy,
		"population": s.Population,
		"gameevent":  s.Events,
	}
	var rows []struct {
		Name string `db:"name"`
		Blob string `db:"state_json"`
	}
	if err := db.conn.Select(&rows, "SELECT name, state_json FROM managers"); err != nil {
		return fmt.Errorf("load managers: %w", err)
	}
	for _, r := range rows {
		target, known := targets[r.Name]
		if !known {
			continue
		}
		if err := json.Unmarshal([]byte(r.Blob), target); err != nil {
			return fmt.Errorf("unmarshal manager %s: %w", r.Name, err)
		}
	}
	return nil
}

func (db *DB) meta(key string) (string, error) {
	var value string
	if err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key); err != nil {
		return "", fmt.Errorf("load meta %s: %w", key, err)
	}
	return value, nil
}

func (db *DB) metaInt(key string) (int64, error) {
	value, err := db.meta(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse meta %s: %w", key, err)
	}
	return n, nil
}
