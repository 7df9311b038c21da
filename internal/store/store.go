// Package store persists character, location, and character-location
// context records in SQLite. It is the relational boundary of the beat
// compiler; the schema mirrors the narrative database's character and
// location tables.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Store wraps a SQLite database holding the compiler's source facts.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates (or opens) the store at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS characters (
			name              TEXT PRIMARY KEY,
			identity_trigger  TEXT NOT NULL,
			clothing_segment  TEXT,
			face_segment      TEXT
		);

		CREATE TABLE IF NOT EXISTS locations (
			name        TEXT PRIMARY KEY,
			shorthand   TEXT,
			visual      TEXT NOT NULL,
			anchors     TEXT,
			lighting    TEXT,
			atmosphere  TEXT,
			fx          TEXT,
			props       TEXT,
			color_grade TEXT
		);

		CREATE TABLE IF NOT EXISTS location_contexts (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			character            TEXT NOT NULL,
			location             TEXT NOT NULL,
			base_description     TEXT NOT NULL,
			helmet_off_fragment  TEXT,
			visor_up_fragment    TEXT,
			visor_down_fragment  TEXT,
			face_segment_policy  TEXT NOT NULL DEFAULT 'IF_FACE_VISIBLE',
			context_phase        TEXT NOT NULL DEFAULT 'default',
			FOREIGN KEY (character) REFERENCES characters(name)
		);

		CREATE INDEX IF NOT EXISTS idx_contexts_character ON location_contexts(character);
		CREATE INDEX IF NOT EXISTS idx_contexts_location ON location_contexts(character, location);
	`)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Character returns the identity record for a character name.
func (s *Store) Character(name string) (vbs.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT name, identity_trigger, COALESCE(clothing_segment, ''), COALESCE(face_segment, '')
		FROM characters WHERE name = ?
	`, name)

	var c vbs.Character
	if err := row.Scan(&c.Name, &c.IdentityTrigger, &c.ClothingSegment, &c.FaceSegment); err != nil {
		if err == sql.ErrNoRows {
			return vbs.Character{}, fmt.Errorf("character %q not found", name)
		}
		return vbs.Character{}, err
	}
	return c, nil
}

// Location returns the visual record for a location name.
func (s *Store) Location(name string) (vbs.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT name, COALESCE(shorthand, ''), visual, COALESCE(anchors, '[]'),
		       COALESCE(lighting, ''), COALESCE(atmosphere, ''), COALESCE(fx, ''),
		       COALESCE(props, '[]'), COALESCE(color_grade, '')
		FROM locations WHERE name = ?
	`, name)

	var loc vbs.Location
	var anchors, props string
	if err := row.Scan(&loc.Name, &loc.Shorthand, &loc.Visual, &anchors,
		&loc.Lighting, &loc.Atmosphere, &loc.FX, &props, &loc.ColorGrade); err != nil {
		if err == sql.ErrNoRows {
			return vbs.Location{}, fmt.Errorf("location %q not found", name)
		}
		return vbs.Location{}, err
	}
	if err := json.Unmarshal([]byte(anchors), &loc.Anchors); err != nil {
		return vbs.Location{}, fmt.Errorf("location %q has malformed anchors: %w", name, err)
	}
	if err := json.Unmarshal([]byte(props), &loc.Props); err != nil {
		return vbs.Location{}, fmt.Errorf("location %q has malformed props: %w", name, err)
	}
	return loc, nil
}

// ContextsFor returns every location-context record for a character, in
// source (insertion) order. An empty result is a data-quality signal for
// the resolver, not an error.
func (s *Store) ContextsFor(character string) ([]vbs.LocationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT character, location, base_description,
		       COALESCE(helmet_off_fragment, ''), COALESCE(visor_up_fragment, ''),
		       COALESCE(visor_down_fragment, ''), face_segment_policy, context_phase
		FROM location_contexts
		WHERE character = ?
		ORDER BY id
	`, character)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vbs.LocationContext
	for rows.Next() {
		var c vbs.LocationContext
		var policy, phase string
		if err := rows.Scan(&c.Character, &c.Location, &c.BaseDescription,
			&c.HelmetOffFragment, &c.VisorUpFragment, &c.VisorDownFragment,
			&policy, &phase); err != nil {
			return nil, err
		}
		c.FaceSegmentPolicy = vbs.ParseFaceSegmentPolicy(policy)
		c.Phase = vbs.NamedPhase(phase)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCharacter inserts or replaces a character record.
func (s *Store) UpsertCharacter(c vbs.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO characters (name, identity_trigger, clothing_segment, face_segment)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			identity_trigger = excluded.identity_trigger,
			clothing_segment = excluded.clothing_segment,
			face_segment = excluded.face_segment
	`, c.Name, c.IdentityTrigger, c.ClothingSegment, c.FaceSegment)
	return err
}

// UpsertLocation inserts or replaces a location record.
func (s *Store) UpsertLocation(loc vbs.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, err := json.Marshal(loc.Anchors)
	if err != nil {
		return err
	}
	props, err := json.Marshal(loc.Props)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO locations (name, shorthand, visual, anchors, lighting, atmosphere, fx, props, color_grade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			shorthand = excluded.shorthand,
			visual = excluded.visual,
			anchors = excluded.anchors,
			lighting = excluded.lighting,
			atmosphere = excluded.atmosphere,
			fx = excluded.fx,
			props = excluded.props,
			color_grade = excluded.color_grade
	`, loc.Name, loc.Shorthand, loc.Visual, string(anchors),
		loc.Lighting, loc.Atmosphere, loc.FX, string(props), loc.ColorGrade)
	return err
}

// InsertContext appends a location-context record. Insertion order defines
// the resolver's source order.
func (s *Store) InsertContext(c vbs.LocationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO location_contexts
			(character, location, base_description, helmet_off_fragment,
			 visor_up_fragment, visor_down_fragment, face_segment_policy, context_phase)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Character, c.Location, c.BaseDescription, c.HelmetOffFragment,
		c.VisorUpFragment, c.VisorDownFragment, c.FaceSegmentPolicy.String(), c.Phase.String())
	return err
}
