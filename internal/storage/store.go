// Package storage persists finished runs. Every run lives in its own
// directory holding metadata.json, config.yaml and series.csv; these files
// are the source of truth. A SQLite index over the metadata is rebuilt from
// them whenever a store is opened.
package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/sim"
)

const (
	indexFile    = "index.db"
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	seriesFile   = "series.csv"
)

var ErrRunNotFound = errors.New("run not found")

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Solver     string             `json:"solver"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Density    bool               `json:"density"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Query filters runs in Find. Empty fields match everything.
type Query struct {
	Model  string
	Solver string
}

type Store struct {
	mu      sync.Mutex
	baseDir string
	db      *sql.DB
}

// Open creates baseDir if needed and indexes the runs found in it.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseDir, indexFile)
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale index: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createRuns); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{baseDir: baseDir, db: db}
	if err := s.Reindex(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index runs: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes cfg and result as a new run and returns its ID. Run IDs sort
// by creation time.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	runID := id.String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.save(runDir, runID, cfg, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func (s *Store) save(runDir, runID string, cfg *config.Config, result *sim.Result) error {

	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		Solver:     cfg.Solver,
		Timestamp:  time.Now().UTC(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
		StepsTaken: result.StepsTaken,
		Density:    cfg.Density,
		Metrics:    result.Metrics,
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result.Samples); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(meta)
}

// Reindex rebuilds the index from the metadata files. Directories without
// readable metadata are skipped.
func (s *Store) Reindex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}
		if err := s.insert(*meta); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insert(meta RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO runs
		(run_id, model, solver, created_at, seed, dt, steps, steps_taken, density, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Solver, meta.Timestamp.Format(time.RFC3339Nano),
		meta.Seed, meta.Dt, meta.Steps, meta.StepsTaken, meta.Density, string(metrics))
	return err
}

// List returns all runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	return s.Find(Query{})
}

func (s *Store) Find(q Query) ([]RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT run_id, model, solver, created_at, seed, dt, steps, steps_taken, density, metrics
		FROM runs
		WHERE (? = '' OR model = ?) AND (? = '' OR solver = ?)
		ORDER BY run_id DESC`,
		q.Model, q.Model, q.Solver, q.Solver)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta      RunMetadata
			createdAt string
			metrics   string
		)
		if err := rows.Scan(&meta.ID, &meta.Model, &meta.Solver, &createdAt, &meta.Seed, &meta.Dt,
			&meta.Steps, &meta.StepsTaken, &meta.Density, &metrics); err != nil {
			return nil, err
		}
		if meta.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metrics), &meta.Metrics); err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	meta, err := readMetadata(filepath.Join(s.baseDir, runID, metadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return meta, err
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(s.baseDir, runID, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return cfg, err
}

// LoadSeries reads back the samples of a run.
func (s *Store) LoadSeries(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	numDofs := (len(records[0]) - 2) / 2
	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			if values[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+2, err)
			}
		}
		smp := sim.Sample{
			Time:  values[0],
			Trace: values[1],
			Mean:  make([]float64, numDofs),
			Width: make([]float64, numDofs),
		}
		for d := 0; d < numDofs; d++ {
			smp.Mean[d] = values[2+2*d]
			smp.Width[d] = values[3+2*d]
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func readMetadata(path string) (*RunMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, samples []sim.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)

	numDofs := 0
	if len(samples) > 0 {
		numDofs = len(samples[0].Mean)
	}
	header := []string{"time", "trace"}
	for d := 0; d < numDofs; d++ {
		header = append(header, fmt.Sprintf("x%d", d), fmt.Sprintf("dx%d", d))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{formatFloat(smp.Time), formatFloat(smp.Trace)}
		for d := 0; d < numDofs; d++ {
			row = append(row, formatFloat(smp.Mean[d]), formatFloat(smp.Width[d]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
