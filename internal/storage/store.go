package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/logging"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) *Store {
	return &Store{baseDir: baseDir, logger: logging.OrDiscard(logger)}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string               `json:"id"`
	Kind      string               `json:"kind"`
	Generator string               `json:"generator"`
	Timestamp time.Time            `json:"timestamp"`
	Sets      []dynamo.ParamSet    `json:"sets"`
	Metrics   []map[string]Value   `json:"metrics,omitempty"`
}

// MetricValues converts per-set metric maps for RunMetadata.
func MetricValues(ms []map[string]float64) []map[string]Value {
	if ms == nil {
		return nil
	}
	out := make([]map[string]Value, len(ms))
	for i, m := range ms {
		out[i] = make(map[string]Value, len(m))
		for name, v := range m {
			out[i][name] = Value(v)
		}
	}
	return out
}

// Save writes the metadata and the trajectory table of a collection and
// returns the new run ID. ID and Timestamp of meta are assigned here.
func (s *Store) Save(meta RunMetadata, coll *dynamo.Collection) (string, error) {
	if meta.Kind == "" {
		meta.Kind = "run"
	}
	meta.Timestamp = time.Now().UTC()
	meta.ID = fmt.Sprintf("%s_%d_%s", meta.Kind, meta.Timestamp.Unix(), uuid.NewString()[:8])
	meta.Sets = coll.Params()

	if err := s.Init(); err != nil {
		return "", err
	}

	// staged in a hidden directory and renamed into place once complete
	tmpDir, err := os.MkdirTemp(s.baseDir, ".save-")
	if err != nil {
		return "", err
	}
	if err := writeRun(tmpDir, meta, coll); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	if err := os.Rename(tmpDir, filepath.Join(s.baseDir, meta.ID)); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}

	s.logger.Debug("run saved", "id", meta.ID, "sets", len(meta.Sets))
	return meta.ID, nil
}

func writeRun(dir string, meta RunMetadata, coll *dynamo.Collection) error {
	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	if err := WriteJSON(metaFile, meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(dir, trajectoriesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := WriteCollectionCSV(csvFile, coll); err != nil {
		return fmt.Errorf("write trajectories: %w", err)
	}
	return csvFile.Sync()
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadCollection reads the trajectory table of a run.
func (s *Store) LoadCollection(runID string) (*dynamo.Collection, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	coll, err := ReadCollectionCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", runID, err)
	}
	return coll, nil
}
