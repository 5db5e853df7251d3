// Package storage keeps finished runs on disk, one directory per run holding
// metadata.json, states.csv and the scenario that produced them.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/scenario"
)

// ErrNoBody is returned when a body or column is not part of a run.
var ErrNoBody = errors.New("storage: no such body")

// columns written per body, in order
var columns = []string{"x", "y", "z", "vx", "vy", "vz", "wx", "wy", "wz", "sleeping"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string { return filepath.Join(s.baseDir, runID) }

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Iterations int                `json:"iterations"`
	Finished   bool               `json:"finished"`
	Elapsed    time.Duration      `json:"elapsed_ns"`
	Bodies     []string           `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Events     []scenario.Event   `json:"events,omitempty"`
}

func (s *Store) Save(cfg *config.Config, result *scenario.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   cfg.Name,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Steps:      result.Steps,
		Iterations: cfg.Iterations,
		Finished:   result.Finished,
		Elapsed:    result.Elapsed,
		Metrics:    result.Metrics,
		Events:     result.Events,
	}
	if len(result.Frames) > 0 {
		for _, b := range result.Frames[0].Bodies {
			meta.Bodies = append(meta.Bodies, b.Name)
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, "scenario.yaml"), cfg); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta.Bodies, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, bodies []string, frames []scenario.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"step", "time"}
	for _, b := range bodies {
		for _, c := range columns {
			header = append(header, b+"."+c)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{strconv.Itoa(fr.Step), strconv.FormatFloat(fr.Time, 'f', 6, 64)}
		for _, b := range fr.Bodies {
			for _, v := range [][3]float64{b.Position, b.LinearVelocity, b.AngularVelocity} {
				for _, x := range v {
					row = append(row, strconv.FormatFloat(x, 'f', 6, 64))
				}
			}
			row = append(row, strconv.FormatBool(b.Sleeping))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first.
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
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadScenario returns the scenario a run was made from.
func (s *Store) LoadScenario(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), "scenario.yaml"))
}

// Track is the recorded motion of one body.
type Track struct {
	Body              string
	Positions         []mgl64.Vec3
	Velocities        []mgl64.Vec3
	AngularVelocities []mgl64.Vec3
	Sleeping          []bool
}

type Trajectory struct {
	Steps  []int
	Times  []float64
	Tracks []Track
}

// Track returns the named body's track.
func (t *Trajectory) Track(body string) (*Track, error) {
	for i := range t.Tracks {
		if t.Tracks[i].Body == body {
			return &t.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoBody, body)
}

// Series extracts one column of one body: a position or velocity component
// named as in states.csv, or "speed".
func (t *Trajectory) Series(body, column string) ([]float64, error) {
	tr, err := t.Track(body)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(tr.Positions))
	for i := range out {
		switch column {
		case "speed":
			out[i] = tr.Velocities[i].Len()
		case "sleeping":
			if tr.Sleeping[i] {
				out[i] = 1
			}
		default:
			k := slices.Index(columns, column)
			if k < 0 {
				return nil, fmt.Errorf("%w: column %q", ErrNoBody, column)
			}
			vecs := [][]mgl64.Vec3{tr.Positions, tr.Velocities, tr.AngularVelocities}[k/3]
			out[i] = vecs[i][k%3]
		}
	}
	return out, nil
}

func (s *Store) LoadStates(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	traj := &Trajectory{}
	if len(records) == 0 {
		return traj, nil
	}

	header := records[0]
	for i := 2; i+len(columns) <= len(header); i += len(columns) {
		traj.Tracks = append(traj.Tracks, Track{Body: strings.TrimSuffix(header[i], "."+columns[0])})
	}

	for _, record := range records[1:] {
		if len(record) != 2+len(traj.Tracks)*len(columns) {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("states.csv: %w", err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("states.csv: %w", err)
		}
		traj.Steps = append(traj.Steps, step)
		traj.Times = append(traj.Times, t)

		for b := range traj.Tracks {
			fields := record[2+b*len(columns):]
			var vals [9]float64
			for k := range vals {
				if vals[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
					return nil, fmt.Errorf("states.csv: %w", err)
				}
			}
			sleeping, err := strconv.ParseBool(fields[9])
			if err != nil {
				return nil, fmt.Errorf("states.csv: %w", err)
			}
			tr := &traj.Tracks[b]
			tr.Positions = append(tr.Positions, mgl64.Vec3{vals[0], vals[1], vals[2]})
			tr.Velocities = append(tr.Velocities, mgl64.Vec3{vals[3], vals[4], vals[5]})
			tr.AngularVelocities = append(tr.AngularVelocities, mgl64.Vec3{vals[6], vals[7], vals[8]})
			tr.Sleeping = append(tr.Sleeping, sleeping)
		}
	}
	return traj, nil
}
