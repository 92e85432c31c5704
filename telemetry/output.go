package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flock/config"
)

// RunSummary is the end-of-run record written to summary.csv.
type RunSummary struct {
	Seed      int64   `csv:"seed"`
	Boundary  string  `csv:"boundary"`
	Ticks     int     `csv:"ticks"`
	SimTime   float64 `csv:"sim_time"`
	PreyTotal int     `csv:"prey_total"`
	PreyAlive int     `csv:"prey_alive"`
	PredAlive int     `csv:"pred_alive"`
	PropDead  float64 `csv:"prop_dead"`
	HuntSummary
}

// TimelineRecord is one row of timeline.csv.
type TimelineRecord struct {
	Tick      int     `csv:"tick"`
	Time      float64 `csv:"time"`
	PreyAlive int     `csv:"prey_alive"`
}

// csvFile is an output file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func writeRecords[T any](out *csvFile, records []T, name string) error {
	if len(records) == 0 {
		return nil
	}
	if !out.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, out.f); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		out.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, out.f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry csvFile
	perf      csvFile
	deaths    csvFile
	positions csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). positions.csv is only created
// when withPositions is set.
func NewOutputManager(dir string, withPositions bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	files := map[string]*csvFile{
		"telemetry.csv": &om.telemetry,
		"perf.csv":      &om.perf,
		"deaths.csv":    &om.deaths,
	}
	if withPositions {
		files["positions.csv"] = &om.positions
	}

	for name, dst := range files {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		dst.f = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return writeRecords(&om.telemetry, []WindowStats{stats}, "telemetry")
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	return writeRecords(&om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}, "perf")
}

// WriteKills appends kill events to deaths.csv.
func (om *OutputManager) WriteKills(events []KillEvent) error {
	if om == nil {
		return nil
	}
	return writeRecords(&om.deaths, events, "deaths")
}

// WritePositions appends agent states to positions.csv. It is a no-op when
// positions output was not enabled.
func (om *OutputManager) WritePositions(records []PositionRecord) error {
	if om == nil || om.positions.f == nil {
		return nil
	}
	return writeRecords(&om.positions, records, "positions")
}

// WantsPositions reports whether positions.csv is being written.
func (om *OutputManager) WantsPositions() bool {
	return om != nil && om.positions.f != nil
}

// WriteSummary writes summary.csv and timeline.csv at the end of a run.
func (om *OutputManager) WriteSummary(s RunSummary, timeline []TimelineRecord) error {
	if om == nil {
		return nil
	}
	if err := writeFile(filepath.Join(om.dir, "summary.csv"), []RunSummary{s}); err != nil {
		return err
	}
	return writeFile(filepath.Join(om.dir, "timeline.csv"), timeline)
}

func writeFile[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, out := range []*csvFile{&om.telemetry, &om.perf, &om.deaths, &om.positions} {
		if out.f == nil {
			continue
		}
		if err := out.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		out.f = nil
	}

	return firstErr
}
