package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"go.uber.org/multierr"

	"github.com/pthm-cable/morph/config"
)

// csvFile appends records to one CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		c.headerWritten = true
		return gocsv.Marshal(records, c.f)
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager writes frame, perf and result records as CSV.
type OutputManager struct {
	dir     string
	frames  *csvFile
	perf    *csvFile
	results *csvFile
}

// NewOutputManager creates dir and opens its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.frames, err = createCSV(dir, "frames.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createCSV(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.results, err = createCSV(dir, "results.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the configuration in effect as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFrame appends a frame record to frames.csv.
func (om *OutputManager) WriteFrame(rec FrameRecord) error {
	if om == nil {
		return nil
	}
	if err := om.frames.write([]FrameRecord{rec}); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// WritePerf appends a perf window record to perf.csv.
func (om *OutputManager) WritePerf(rec PerfStatsCSV) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{rec}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteResult appends a level result to results.csv.
func (om *OutputManager) WriteResult(res LevelResult) error {
	if om == nil {
		return nil
	}
	if err := om.results.write([]LevelResult{res}); err != nil {
		return fmt.Errorf("writing result: %w", err)
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

// Close closes every open file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var err error
	for _, c := range []*csvFile{om.frames, om.perf, om.results} {
		if c != nil {
			err = multierr.Append(err, c.f.Close())
		}
	}
	return err
}
