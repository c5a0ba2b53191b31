package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultStatusFile is where the last run is recorded when no path is configured.
const DefaultStatusFile = "~/.local/share/fixture-sync/status.json"

// ErrNoRun is returned by Load when no run has been recorded yet.
var ErrNoRun = errors.New("no sync run recorded")

// Storage persists the status of the most recent run as a JSON file.
type Storage struct {
	path string
}

// New creates a Storage writing to path, expanding a leading ~ and creating the parent
// directory.
func New(path string) (*Storage, error) {
	if path == "" {
		path = DefaultStatusFile
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "getting home directory")
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating status directory")
	}

	return &Storage{path: path}, nil
}

// Path returns the resolved status file location.
func (s *Storage) Path() string {
	return s.path
}

// Load reads the last recorded run.
func (s *Storage) Load() (*Run, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRun
		}
		return nil, errors.Wrap(err, "reading status file")
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrap(err, "parsing status file")
	}
	if run.Errors == nil {
		run.Errors = []RunError{}
	}
	return &run, nil
}

// Save overwrites the status file with run. The file is replaced atomically so a reader
// never sees a partial record.
func (s *Storage) Save(run *Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run status")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".status-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temporary status file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing status file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing status file")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "setting status file permissions")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replacing status file")
	}
	return nil
}
