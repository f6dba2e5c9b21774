package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const latestFile = "latest"

// RunDir returns the artifacts directory of a workflow under root.
func RunDir(root, workflowID string) string {
	return filepath.Join(root, workflowID)
}

// EnsureDir creates a run directory.
func EnsureDir(runDir string) error {
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("creating artifacts dir %s: %w", runDir, err)
	}
	return nil
}

// RecordPath returns the path of a stage record file.
func RecordPath(runDir, stage string) string {
	return filepath.Join(runDir, stage+".json")
}

// WriteRecord writes v as the record of stage.
func WriteRecord(runDir, stage string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", stage, err)
	}
	return writeArtifact(RecordPath(runDir, stage), data)
}

// ReadRecord decodes the record of stage into v.
func ReadRecord(runDir, stage string, v any) error {
	data, err := os.ReadFile(RecordPath(runDir, stage))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Records lists the stage names that have a record in runDir, in
// directory order.
func Records(runDir string) ([]string, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		switch name {
		case "status.json", "timing.json":
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	return out, nil
}

// SetLatest records workflowID as the most recent run under root.
func SetLatest(root, workflowID string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating artifacts root %s: %w", root, err)
	}
	return writeArtifact(filepath.Join(root, latestFile), []byte(workflowID+"\n"))
}

// Latest returns the workflow id of the most recent run under root.
func Latest(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, latestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("no runs recorded in %s", root)
		}
		return "", err
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("no runs recorded in %s", root)
	}
	return id, nil
}
