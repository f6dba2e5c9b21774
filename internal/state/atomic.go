package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// artifactPerm is the mode of every file written under the artifacts root.
const artifactPerm = 0644

// writeArtifact replaces path, a file in a run directory or the artifacts
// root, with data. Readers such as 'blogflow status' see either the old or
// the new content. Each write stages through its own temp file in the same
// directory, so status, timing and record writes of one run never share a
// staging file.
func writeArtifact(path string, data []byte) error {
	name := filepath.Base(path)
	f, err := os.CreateTemp(filepath.Dir(path), "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Chmod(artifactPerm); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
