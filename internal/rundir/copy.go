package rundir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyResources copies the relative paths in resources (relative to
// parentRunPath) into "<depRunPath>/copied_resources/", preserving
// basenames. Non-existent or non-file entries are silently filtered.
func CopyResources(parentRunPath, depRunPath string, resources []string) ([]string, error) {
	if len(resources) == 0 {
		return nil, nil
	}
	destDir := filepath.Join(depRunPath, "copied_resources")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create copied_resources: %w", err)
	}

	var copied []string
	for _, rel := range resources {
		src := filepath.Join(parentRunPath, rel)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		dst := filepath.Join(destDir, filepath.Base(rel))
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("copy resource %q: %w", rel, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
