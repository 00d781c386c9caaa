package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Action is what WriteFile did.
type Action string

const (
	ActionCreated  Action = "created"
	ActionReplaced Action = "replaced"
	ActionSkipped  Action = "skipped"
)

// FilePolicy controls how existing files are treated.
type FilePolicy struct {
	// Overwrite replaces existing files. When false they are skipped.
	Overwrite bool
	// Backup copies an existing file to <path>.bak before replacing it.
	Backup bool
	// Perm is the mode of newly written files. Zero means 0o644.
	Perm fs.FileMode
}

// BackupSuffix is appended to the backup copy of a replaced file.
const BackupSuffix = ".bak"

// WriteFile writes data to path atomically: a temporary file in the same
// directory is written, synced and renamed over path. Parent directories
// are created as needed.
func WriteFile(path string, data []byte, policy FilePolicy) (Action, error) {
	action := ActionCreated
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}
		if !policy.Overwrite {
			return ActionSkipped, nil
		}
		action = ActionReplaced
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	perm := policy.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	if action == ActionReplaced && policy.Backup {
		if err := backup(path, perm); err != nil {
			return "", err
		}
	}

	if err := atomicWrite(path, data, perm); err != nil {
		return "", err
	}
	return action, nil
}

func backup(path string, perm fs.FileMode) error {
	old, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s for backup: %w", path, err)
	}
	if err := atomicWrite(path+BackupSuffix, old, perm); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

func atomicWrite(path string, data []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
