package trace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// summaryFileMode is the mode of a newly created summary file. It matches
// what os.Create would produce under a 022 umask.
const summaryFileMode = 0o644

// WriteToFile encodes s and writes it to path, creating or replacing the file.
//
// The call consumes s whether or not it succeeds: a second call returns an
// error with code CONSUMED. Clone the summary first to write it again.
//
// The whole payload is encoded in memory before the filesystem is touched,
// then written in one bulk write to a temporary file in the destination
// directory, synced, and renamed over path. A failure leaves any previous
// file at path unchanged and no temporary file behind. A missing parent
// directory is an IO error and creates nothing.
//
// If path is a symlink the file it points to is replaced and the link is
// kept. An existing file keeps its permission bits; a new one gets 0644.
// Because the file is replaced rather than rewritten in place, other hard
// links to the old file keep the old contents.
func (s *ProgramSummary) WriteToFile(path string) error {
	_, err := s.writeToFile(path)
	return err
}

// WriteToFileDigest is WriteToFile that also returns the Digest of the
// bytes it wrote, so callers that need both encode the summary once.
func (s *ProgramSummary) WriteToFileDigest(path string) (string, error) {
	data, err := s.writeToFile(path)
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}

func (s *ProgramSummary) writeToFile(path string) ([]byte, error) {
	if s.consumed {
		return nil, &Error{Code: ErrCodeConsumed, Op: "write", Path: path, Err: ErrConsumed}
	}
	s.consumed = true

	data, err := s.MarshalBinary()
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
		}
		return nil, err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return nil, &Error{Code: ErrCodeIO, Op: "write", Path: path, Err: err}
	}
	return data, nil
}

// ReadFromFile loads a summary written by WriteToFile.
// The returned summary is not consumed.
func ReadFromFile(path string) (*ProgramSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeIO, Op: "read", Path: path, Err: err}
	}

	s, err := Decode(data)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
		}
		return nil, err
	}
	return s, nil
}

// writeFileAtomic writes data to a sibling temporary file and renames it
// onto path. The temporary file is closed and removed on every failure path.
func writeFileAtomic(path string, data []byte) (err error) {
	path, mode, err := resolveDestination(path)
	if err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			tmp.Close()
		}
		os.Remove(tmpPath)
	}()

	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// resolveDestination follows symlinks at path and returns the file to
// replace with the mode the replacement should have.
func resolveDestination(path string) (string, os.FileMode, error) {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, summaryFileMode, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("stat destination: %w", err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return path, fi.Mode().Perm(), nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Dangling link: create the file it names.
		return danglingTarget(path)
	}
	if err != nil {
		return "", 0, fmt.Errorf("resolve symlink: %w", err)
	}
	fi, err = os.Stat(resolved)
	if err != nil {
		return "", 0, fmt.Errorf("stat destination: %w", err)
	}
	return resolved, fi.Mode().Perm(), nil
}

func danglingTarget(path string) (string, os.FileMode, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", 0, fmt.Errorf("read symlink: %w", err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, summaryFileMode, nil
}
