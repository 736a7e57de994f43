package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// FileStats holds basic metadata about a file or directory.
type FileStats struct {
	Size    int64
	IsDir   bool
	ModTime time.Time
	Mode    os.FileMode
}

// DirEntryInfo describes a single directory entry.
type DirEntryInfo struct {
	Name     string
	IsDir    bool
	IsHidden bool
	Mode     os.FileMode
	ModTime  time.Time
	Size     int64
}

// FileSystemAdapter abstracts file system access so the service layer can be
// exercised against an in-memory implementation in tests.
type FileSystemAdapter interface {
	ReadFileBytes(filePath string) ([]byte, error)
	WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error
	FileExists(filePath string) (bool, error)
	GetFileStats(filePath string) (*FileStats, error)
	MkdirAll(path string, perm os.FileMode) error
	IsWritable(path string) (bool, error)
	IsValidUTF8(content []byte) bool
	NormalizeNewlines(content []byte) []byte
	SplitLines(content []byte) []string
	JoinLinesWithNewlines(lines []string) []byte
	EvalSymlinks(path string) (string, error)
	ListDir(path string) ([]DirEntryInfo, error)
}

// CheckDirectoryIsWritable verifies that path exists, is a directory and
// accepts file creation. It probes by creating and removing a temp file.
func CheckDirectoryIsWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, "path does not exist: %s", path)
		}
		return errors.Wrapf(err, "could not stat path %s", path)
	}
	if !info.IsDir() {
		return errors.Errorf("path is not a directory: %s", path)
	}

	probe, err := os.CreateTemp(path, ".writecheck-*")
	if err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(err, "permission denied to write in directory %s", path)
		}
		return errors.Wrapf(err, "cannot create files in %s", path)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// DefaultFileSystemAdapter implements FileSystemAdapter on top of the os
// package.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

var _ FileSystemAdapter = (*DefaultFileSystemAdapter)(nil)

// ReadFileBytes reads the entire file into memory.
func (fs *DefaultFileSystemAdapter) ReadFileBytes(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "file not found: %s", filePath)
		}
		if os.IsPermission(err) {
			return nil, errors.Wrapf(err, "permission denied reading file: %s", filePath)
		}
		return nil, errors.Wrapf(err, "failed to read file: %s", filePath)
	}
	return content, nil
}

// WriteFileBytesAtomic writes content to a temporary file in the target
// directory, renames it over filePath and applies perm. Readers never observe
// a partially written file.
func (fs *DefaultFileSystemAdapter) WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp.*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	tmpName := tmp.Name()
	// Harmless after a successful rename, cleans up on every error path.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write temporary file %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary file %s", tmpName)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return errors.Wrapf(err, "failed to replace %s", filePath)
	}
	// Rename keeps the temp file's 0600 mode, so set the requested one.
	if err := os.Chmod(filePath, perm); err != nil {
		return errors.Wrapf(err, "wrote %s but could not set permissions to %o", filePath, perm)
	}
	return nil
}

// FileExists reports whether filePath exists.
func (fs *DefaultFileSystemAdapter) FileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "error checking if file exists: %s", filePath)
}

// GetFileStats returns size, type, mode and mtime for filePath.
func (fs *DefaultFileSystemAdapter) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "file not found: %s", filePath)
		}
		if os.IsPermission(err) {
			return nil, errors.Wrapf(err, "permission denied getting stats for: %s", filePath)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", filePath)
	}
	return &FileStats{
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Mode:    info.Mode().Perm(),
	}, nil
}

// MkdirAll creates the directory path along with any missing parents.
func (fs *DefaultFileSystemAdapter) MkdirAll(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}
	return nil
}

// IsWritable reports whether the directory at path accepts file creation.
func (fs *DefaultFileSystemAdapter) IsWritable(path string) (bool, error) {
	if err := CheckDirectoryIsWritable(path); err != nil {
		return false, err
	}
	return true, nil
}

// IsValidUTF8 reports whether content is valid UTF-8.
func (fs *DefaultFileSystemAdapter) IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// NormalizeNewlines converts \r\n and bare \r line endings to \n.
func (fs *DefaultFileSystemAdapter) NormalizeNewlines(content []byte) []byte {
	if len(content) == 0 {
		return []byte{}
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\r"), []byte("\n"))
}

// SplitLines normalizes newlines and splits content into lines. A trailing
// newline does not produce a final empty line: "a\n" yields ["a"], while a
// file holding just "\n" yields a single empty line.
func (fs *DefaultFileSystemAdapter) SplitLines(content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}
	text := string(fs.NormalizeNewlines(content))
	lines := strings.Split(text, "\n")
	if strings.HasSuffix(text, "\n") && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLinesWithNewlines joins lines with \n and no trailing newline. The
// caller decides whether to re-append one.
func (fs *DefaultFileSystemAdapter) JoinLinesWithNewlines(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(lines, "\n"))
}

// EvalSymlinks resolves all symbolic links in path.
func (fs *DefaultFileSystemAdapter) EvalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to evaluate symlinks for %s", path)
	}
	return resolved, nil
}

// ListDir returns the entries of a directory. The "." and ".." entries are
// never included.
func (fs *DefaultFileSystemAdapter) ListDir(path string) ([]DirEntryInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "directory not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, errors.Wrapf(err, "permission denied reading directory: %s", path)
		}
		return nil, errors.Wrapf(err, "failed to read directory %s", path)
	}

	var out []DirEntryInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// A partial listing is misleading, so fail instead of skipping.
			return nil, errors.Wrapf(err, "failed to get info for entry %s in %s", entry.Name(), path)
		}
		out = append(out, DirEntryInfo{
			Name:     info.Name(),
			IsDir:    info.IsDir(),
			IsHidden: strings.HasPrefix(info.Name(), "."),
			Mode:     info.Mode().Perm(),
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
	}
	return out, nil
}
