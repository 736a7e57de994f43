package service

import (
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"

	"diff-editor-server/internal/config"
	"diff-editor-server/internal/diff"
	"diff-editor-server/internal/errors"
	"diff-editor-server/internal/filesystem"
	"diff-editor-server/internal/lock"
	"diff-editor-server/internal/models"
)

const (
	maxLineCount     = 100000
	maxEditsAllowed  = 1000
	maxPathLength    = 4096
	maxSegmentLength = 255

	filePerm = 0644
	dirPerm  = 0755
)

// FileOperationService defines the file operations exposed as tools.
type FileOperationService interface {
	ApplyDiff(req models.ApplyDiffRequest) (*models.ApplyDiffResponse, *models.ErrorDetail)
	ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail)
	WriteFile(req models.WriteFileRequest) (*models.WriteFileResponse, *models.ErrorDetail)
	InsertLines(req models.InsertLinesRequest) (*models.InsertLinesResponse, *models.ErrorDetail)
	SearchReplace(req models.SearchReplaceRequest) (*models.SearchReplaceResponse, *models.ErrorDetail)
	ListFiles(req models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail)
}

// DefaultFileOperationService implements FileOperationService against a
// single working directory.
type DefaultFileOperationService struct {
	fsAdapter    filesystem.FileSystemAdapter
	lockManager  lock.LockManagerInterface
	logger       *logrus.Logger
	workingDir   string
	resolvedRoot string
	maxFileSize  int64
	opTimeout    time.Duration
	segmentRegex *regexp.Regexp
}

var _ FileOperationService = (*DefaultFileOperationService)(nil)

// NewDefaultFileOperationService creates a new DefaultFileOperationService.
// A nil logger silences service logging.
func NewDefaultFileOperationService(
	fs filesystem.FileSystemAdapter,
	lm lock.LockManagerInterface,
	cfg *config.Config,
	logger *logrus.Logger,
) (*DefaultFileOperationService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if lm == nil {
		return nil, fmt.Errorf("lock manager is required")
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	absWorkingDir, err := filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path for working directory: %w", err)
	}
	info, err := os.Stat(absWorkingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("working directory does not exist: %s", absWorkingDir)
		}
		return nil, fmt.Errorf("error accessing working directory %s: %w", absWorkingDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory path is not a directory: %s", absWorkingDir)
	}
	resolvedRoot, err := fs.EvalSymlinks(absWorkingDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve working directory: %w", err)
	}

	return &DefaultFileOperationService{
		fsAdapter:    fs,
		lockManager:  lm,
		logger:       logger,
		workingDir:   absWorkingDir,
		resolvedRoot: resolvedRoot,
		maxFileSize:  int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		opTimeout:    time.Duration(cfg.OperationTimeoutSec) * time.Second,
		segmentRegex: regexp.MustCompile(`^[A-Za-z0-9._-]+$`),
	}, nil
}

// classifyFSError maps an adapter error onto the typed error taxonomy.
func (s *DefaultFileOperationService) classifyFSError(err error, filename, operation string) *models.ErrorDetail {
	switch {
	case stdErrors.Is(err, os.ErrNotExist):
		return errors.NewFileNotFoundError(filename, operation)
	case stdErrors.Is(err, os.ErrPermission):
		return errors.NewPermissionDeniedError(filename, operation)
	default:
		return errors.NewFileSystemError(filename, operation, err.Error())
	}
}

// resolveAndValidatePath turns a workspace-relative path into an absolute
// one, rejecting traversal, invalid characters and symlinks that leave the
// working directory. The containment check resolves the deepest existing
// ancestor so paths for files about to be created still validate.
func (s *DefaultFileOperationService) resolveAndValidatePath(relPath string) (string, *models.ErrorDetail) {
	if relPath == "" {
		return "", errors.NewInvalidParamsError("path is required", nil)
	}
	if len(relPath) > maxPathLength {
		return "", errors.NewInvalidParamsError(
			fmt.Sprintf("path length must not exceed %d characters", maxPathLength),
			map[string]interface{}{"length": len(relPath)})
	}
	if filepath.IsAbs(relPath) {
		return "", errors.NewInvalidParamsError("path must be relative to the working directory",
			map[string]interface{}{"path": relPath})
	}

	clean := path.Clean(filepath.ToSlash(relPath))
	if clean == "." || clean == "/" {
		return "", errors.NewInvalidParamsError("path must name a file inside the working directory",
			map[string]interface{}{"path": relPath})
	}
	for _, segment := range strings.Split(clean, "/") {
		if segment == ".." {
			return "", errors.NewInvalidParamsError("path must not traverse outside the working directory",
				map[string]interface{}{"path": relPath})
		}
		if len(segment) > maxSegmentLength {
			return "", errors.NewInvalidParamsError(
				fmt.Sprintf("path segment exceeds %d characters", maxSegmentLength),
				map[string]interface{}{"path": relPath})
		}
		if !s.segmentRegex.MatchString(segment) {
			return "", errors.NewInvalidParamsError("path contains invalid characters",
				map[string]interface{}{"path": relPath, "segment": segment})
		}
	}

	full := filepath.Join(s.workingDir, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.workingDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.NewInvalidParamsError("path must not traverse outside the working directory",
			map[string]interface{}{"path": relPath})
	}

	anchor := full
	for {
		exists, err := s.fsAdapter.FileExists(anchor)
		if err != nil {
			return "", s.classifyFSError(err, relPath, "path_resolution")
		}
		if exists {
			break
		}
		parent := filepath.Dir(anchor)
		if parent == anchor {
			break
		}
		anchor = parent
	}
	resolved, err := s.fsAdapter.EvalSymlinks(anchor)
	if err != nil {
		return "", s.classifyFSError(err, relPath, "path_resolution")
	}
	if resolved != s.resolvedRoot && !strings.HasPrefix(resolved, s.resolvedRoot+string(os.PathSeparator)) {
		return "", errors.NewInvalidParamsError("path escapes the working directory via a symlink",
			map[string]interface{}{"path": relPath})
	}

	return full, nil
}

// fileBuffer is a file loaded into its line representation.
type fileBuffer struct {
	lines           []string
	text            string
	trailingNewline bool
}

// loadFile reads, validates and splits a file that must already exist.
func (s *DefaultFileOperationService) loadFile(filePath, relPath, operation string) (*fileBuffer, *models.ErrorDetail) {
	exists, err := s.fsAdapter.FileExists(filePath)
	if err != nil {
		return nil, s.classifyFSError(err, relPath, operation)
	}
	if !exists {
		return nil, errors.NewFileNotFoundError(relPath, operation)
	}

	stats, err := s.fsAdapter.GetFileStats(filePath)
	if err != nil {
		return nil, s.classifyFSError(err, relPath, operation)
	}
	if stats.IsDir {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("path '%s' is a directory, not a file", relPath),
			map[string]interface{}{"path": relPath})
	}
	if stats.Size > s.maxFileSize {
		return nil, errors.NewFileTooLargeError(relPath, int(s.maxFileSize/(1024*1024)))
	}

	content, err := s.fsAdapter.ReadFileBytes(filePath)
	if err != nil {
		return nil, s.classifyFSError(err, relPath, operation)
	}
	if !s.fsAdapter.IsValidUTF8(content) {
		return nil, errors.NewInvalidEncodingError(relPath, operation)
	}

	normalized := s.fsAdapter.NormalizeNewlines(content)
	lines := s.fsAdapter.SplitLines(normalized)
	if len(lines) > maxLineCount {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("file exceeds the maximum of %d lines", maxLineCount),
			map[string]interface{}{"path": relPath, "lines": len(lines)})
	}

	return &fileBuffer{
		lines:           lines,
		text:            string(normalized),
		trailingNewline: len(normalized) > 0 && normalized[len(normalized)-1] == '\n',
	}, nil
}

// persistLines writes a line buffer back, restoring the original trailing
// newline, and returns the number of bytes written.
func (s *DefaultFileOperationService) persistLines(filePath, relPath, operation string, lines []string, trailingNewline bool) (int, *models.ErrorDetail) {
	if len(lines) > maxLineCount {
		return 0, errors.NewInvalidParamsError(
			fmt.Sprintf("result exceeds the maximum of %d lines", maxLineCount),
			map[string]interface{}{"path": relPath, "lines": len(lines)})
	}
	content := s.fsAdapter.JoinLinesWithNewlines(lines)
	if trailingNewline && len(content) > 0 {
		content = append(content, '\n')
	}
	if int64(len(content)) > s.maxFileSize {
		return 0, errors.NewFileTooLargeError(relPath, int(s.maxFileSize/(1024*1024)))
	}
	if err := s.fsAdapter.WriteFileBytesAtomic(filePath, content, filePerm); err != nil {
		return 0, s.classifyFSError(err, relPath, operation)
	}
	return len(content), nil
}

// withLock runs fn while holding the per-file lock.
func (s *DefaultFileOperationService) withLock(filePath, relPath, operation string, fn func() *models.ErrorDetail) *models.ErrorDetail {
	handle, err := s.lockManager.AcquireLock(filePath, s.opTimeout)
	if err != nil {
		return errors.NewOperationLockFailedError(relPath, operation, err.Error())
	}
	defer func() {
		if err := s.lockManager.ReleaseLock(handle); err != nil {
			s.logger.WithError(err).WithField("path", relPath).Warn("failed to release file lock")
		}
	}()
	return fn()
}

// ApplyDiff applies one or more search/replace block edits to a file.
func (s *DefaultFileOperationService) ApplyDiff(req models.ApplyDiffRequest) (*models.ApplyDiffResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Path)
	if errDetail != nil {
		return nil, errDetail
	}

	// The existence check precedes edit validation: a missing file must
	// surface as not-found even when the edit lists are malformed.
	exists, err := s.fsAdapter.FileExists(filePath)
	if err != nil {
		return nil, s.classifyFSError(err, req.Path, "apply_diff")
	}
	if !exists {
		return nil, errors.NewFileNotFoundError(req.Path, "apply_diff")
	}

	edits, normErr := diff.Normalize(req.SearchContent, req.ReplaceContent, req.StartLine)
	if normErr != nil {
		return nil, errors.NewInvalidParamsError(normErr.Error(), nil)
	}
	if len(edits) > maxEditsAllowed {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("number of edits exceeds the maximum of %d", maxEditsAllowed),
			map[string]interface{}{"edits": len(edits)})
	}

	var resp *models.ApplyDiffResponse
	errDetail = s.withLock(filePath, req.Path, "apply_diff", func() *models.ErrorDetail {
		buf, errDetail := s.loadFile(filePath, req.Path, "apply_diff")
		if errDetail != nil {
			return errDetail
		}

		outcome := diff.Apply(buf.lines, edits, diff.Options{
			Atomic: req.AtomicEnabled(),
			Trim:   req.Trim,
		})
		results := make([]models.EditResult, len(outcome.Results))
		for i, r := range outcome.Results {
			results[i] = models.EditResult{Status: r.Status, StartLine: r.StartLine, Message: r.Message}
		}

		if outcome.Aborted {
			return errors.NewEditApplicationError(abortMessage(outcome), map[string]interface{}{
				"path":    req.Path,
				"results": results,
			})
		}

		if outcome.Applied > 0 {
			if _, errDetail := s.persistLines(filePath, req.Path, "apply_diff", outcome.Lines, buf.trailingNewline); errDetail != nil {
				return errDetail
			}
		}

		failed := len(results) - outcome.Applied
		resp = &models.ApplyDiffResponse{
			Success:       failed == 0,
			Results:       results,
			EditsApplied:  outcome.Applied,
			EditsFailed:   failed,
			NewTotalLines: len(outcome.Lines),
		}
		return nil
	})
	if errDetail != nil {
		return nil, errDetail
	}

	s.logger.WithFields(logrus.Fields{
		"path":    req.Path,
		"applied": resp.EditsApplied,
		"failed":  resp.EditsFailed,
	}).Info("apply_diff completed")
	return resp, nil
}

// abortMessage summarizes an aborted atomic apply, one status per edit in
// submission order.
func abortMessage(outcome diff.Outcome) string {
	var b strings.Builder
	b.WriteString("atomic apply aborted, no changes were written")
	for _, r := range outcome.Results {
		fmt.Fprintf(&b, "\n- edit at line %d: %s", r.StartLine, r.Status)
	}
	return b.String()
}

// ReadFile returns a file's content, optionally restricted to a line range.
func (s *DefaultFileOperationService) ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Path)
	if errDetail != nil {
		return nil, errDetail
	}
	if (req.StartLine != 0 && req.StartLine < 1) || (req.EndLine != 0 && req.EndLine < 1) {
		return nil, errors.NewInvalidParamsError("line numbers must be 1 or greater when specified",
			map[string]interface{}{"start_line": req.StartLine, "end_line": req.EndLine})
	}
	if req.StartLine > 0 && req.EndLine > 0 && req.StartLine > req.EndLine {
		return nil, errors.NewInvalidParamsError("start_line cannot be greater than end_line",
			map[string]interface{}{"start_line": req.StartLine, "end_line": req.EndLine})
	}

	buf, errDetail := s.loadFile(filePath, req.Path, "read_file")
	if errDetail != nil {
		return nil, errDetail
	}
	total := len(buf.lines)

	start := req.StartLine
	if start == 0 {
		start = 1
	}
	end := req.EndLine
	if end == 0 || end > total {
		end = total
	}

	if total == 0 {
		if start > 1 {
			return nil, errors.NewInvalidParamsError(
				fmt.Sprintf("start_line %d is invalid for an empty file", start),
				map[string]interface{}{"start_line": start})
		}
		return &models.ReadFileResponse{
			Content:        "",
			TotalLines:     0,
			RangeRequested: &models.RangeRequested{StartLine: 1, EndLine: 0},
		}, nil
	}
	if start > total {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("start_line %d is greater than total lines %d", start, total),
			map[string]interface{}{"start_line": start, "total_lines": total})
	}

	content := s.fsAdapter.JoinLinesWithNewlines(buf.lines[start-1 : end])
	return &models.ReadFileResponse{
		Content:        string(content),
		TotalLines:     total,
		RangeRequested: &models.RangeRequested{StartLine: start, EndLine: end},
	}, nil
}

// WriteFile persists full file content, creating parent directories when
// requested.
func (s *DefaultFileOperationService) WriteFile(req models.WriteFileRequest) (*models.WriteFileResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Path)
	if errDetail != nil {
		return nil, errDetail
	}
	if !utf8.ValidString(req.Content) {
		return nil, errors.NewInvalidEncodingError(req.Path, "write_file")
	}
	if int64(len(req.Content)) > s.maxFileSize {
		return nil, errors.NewFileTooLargeError(req.Path, int(s.maxFileSize/(1024*1024)))
	}
	lines := s.fsAdapter.SplitLines([]byte(req.Content))
	if len(lines) > maxLineCount {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("content exceeds the maximum of %d lines", maxLineCount),
			map[string]interface{}{"lines": len(lines)})
	}

	// Parent directories must exist before the lock file can be created.
	parent := filepath.Dir(filePath)
	if req.CreateDirsEnabled() {
		if err := s.fsAdapter.MkdirAll(parent, dirPerm); err != nil {
			return nil, s.classifyFSError(err, req.Path, "write_file")
		}
	} else {
		parentExists, err := s.fsAdapter.FileExists(parent)
		if err != nil {
			return nil, s.classifyFSError(err, req.Path, "write_file")
		}
		if !parentExists {
			return nil, errors.NewFileNotFoundError(filepath.Dir(req.Path), "write_file")
		}
	}

	var resp *models.WriteFileResponse
	errDetail = s.withLock(filePath, req.Path, "write_file", func() *models.ErrorDetail {
		exists, err := s.fsAdapter.FileExists(filePath)
		if err != nil {
			return s.classifyFSError(err, req.Path, "write_file")
		}
		if exists {
			stats, err := s.fsAdapter.GetFileStats(filePath)
			if err != nil {
				return s.classifyFSError(err, req.Path, "write_file")
			}
			if stats.IsDir {
				return errors.NewInvalidParamsError(
					fmt.Sprintf("path '%s' is a directory, not a file", req.Path),
					map[string]interface{}{"path": req.Path})
			}
		}
		if err := s.fsAdapter.WriteFileBytesAtomic(filePath, []byte(req.Content), filePerm); err != nil {
			return s.classifyFSError(err, req.Path, "write_file")
		}
		resp = &models.WriteFileResponse{
			Success:      true,
			Created:      !exists,
			BytesWritten: len(req.Content),
			TotalLines:   len(lines),
		}
		return nil
	})
	if errDetail != nil {
		return nil, errDetail
	}

	s.logger.WithFields(logrus.Fields{
		"path":    req.Path,
		"bytes":   resp.BytesWritten,
		"created": resp.Created,
	}).Info("write_file completed")
	return resp, nil
}

// InsertLines inserts content before an absolute or end-relative line.
func (s *DefaultFileOperationService) InsertLines(req models.InsertLinesRequest) (*models.InsertLinesResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Path)
	if errDetail != nil {
		return nil, errDetail
	}
	if !utf8.ValidString(req.Content) {
		return nil, errors.NewInvalidEncodingError(req.Path, "insert_lines")
	}

	var resp *models.InsertLinesResponse
	errDetail = s.withLock(filePath, req.Path, "insert_lines", func() *models.ErrorDetail {
		buf, errDetail := s.loadFile(filePath, req.Path, "insert_lines")
		if errDetail != nil {
			return errDetail
		}
		total := len(buf.lines)

		position := req.Line
		switch {
		case position == 0:
			position = total + 1
		case position < 0:
			position = total + 1 + position
		}
		if position < 1 || position > total+1 {
			return errors.NewInvalidParamsError(
				fmt.Sprintf("insertion point %d is out of range (1-%d)", position, total+1),
				map[string]interface{}{"line": req.Line, "total_lines": total})
		}

		// Content splits like a diff block: empty content is one empty line.
		insert := strings.Split(string(s.fsAdapter.NormalizeNewlines([]byte(req.Content))), "\n")
		updated := make([]string, 0, total+len(insert))
		updated = append(updated, buf.lines[:position-1]...)
		updated = append(updated, insert...)
		updated = append(updated, buf.lines[position-1:]...)

		if _, errDetail := s.persistLines(filePath, req.Path, "insert_lines", updated, buf.trailingNewline); errDetail != nil {
			return errDetail
		}
		resp = &models.InsertLinesResponse{
			Success:       true,
			InsertedAt:    position,
			LinesInserted: len(insert),
			NewTotalLines: len(updated),
		}
		return nil
	})
	if errDetail != nil {
		return nil, errDetail
	}

	s.logger.WithFields(logrus.Fields{
		"path":     req.Path,
		"position": resp.InsertedAt,
		"lines":    resp.LinesInserted,
	}).Info("insert_lines completed")
	return resp, nil
}

// SearchReplace performs a whole-file literal or regex substitution and
// reports the change as a patch.
func (s *DefaultFileOperationService) SearchReplace(req models.SearchReplaceRequest) (*models.SearchReplaceResponse, *models.ErrorDetail) {
	filePath, errDetail := s.resolveAndValidatePath(req.Path)
	if errDetail != nil {
		return nil, errDetail
	}
	if req.Search == "" {
		return nil, errors.NewInvalidParamsError("search must not be empty", nil)
	}

	var re *regexp.Regexp
	if req.UseRegex {
		var err error
		re, err = regexp.Compile(req.Search)
		if err != nil {
			return nil, errors.NewInvalidParamsError(
				fmt.Sprintf("invalid regular expression: %v", err),
				map[string]interface{}{"search": req.Search})
		}
	} else if !req.CaseSensitiveEnabled() {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(req.Search))
	}

	var resp *models.SearchReplaceResponse
	errDetail = s.withLock(filePath, req.Path, "search_replace", func() *models.ErrorDetail {
		buf, errDetail := s.loadFile(filePath, req.Path, "search_replace")
		if errDetail != nil {
			return errDetail
		}
		text := buf.text

		var newText string
		var count int
		switch {
		case !req.UseRegex && re == nil: // literal, case-sensitive
			count = strings.Count(text, req.Search)
			if count > 0 {
				if req.AllEnabled() {
					newText = strings.ReplaceAll(text, req.Search, req.Replace)
				} else {
					count = 1
					idx := strings.Index(text, req.Search)
					newText = text[:idx] + req.Replace + text[idx+len(req.Search):]
				}
			}
		case req.UseRegex:
			matches := re.FindAllStringSubmatchIndex(text, -1)
			count = len(matches)
			if count > 0 {
				if req.AllEnabled() {
					newText = re.ReplaceAllString(text, req.Replace)
				} else {
					count = 1
					m := matches[0]
					expanded := re.ExpandString(nil, req.Replace, text, m)
					newText = text[:m[0]] + string(expanded) + text[m[1]:]
				}
			}
		default: // literal, case-insensitive
			matches := re.FindAllStringIndex(text, -1)
			count = len(matches)
			if count > 0 {
				if req.AllEnabled() {
					newText = re.ReplaceAllLiteralString(text, req.Replace)
				} else {
					count = 1
					m := matches[0]
					newText = text[:m[0]] + req.Replace + text[m[1]:]
				}
			}
		}

		if count == 0 {
			resp = &models.SearchReplaceResponse{
				Success:       true,
				Replacements:  0,
				NewTotalLines: len(buf.lines),
			}
			return nil
		}

		newLines := s.fsAdapter.SplitLines([]byte(newText))
		if len(newLines) > maxLineCount {
			return errors.NewInvalidParamsError(
				fmt.Sprintf("result exceeds the maximum of %d lines", maxLineCount),
				map[string]interface{}{"path": req.Path, "lines": len(newLines)})
		}
		if int64(len(newText)) > s.maxFileSize {
			return errors.NewFileTooLargeError(req.Path, int(s.maxFileSize/(1024*1024)))
		}

		dmp := diffmatchpatch.New()
		patchText := dmp.PatchToText(dmp.PatchMake(text, newText))

		if newText != text {
			if err := s.fsAdapter.WriteFileBytesAtomic(filePath, []byte(newText), filePerm); err != nil {
				return s.classifyFSError(err, req.Path, "search_replace")
			}
		}
		resp = &models.SearchReplaceResponse{
			Success:       true,
			Replacements:  count,
			NewTotalLines: len(newLines),
			Diff:          patchText,
		}
		return nil
	})
	if errDetail != nil {
		return nil, errDetail
	}

	s.logger.WithFields(logrus.Fields{
		"path":         req.Path,
		"replacements": resp.Replacements,
	}).Info("search_replace completed")
	return resp, nil
}

// ListFiles lists the working directory, skipping directories, hidden files
// and lock files.
func (s *DefaultFileOperationService) ListFiles(_ models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail) {
	entries, err := s.fsAdapter.ListDir(s.workingDir)
	if err != nil {
		return nil, s.classifyFSError(err, s.workingDir, "list_files")
	}

	files := make([]models.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir || entry.IsHidden || strings.HasSuffix(entry.Name, ".lock") {
			continue
		}

		info := models.FileInfo{
			Name:     entry.Name,
			Size:     entry.Size,
			Modified: entry.ModTime.UTC().Format(time.RFC3339),
			Readable: entry.Mode&0400 != 0,
			Writable: entry.Mode&0200 != 0,
			Lines:    -1,
		}
		switch {
		case entry.Size == 0:
			info.Lines = 0
		case entry.Size <= s.maxFileSize:
			content, readErr := s.fsAdapter.ReadFileBytes(filepath.Join(s.workingDir, entry.Name))
			if readErr == nil && s.fsAdapter.IsValidUTF8(content) {
				info.Lines = len(s.fsAdapter.SplitLines(content))
			}
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return &models.ListFilesResponse{
		Files:      files,
		TotalCount: len(files),
		Directory:  s.workingDir,
	}, nil
}
