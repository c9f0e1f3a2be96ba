// selector.go - Candidate file selection
package repository

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"upgrade-analyzer/internal/config"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/pkg/logger"

	gitignore "github.com/sabhiram/go-gitignore"
)

type SelectorInterface interface {
	SetSelectorConfig(cfg *config.ConfigScan)
	GetSelectorConfig() *config.ConfigScan
	LoadExcludeRules(rootPath string) *gitignore.GitIgnore
	SelectFiles(rootPath, module string) (*model.ModuleFiles, error)
	ReadSource(rootPath, relPath string) (string, error)
}

// FileSelector walks a module directory tree and yields the candidate files
// for analysis. Exclude rules take precedence over include patterns.
type FileSelector struct {
	scanConfig *config.ConfigScan
	logger     logger.Logger
	rwMutex    sync.RWMutex
}

func NewFileSelector(logger logger.Logger) SelectorInterface {
	cfg := config.DefaultConfigScan
	return &FileSelector{
		scanConfig: &cfg,
		logger:     logger,
	}
}

// SetSelectorConfig sets the selection configuration
func (s *FileSelector) SetSelectorConfig(cfg *config.ConfigScan) {
	if cfg == nil {
		return
	}
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()
	if len(cfg.IncludePatterns) > 0 {
		s.scanConfig.IncludePatterns = cfg.IncludePatterns
	}
	if len(cfg.ExcludePatterns) > 0 {
		s.scanConfig.ExcludePatterns = cfg.ExcludePatterns
	}
	if cfg.MaxFileSizeKB > 0 {
		s.scanConfig.MaxFileSizeKB = cfg.MaxFileSizeKB
	}
	if cfg.MaxFileCount > 0 {
		s.scanConfig.MaxFileCount = cfg.MaxFileCount
	}
}

// GetSelectorConfig returns the current selection configuration
func (s *FileSelector) GetSelectorConfig() *config.ConfigScan {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()
	return s.scanConfig
}

// LoadExcludeRules compiles the configured exclude patterns merged with the
// module's own .gitignore. Patterns written as "*/dir/*" also match at the
// tree root, so a root-level "tests/b.php" is denied by "*/tests/*".
func (s *FileSelector) LoadExcludeRules(rootPath string) *gitignore.GitIgnore {
	currentRules := s.scanConfig.ExcludePatterns

	for _, rule := range s.scanConfig.ExcludePatterns {
		if strings.HasPrefix(rule, "*/") {
			currentRules = append(currentRules, strings.TrimPrefix(rule, "*/"))
		}
	}

	gitignoreRules := s.loadGitignore(rootPath)
	if len(gitignoreRules) > 0 {
		currentRules = append(currentRules, gitignoreRules...)
	}

	return gitignore.CompileIgnoreLines(uniqueStrings(currentRules)...)
}

// loadGitignore reads the module's .gitignore and returns its patterns
func (s *FileSelector) loadGitignore(rootPath string) []string {
	var ignores []string
	ignoreFilePath := filepath.Join(rootPath, ".gitignore")
	content, err := os.ReadFile(ignoreFilePath)
	if err != nil {
		s.logger.Debug("no .gitignore file: %v", err)
		return ignores
	}
	for _, line := range bytes.Split(content, []byte{'\n'}) {
		trimmedLine := bytes.TrimSpace(line)
		if len(trimmedLine) > 0 && !bytes.HasPrefix(trimmedLine, []byte{'#'}) {
			ignores = append(ignores, string(trimmedLine))
		}
	}
	return ignores
}

// matchesInclude checks a relative path against the include patterns. A
// pattern beginning with a dot is an extension, anything else is a glob
// matched against the base name.
func (s *FileSelector) matchesInclude(relPath string) bool {
	includes := s.scanConfig.IncludePatterns
	if len(includes) == 0 {
		return true
	}
	base := filepath.Base(relPath)
	ext := filepath.Ext(relPath)
	for _, pattern := range includes {
		if strings.HasPrefix(pattern, ".") {
			if ext == pattern {
				return true
			}
			continue
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// SelectFiles walks the module directory and returns the matching files in
// lexical order. A missing or unreadable root yields a ScanError; the caller
// records it and continues with the next module.
func (s *FileSelector) SelectFiles(rootPath, module string) (*model.ModuleFiles, error) {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	startTime := time.Now()

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, errs.NewScanError(module, rootPath, err)
	}
	if !info.IsDir() {
		return nil, errs.NewScanError(module, rootPath, fmt.Errorf("not a directory"))
	}

	ignore := s.LoadExcludeRules(rootPath)
	maxFileSize := int64(s.scanConfig.MaxFileSizeKB * 1024)

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("error accessing %s: %v", path, err)
			return nil // continue with the remaining entries
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			s.logger.Warn("failed to get relative path for %s: %v", path, err)
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			// Don't skip the root dir (relPath=".") due to ".*" rules
			if relPath != "." && ignore != nil && ignore.MatchesPath(relPath+"/") {
				s.logger.Debug("skipping excluded directory: %s", relPath)
				return fs.SkipDir
			}
			return nil
		}

		// Deny takes precedence over include patterns
		if ignore != nil && ignore.MatchesPath(relPath) {
			s.logger.Debug("skipping excluded file: %s", relPath)
			return nil
		}

		if !s.matchesInclude(relPath) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			s.logger.Warn("error getting file info for %s: %v", path, err)
			return nil
		}
		if fileInfo.Size() >= maxFileSize {
			s.logger.Debug("skipping file larger than %dKB: %s", s.scanConfig.MaxFileSizeKB, relPath)
			return nil
		}

		files = append(files, relPath)
		if len(files) > s.scanConfig.MaxFileCount {
			return fmt.Errorf("reached maximum file count limit: %d", len(files))
		}

		return nil
	})

	if err != nil {
		if strings.HasPrefix(err.Error(), "reached maximum file count limit") {
			s.logger.Warn("%v, stopping selection for module %s", err, module)
			files = files[:s.scanConfig.MaxFileCount]
		} else {
			return nil, errs.NewScanError(module, rootPath, err)
		}
	}

	s.logger.Info("file selection for module %s completed, %d files, time taken: %v",
		module, len(files), time.Since(startTime))

	return &model.ModuleFiles{Module: module, Root: rootPath, Files: files}, nil
}

// ReadSource reads one selected file's content
func (s *FileSelector) ReadSource(rootPath, relPath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("failed to read source file %s: %v", relPath, err)
	}
	return string(data), nil
}

// uniqueStrings removes duplicate patterns preserving order
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
