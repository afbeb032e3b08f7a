package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"backwork/atlas/pkg/schema"
	"backwork/atlas/pkg/schema/parser"
	"backwork/atlas/pkg/schema/validator"
)

// LoaderConfig contains configuration for the bundle loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum bundle file size in bytes.
	// Default: 5MB.
	MaxFileSize int64

	// Extensions lists the file extensions treated as bundle files.
	// Default: .yaml, .yml.
	Extensions []string
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize: 5 * 1024 * 1024,
		Extensions:  []string{".yaml", ".yml"},
	}
}

// BundleLoader loads policy bundles from the file system. Every loaded
// bundle passes through the parser and the validator; a bundle with any
// validation error is rejected whole.
type BundleLoader struct {
	config    *LoaderConfig
	parser    *parser.Parser
	validator *validator.Validator
}

// NewBundleLoader creates a new bundle loader.
func NewBundleLoader(config *LoaderConfig) *BundleLoader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &BundleLoader{
		config:    config,
		parser:    parser.NewParser().WithMaxFileSize(config.MaxFileSize),
		validator: validator.NewValidator(),
	}
}

// LoadFromFile loads and validates a single bundle file.
func (l *BundleLoader) LoadFromFile(path string) (*schema.PolicyBundle, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "file not found",
				Cause:    err,
			}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "permission denied",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{
			FilePath: path,
			Message:  "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	bundle, err := l.parser.ParseBytes(data, path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "parsing failed",
			Cause:    err,
		}
	}

	if err := l.validator.Validate(bundle); err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "validation failed",
			Cause:    err,
		}
	}

	return bundle, nil
}

// LoadFromDirectory loads all bundle files from the given directory
// recursively. Any file that fails to load or validate fails the whole
// directory load; partial bundle sets never reach the registry.
func (l *BundleLoader) LoadFromDirectory(dir string) ([]*schema.PolicyBundle, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: dir,
				Message:  "directory not found",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to access directory",
			Cause:    err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	files, err := l.collectBundleFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "no bundle files found in directory",
		}
	}

	var bundles []*schema.PolicyBundle
	seen := make(map[string]string) // policy id -> source file

	for _, path := range files {
		bundle, err := l.LoadFromFile(path)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[bundle.ID]; ok {
			return nil, &LoadError{
				FilePath: path,
				Message:  fmt.Sprintf("duplicate policy id %q (already defined in %s)", bundle.ID, prev),
			}
		}
		seen[bundle.ID] = path

		bundles = append(bundles, bundle)
	}

	return bundles, nil
}

// LoadIntoRegistry loads a directory and atomically replaces the
// registry contents with the result.
func (l *BundleLoader) LoadIntoRegistry(dir string, registry *BundleRegistry) error {
	bundles, err := l.LoadFromDirectory(dir)
	if err != nil {
		return err
	}
	return registry.Replace(bundles)
}

// collectBundleFiles walks the directory and collects bundle file
// paths, sorted for deterministic load order.
func (l *BundleLoader) collectBundleFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files and directories.
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if l.hasValidExtension(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to walk directory",
			Cause:    err,
		}
	}

	sort.Strings(files)
	return files, nil
}

// hasValidExtension checks if a file extension is a bundle extension.
func (l *BundleLoader) hasValidExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, valid := range l.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
