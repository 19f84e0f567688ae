// Package upload validates and holds the single report file a user wants analyzed.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mabhi256/medi/utils"
)

// DefaultMaxSize bounds the files the gate accepts when no limit is configured.
const DefaultMaxSize = 10 * utils.MB

// AllowedExtensions lists the accepted report extensions, lowercase and without the dot.
var AllowedExtensions = []string{"txt", "pdf"}

var (
	ErrUnsupportedExtension = errors.New("unsupported file type, please upload a .txt or .pdf file")
	ErrFileTooLarge         = errors.New("file exceeds the maximum upload size")
	ErrNotRegular           = errors.New("not a regular file")
)

// ValidationError describes why a candidate file was rejected.
type ValidationError struct {
	Name   string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// File is a validated report file. Extension is always lowercase.
type File struct {
	Name      string
	Size      int64
	Extension string
	Path      string
}

// Open returns the raw bytes of the file
func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// HumanSize formats the size the way the file card shows it
func (f *File) HumanSize() string {
	return fmt.Sprintf("%.1f KB", utils.MemorySize(f.Size).KB())
}

// Gate holds at most one validated file. It is not safe for concurrent use;
// the analysis controller serializes access to it.
type Gate struct {
	maxSize utils.MemorySize
	current *File
}

func NewGate(maxSize utils.MemorySize) *Gate {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Gate{maxSize: maxSize}
}

// Extension returns the lowercase text after the last "." of the base name,
// or "" if there is none.
func Extension(name string) string {
	base := filepath.Base(name)
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// Select validates the file at path and, on success, replaces the held file.
// A rejected candidate leaves the held file untouched.
func (g *Gate) Select(path string) (*File, error) {
	name := filepath.Base(path)

	ext := Extension(name)
	if !slices.Contains(AllowedExtensions, ext) {
		return nil, &ValidationError{Name: name, Reason: ErrUnsupportedExtension}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &ValidationError{Name: name, Reason: ErrNotRegular}
	}
	if info.Size() > g.maxSize.Bytes() {
		return nil, &ValidationError{
			Name:   name,
			Reason: fmt.Errorf("%w (%s > %s)", ErrFileTooLarge, utils.MemorySize(info.Size()), g.maxSize),
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	g.current = &File{
		Name:      name,
		Size:      info.Size(),
		Extension: ext,
		Path:      absPath,
	}
	return g.current, nil
}

// Clear discards the held file
func (g *Gate) Clear() {
	g.current = nil
}

// Current returns the held file, or nil
func (g *Gate) Current() *File {
	return g.current
}

func (g *Gate) MaxSize() utils.MemorySize {
	return g.maxSize
}
