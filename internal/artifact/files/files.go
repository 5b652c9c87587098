// Package files owns the output directory: file naming, the fallback lookup
// by ID and the listing used by the cleanup sweeper.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"praticai/internal/forms/models"
	"praticai/pkg/platform/sentinel"
)

const extension = ".pdf"

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// Dir is the output directory for generated documents.
type Dir struct {
	root string
}

// New returns the output directory rooted at root. The directory is created
// lazily on first write.
func New(root string) *Dir {
	return &Dir{root: root}
}

// Root is the directory path.
func (d *Dir) Root() string {
	return d.root
}

// PathFor returns the destination path and file name for a new artifact.
func (d *Dir) PathFor(ft models.FormType, surname, name string, id uuid.UUID) (string, string) {
	fileName := FileName(ft.FilePrefix(), surname, name, id)
	return filepath.Join(d.root, fileName), fileName
}

// FileName builds <prefix>_<Surname>_<Name>_<id>.pdf.
func FileName(prefix, surname, name string, id uuid.UUID) string {
	return prefix + "_" + SanitizePart(surname) + "_" + SanitizePart(name) + "_" + id.String() + extension
}

// SanitizePart folds accents to ASCII and replaces anything outside
// [A-Za-z0-9-] with underscores.
func SanitizePart(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	out := strings.Trim(unsafeRun.ReplaceAllString(folded, "_"), "_")
	if out == "" {
		return "X"
	}
	return out
}

// IDFromName extracts the artifact ID from a generated file name.
func IDFromName(fileName string) (uuid.UUID, bool) {
	if !strings.HasSuffix(fileName, extension) {
		return uuid.Nil, false
	}
	base := strings.TrimSuffix(fileName, extension)
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(base[i+1:])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Exists reports whether path is a regular file.
func (d *Dir) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Find scans the directory for the file whose name ends in exactly
// _<id>.pdf. It returns sentinel.ErrNotFound when there is none.
func (d *Dir) Find(id uuid.UUID) (string, error) {
	suffix := "_" + id.String() + extension
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("read output directory: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(d.root, e.Name()), nil
		}
	}
	return "", sentinel.ErrNotFound
}

// Stale is a generated file older than a cutoff.
type Stale struct {
	Path    string
	ID      uuid.UUID
	ModTime time.Time
}

// OlderThan lists generated PDFs last modified before cutoff. Files that do
// not follow the naming scheme are ignored.
func (d *Dir) OlderThan(cutoff time.Time) ([]Stale, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var stale []Stale
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		id, ok := IDFromName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, Stale{Path: filepath.Join(d.root, e.Name()), ID: id, ModTime: info.ModTime()})
		}
	}
	return stale, nil
}

// Remove deletes path; a missing file is not an error.
func (d *Dir) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
