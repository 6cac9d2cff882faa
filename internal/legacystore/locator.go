package legacystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no legacy database file could be located for
// a company. Fatal before batch processing starts.
var ErrNotFound = errors.New("legacy store not found")

// Locator resolves the legacy database file for a company and fiscal year.
//
// Search order:
//  1. the company's manual-upload directory <uploadsRoot>/<companyKey>/,
//     preferring a filename containing the year token, else the most
//     recently modified file;
//  2. the dated backup root <backupRoot>/<year>/<companyKey>_<year>/,
//     preferring an exact year match and the newest candidate within it.
//
// Manual uploads win over archives: they carry the operator's most recent
// intent.
type Locator struct {
	uploadsRoot string
	backupRoot  string
	extension   string
}

// NewLocator builds a locator over the portal's filesystem conventions.
// extension is the legacy container suffix, e.g. ".mdb".
func NewLocator(uploadsRoot, backupRoot, extension string) *Locator {
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Locator{
		uploadsRoot: uploadsRoot,
		backupRoot:  backupRoot,
		extension:   strings.ToLower(extension),
	}
}

// Locate returns the path of the legacy database file for companyKey.
// fiscalYear 0 means "any year"; the newest candidate wins.
func (l *Locator) Locate(companyKey string, fiscalYear int) (string, error) {
	if strings.TrimSpace(companyKey) == "" {
		return "", fmt.Errorf("%w: empty company key", ErrNotFound)
	}

	if path, ok := l.locateUpload(companyKey, fiscalYear); ok {
		return path, nil
	}
	if path, ok := l.locateBackup(companyKey, fiscalYear); ok {
		return path, nil
	}

	return "", fmt.Errorf("%w: company %s year %d", ErrNotFound, companyKey, fiscalYear)
}

func (l *Locator) locateUpload(companyKey string, fiscalYear int) (string, bool) {
	dir := filepath.Join(l.uploadsRoot, companyKey)
	candidates := l.listCandidates(dir)
	if len(candidates) == 0 {
		return "", false
	}

	if fiscalYear > 0 {
		token := strconv.Itoa(fiscalYear)
		var matching []string
		for _, c := range candidates {
			if strings.Contains(filepath.Base(c), token) {
				matching = append(matching, c)
			}
		}
		if len(matching) > 0 {
			candidates = matching
		}
	}

	return newestFile(candidates)
}

func (l *Locator) locateBackup(companyKey string, fiscalYear int) (string, bool) {
	years := l.backupYears(fiscalYear)
	for _, year := range years {
		dir := filepath.Join(l.backupRoot, year, companyKey+"_"+year)
		if path, ok := newestFile(l.listCandidates(dir)); ok {
			return path, true
		}
	}
	return "", false
}

// backupYears returns the year directories to probe, newest first when no
// exact year is requested.
func (l *Locator) backupYears(fiscalYear int) []string {
	if fiscalYear > 0 {
		return []string{strconv.Itoa(fiscalYear)}
	}

	entries, err := os.ReadDir(l.backupRoot)
	if err != nil {
		return nil
	}

	var years []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, convErr := strconv.Atoi(entry.Name()); convErr != nil {
			continue
		}
		years = append(years, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

func (l *Locator) listCandidates(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != l.extension {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths
}

func newestFile(paths []string) (string, bool) {
	var (
		best     string
		bestTime int64
	)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().UnixNano() > bestTime {
			best = path
			bestTime = info.ModTime().UnixNano()
		}
	}
	return best, best != ""
}
