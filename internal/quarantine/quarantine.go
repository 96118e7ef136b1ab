// Package quarantine validates egg exports and deals with the seeds whose
// export is broken.
package quarantine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"

	"github.com/katydid-analysis/eggmatch/internal/egg"
	"github.com/katydid-analysis/eggmatch/internal/seed"
	"github.com/katydid-analysis/eggmatch/pkg/logger"
	"github.com/katydid-analysis/eggmatch/pkg/utils"
)

// LockFileName is created in the egg directory while a check runs.
const LockFileName = ".eggmatch.lock"

// DefaultDirName is the quarantine directory used when none is configured.
const DefaultDirName = "quarantine"

// Logger receives progress messages.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// ErrLocked means another check holds the egg directory.
var ErrLocked = errors.New("quarantine: egg directory is locked by another process")

// Policy is what happens to the files of an invalid seed.
type Policy int

const (
	// Report leaves the files in place.
	Report Policy = iota
	// Remove deletes the files.
	Remove
	// Label moves the files into the quarantine directory.
	Label
)

func (p Policy) String() string {
	switch p {
	case Report:
		return "report"
	case Remove:
		return "remove"
	case Label:
		return "label"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps "report", "remove" or "label" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "report", "":
		return Report, nil
	case "remove":
		return Remove, nil
	case "label":
		return Label, nil
	}
	return Report, fmt.Errorf("quarantine: unknown policy %q", s)
}

// Dirs locates the data tree.
type Dirs struct {
	Egg   string
	Pitch string
	// Quarantine defaults to <Egg>/quarantine.
	Quarantine string
}

// Finding describes one invalid seed and what was done about it.
type Finding struct {
	Seed     string
	Problems []string
	// Files lists the egg and pitch files that exist for the seed.
	Files []string
	// Moved holds the new locations under Label.
	Moved []string
	// Removed is true when the files were deleted.
	Removed bool
}

// Result summarizes a check.
type Result struct {
	Policy   Policy
	Checked  int
	Findings []Finding
}

// Seeds returns the invalid seeds in check order.
func (r *Result) Seeds() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Seed
	}
	return out
}

// Check validates every egg export in dirs.Egg and applies policy to the
// files of each invalid seed. Files missing on the pitch side are skipped.
// A nil log uses the package logger.
func Check(ctx context.Context, dirs Dirs, policy Policy, log Logger) (*Result, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if dirs.Quarantine == "" {
		dirs.Quarantine = filepath.Join(dirs.Egg, DefaultDirName)
	}

	lock := flock.New(filepath.Join(dirs.Egg, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warnf("failed to release %s: %v", lock.Path(), err)
		}
	}()

	exports, err := listExports(dirs.Egg)
	if err != nil {
		return nil, err
	}

	res := &Result{Policy: policy}
	for _, path := range exports {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		_, verr := egg.ValidateFile(path)
		if verr == nil {
			continue
		}
		var ve *egg.ValidationError
		if !errors.As(verr, &ve) {
			return res, verr
		}

		s, _ := seed.Extract(filepath.Base(path))
		f := Finding{Seed: s, Problems: ve.Problems, Files: siblings(dirs, s, path)}
		log.Warnf("%s: invalid egg export: %s", s, strings.Join(ve.Problems, "; "))

		if err := apply(&f, dirs, policy, log); err != nil {
			res.Findings = append(res.Findings, f)
			return res, err
		}
		res.Findings = append(res.Findings, f)
	}
	return res, nil
}

// listExports returns the seeded .csv files of dir in name order.
func listExports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		if _, ok := seed.Extract(e.Name()); ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}

func siblings(dirs Dirs, s, eggPath string) []string {
	files := []string{eggPath}
	if dirs.Pitch == "" || s == "" {
		return files
	}
	p := filepath.Join(dirs.Pitch, seed.PitchFileName(s))
	if utils.Exists(p) {
		files = append(files, p)
	}
	return files
}

func apply(f *Finding, dirs Dirs, policy Policy, log Logger) error {
	switch policy {
	case Report:
		return nil
	case Remove:
		for _, path := range f.Files {
			if err := utils.DeleteFile(path); err != nil {
				return err
			}
			log.Infof("removed %s", path)
		}
		f.Removed = true
		return nil
	case Label:
		for _, path := range f.Files {
			dst := filepath.Join(dirs.Quarantine, filepath.Base(path))
			if err := utils.MoveFile(path, dst); err != nil {
				return err
			}
			log.Infof("moved %s to %s", path, dst)
			f.Moved = append(f.Moved, dst)
		}
		return nil
	}
	return fmt.Errorf("quarantine: unknown policy %v", policy)
}
