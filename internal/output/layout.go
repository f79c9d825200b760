package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"subgen/internal/logging"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
)

const lockFileName = ".subgen.lock"

// Bundle is the result of a successful job: the output directory plus the
// subtitle file written for each language. Warnings carry degraded-mode
// advisories; they never indicate failure.
type Bundle struct {
	Dir      string
	Files    map[string]string
	Warnings []string
}

// Layout decides output directory and file naming and writes tracks to disk.
type Layout struct {
	baseDir string
	logger  *logging.Logger
}

// NewLayout builds a layout manager. baseDir overrides the default of
// placing output next to the video; empty keeps the default.
func NewLayout(baseDir string, logger *logging.Logger) *Layout {
	return &Layout{baseDir: baseDir, logger: logger}
}

// DeriveDir returns the output directory for a video: the video's base name
// without extension, under its own directory or the configured base.
func (l *Layout) DeriveDir(videoPath string) string {
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	parent := filepath.Dir(videoPath)
	if l.baseDir != "" {
		parent = l.baseDir
	}
	return filepath.Join(parent, name)
}

// Write persists one file per track in the requested format. Files already
// written are left in place when a later write fails; the caller treats any
// error as whole-job failure. An advisory file lock guards the directory
// against a concurrent job writing the same video path.
func (l *Layout) Write(videoPath string, tracks []*subtitle.Track, format subtitle.Format) (*Bundle, error) {
	dir := l.DeriveDir(videoPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, stage.Wrap(stage.ErrPersistence, "output", "create directory "+dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, stage.Wrap(stage.ErrPersistence, "output", "lock "+dir, err)
	}
	if !locked {
		return nil, stage.Errorf(stage.ErrPersistence,
			"output directory %s is being written by another job", dir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	bundle := &Bundle{
		Dir:   dir,
		Files: make(map[string]string, len(tracks)),
	}

	for _, track := range tracks {
		text, err := subtitle.Render(track, format)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(dir, track.Language+format.Ext())
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return nil, stage.Wrap(stage.ErrPersistence, "output", "write "+path, err)
		}

		bundle.Files[track.Language] = path
		if track.Degraded {
			bundle.Warnings = append(bundle.Warnings, fmt.Sprintf(
				"%s translated without a credential; expect degraded quality",
				track.Language,
			))
		}

		l.logger.Debugw("Wrote subtitle file",
			"path", path,
			"cues", len(track.Cues),
		)
	}

	return bundle, nil
}
