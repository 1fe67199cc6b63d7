package pkgsrc

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
)

const missingFilesNote = "Couldn't infer any build units.\n" +
	"Try naming a unit `main.rs`, `lib.rs`, `test.rs`, or `bench.rs`."

// FindUnits walks the start directory and records every recognised entry file.
// Units within a category follow lexical path order. It fails with
// *MissingBuildFilesError when nothing was found.
func (s *PackageSource) FindUnits() error {
	slog.Debug("Finding build units", logfields.PackageID(s.ID.String()), logfields.StartDir(s.StartDir))
	err := filepath.WalkDir(s.StartDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A start dir reached through a prefix may not exist; it has no units.
			if path == s.StartDir && stderrors.Is(err, fs.ErrNotExist) {
				slog.Debug("Start dir does not exist", logfields.StartDir(s.StartDir))
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		cat, ok := unitFiles[d.Name()]
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(s.StartDir, path)
		if err != nil {
			return err
		}
		slog.Debug("Will compile unit", logfields.Unit(rel), logfields.Kind(cat.String()))
		s.AddUnit(cat, BuildUnit{File: rel})
		return nil
	})
	if err != nil {
		return errors.FileSystemError("failed to walk package source").
			WithCause(err).
			WithContext("path", s.StartDir).
			Build()
	}

	if s.UnitCount() == 0 {
		slog.Warn(missingFilesNote, logfields.PackageID(s.ID.String()), logfields.StartDir(s.StartDir))
		return &MissingBuildFilesError{ID: s.ID}
	}

	slog.Debug("Found build units",
		logfields.StartDir(s.StartDir),
		slog.Int("libs", len(s.units[Library])),
		slog.Int("mains", len(s.units[Executable])),
		slog.Int("tests", len(s.units[Test])),
		slog.Int("benchs", len(s.units[Benchmark])))
	return nil
}
