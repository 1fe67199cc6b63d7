package pkgsrc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

// PackageScriptName marks a package with custom build logic.
const PackageScriptName = "pkg.rs"

// PackageSource is the resolved source of one package.
type PackageSource struct {
	// Workspace owns the package; StartDir may lie outside it in hack mode.
	Workspace string
	StartDir  string
	// ID is the identifier the source was resolved as. After prefix resolution it is
	// the enclosing package's identifier; use it for cache keys.
	ID pkgid.ID

	units [len(Categories)][]BuildUnit
}

func (s *PackageSource) String() string {
	return fmt.Sprintf("Package ID %s in start dir %s [workspace = %s]", s.ID, s.StartDir, s.Workspace)
}

// Units returns a copy of the units discovered for c, in discovery order.
func (s *PackageSource) Units(c Category) []BuildUnit {
	return slices.Clone(s.units[c])
}

// UnitCount returns the number of units across all categories.
func (s *PackageSource) UnitCount() int {
	n := 0
	for _, us := range s.units {
		n += len(us)
	}
	return n
}

// AddUnit appends a unit to category c.
func (s *PackageSource) AddUnit(c Category, u BuildUnit) {
	s.units[c] = append(s.units[c], u)
}

// UnitPath returns the cleaned absolute path of u.
func (s *PackageSource) UnitPath(u BuildUnit) string {
	return filepath.Clean(filepath.Join(s.StartDir, u.File))
}

// PackageScript returns start_dir/pkg.rs when it exists.
func (s *PackageSource) PackageScript() (string, bool) {
	p := filepath.Join(s.StartDir, PackageScriptName)
	slog.Debug("Checking for package script", logfields.Path(p))
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
