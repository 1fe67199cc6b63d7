package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

const (
	// SrcDir holds package sources inside a workspace.
	SrcDir = "src"
	// BuildDir holds compiler output inside a workspace.
	BuildDir = "build"
	// defaultWorkspaceName is created under the home directory when nothing else is configured.
	defaultWorkspaceName = ".pkgbuild"
	// EnvSearchPath lists extra search-path entries, separated like PATH.
	EnvSearchPath = "PKGBUILD_PATH"
)

// IsWorkspace reports whether path has the workspace layout (a src directory).
func IsWorkspace(path string) bool {
	return isDir(filepath.Join(path, SrcDir))
}

// Create ensures root has the workspace layout.
func Create(root string) error {
	for _, sub := range []string{SrcDir, BuildDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o750); err != nil {
			return fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}
	slog.Debug("Workspace ready", logfields.Workspace(root))
	return nil
}

// SourcePath returns root/src/rel.
func SourcePath(root string, rel ...string) string {
	return filepath.Join(append([]string{root, SrcDir}, rel...)...)
}

// OutputDir returns the build output directory for a package path.
func OutputDir(root string, id pkgid.ID) string {
	return filepath.Join(root, BuildDir, id.FilePath())
}

// DefaultWorkspace resolves the default workspace like ResolveDefaultWorkspace and
// creates it with the workspace layout.
func DefaultWorkspace(configured string, searchPath []string) (string, error) {
	abs, err := ResolveDefaultWorkspace(configured, searchPath)
	if err != nil {
		return "", err
	}
	if err := Create(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// ResolveDefaultWorkspace returns the workspace used for hack-mode output: the
// configured value, else the first search-path entry, else ~/.pkgbuild. Nothing is
// created.
func ResolveDefaultWorkspace(configured string, searchPath []string) (string, error) {
	dir := configured
	if dir == "" && len(searchPath) > 0 {
		dir = searchPath[0]
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		dir = filepath.Join(home, defaultWorkspaceName)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve default workspace: %w", err)
	}
	return abs, nil
}

// SearchPath returns the configured entries plus PKGBUILD_PATH.
func SearchPath(configured []string) []string {
	return SearchPathWith(configured, os.Getenv)
}

// SearchPathWith is SearchPath with an injectable environment lookup. Entries are
// made absolute and de-duplicated, keeping first occurrence order.
func SearchPathWith(configured []string, getenv func(string) string) []string {
	entries := slices.Clone(configured)
	if v := getenv(EnvSearchPath); v != "" {
		entries = append(entries, filepath.SplitList(v)...)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if abs, err := filepath.Abs(e); err == nil {
			e = abs
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// FindDirUsingPathHack looks for id in search-path entries that are not workspaces:
// entry/<id path> when it is a directory, else the entry itself when its base name
// equals the short name. The first hit wins.
func FindDirUsingPathHack(id pkgid.ID, searchPath []string) (string, bool) {
	for _, entry := range searchPath {
		if IsWorkspace(entry) {
			continue
		}
		candidate := filepath.Join(entry, id.FilePath())
		slog.Debug("Path hack candidate", logfields.PackageID(id.String()), logfields.Path(candidate))
		if isDir(candidate) {
			return candidate, true
		}
		if filepath.Base(entry) == id.ShortName() && isDir(entry) {
			return entry, true
		}
	}
	return "", false
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
