package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPackageID  = "package_id"
	KeyPath       = "path"
	KeyWorkspace  = "workspace"
	KeyStartDir   = "start_dir"
	KeyUnit       = "unit"
	KeyKind       = "kind"
	KeyURL        = "url"
	KeyVersion    = "version"
	KeyStrategy   = "strategy"
	KeyCacheKey   = "cache_key"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PackageID(id string) slog.Attr   { return slog.String(KeyPackageID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Workspace(p string) slog.Attr    { return slog.String(KeyWorkspace, p) }
func StartDir(p string) slog.Attr     { return slog.String(KeyStartDir, p) }
func Unit(p string) slog.Attr         { return slog.String(KeyUnit, p) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Strategy(s string) slog.Attr     { return slog.String(KeyStrategy, s) }
func CacheKey(k string) slog.Attr     { return slog.String(KeyCacheKey, k) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
