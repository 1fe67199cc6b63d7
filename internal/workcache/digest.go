package workcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
)

// DigestFileWithDate returns a hex SHA-256 over the file contents followed by its
// modification time in unix nanoseconds. Unreadable files digest to "".
func DigestFileWithDate(path string) string {
	f, err := os.Open(path) // #nosec G304 -- paths come from discovered build units
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return ""
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	writeMtime(h, fi)
	return hex.EncodeToString(h.Sum(nil))
}

// DigestOnlyDate returns a hex SHA-256 over the modification time alone. Missing
// files digest to "".
func DigestOnlyDate(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return ""
	}
	h := sha256.New()
	writeMtime(h, fi)
	return hex.EncodeToString(h.Sum(nil))
}

func writeMtime(w io.Writer, fi os.FileInfo) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(fi.ModTime().UnixNano())) // #nosec G115 -- sign is irrelevant for hashing
	_, _ = w.Write(buf[:])
}
