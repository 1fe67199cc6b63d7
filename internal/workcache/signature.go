package workcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one declared input or discovered output.
type Entry struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

type entryKey struct{ kind, name string }

// entrySet keys entries by (kind, name); a re-declaration overwrites.
type entrySet map[entryKey]string

func (s entrySet) put(kind, name, fp string) { s[entryKey{kind, name}] = fp }

// sorted returns entries ordered by kind then name.
func (s entrySet) sorted() []Entry {
	out := make([]Entry, 0, len(s))
	for k, fp := range s {
		out = append(out, Entry{Kind: k.kind, Name: k.name, Fingerprint: fp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// signature computes a deterministic hash over sorted entries.
func signature(entries []Entry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal entries: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
