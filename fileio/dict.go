package fileio

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SelectKeys returns a new map containing only the listed keys. Keys absent
// from m are skipped.
func SelectKeys(m map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// RemoveKeys returns a new map with the listed keys removed.
func RemoveKeys(m map[string]any, keys []string) map[string]any {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, ok := drop[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// NameOptions filters which keys contribute to ToFilename. SelectKeys wins
// over IgnoreKeys when both are set.
type NameOptions struct {
	SelectKeys []string
	IgnoreKeys []string
}

// ToFilename joins a map's key-value pairs into a deterministic filename
// fragment: pairs are sorted by key and rendered as k<delim>v. Used to name
// run directories after hyperparameter settings.
func ToFilename(m map[string]any, delimiter string, opts *NameOptions) string {
	filtered := m
	if opts != nil {
		switch {
		case len(opts.SelectKeys) > 0:
			filtered = SelectKeys(m, opts.SelectKeys)
		case len(opts.IgnoreKeys) > 0:
			filtered = RemoveKeys(m, opts.IgnoreKeys)
		}
	}

	keys := make([]string, 0, len(filtered))
	for k := range filtered {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s%s%v", k, delimiter, filtered[k]))
	}
	return strings.Join(parts, delimiter)
}

// Hash returns a short stable digest of a map: the first 8 hex characters of
// md5 over its canonical JSON form. json.Marshal emits map keys sorted at
// every nesting level, so equal maps hash equal. Collisions are acceptable;
// this names directories, it does not authenticate anything.
func Hash(m map[string]any) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("fileio: hash params: %w", err)
	}
	sum := md5.Sum(data) //nolint:gosec // content addressing, not security
	return hex.EncodeToString(sum[:])[:8], nil
}
