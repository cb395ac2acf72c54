package reconcile

import "github.com/vmunix/strmsync/internal/catalog"

// Dedup keeps one entry per key. The last entry for a key wins, but the
// result keeps the order in which keys were first seen. Entries with an
// empty key are dropped.
func Dedup(entries []catalog.Entry) []catalog.Entry {
	index := make(map[catalog.Key]int, len(entries))
	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		key := e.Key()
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}
