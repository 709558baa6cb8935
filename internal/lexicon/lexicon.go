// Package lexicon holds the read-only word lists used by the name and
// company generators.
package lexicon

import (
	"math/rand/v2"
	"sort"
	"strings"
)

// AllGroups selects every group.
const AllGroups = "all"

// Entry is one word and the group it belongs to.
type Entry struct {
	Group string
	Value string
}

// Lexicon is an immutable, group-indexed word list. Safe for concurrent use.
type Lexicon struct {
	name    string
	order   []string            // group names in first-seen order
	byGroup map[string][]string // lowercased group -> values
	display map[string]string   // lowercased group -> group as loaded
}

// New builds a lexicon from entries. Empty values are dropped.
func New(name string, entries []Entry) *Lexicon {
	l := &Lexicon{
		name:    name,
		byGroup: make(map[string][]string),
		display: make(map[string]string),
	}
	for _, e := range entries {
		value := strings.TrimSpace(e.Value)
		if value == "" {
			continue
		}
		group := strings.TrimSpace(e.Group)
		key := strings.ToLower(group)
		if _, ok := l.display[key]; !ok {
			l.display[key] = group
			l.order = append(l.order, key)
		}
		l.byGroup[key] = append(l.byGroup[key], value)
	}
	return l
}

// FromMap builds a lexicon from group -> values. Groups are added in sorted order.
func FromMap(name string, groups map[string][]string) *Lexicon {
	keys := make([]string, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Strings(keys)

	var entries []Entry
	for _, g := range keys {
		for _, v := range groups[g] {
			entries = append(entries, Entry{Group: g, Value: v})
		}
	}
	return New(name, entries)
}

// Name identifies the list, e.g. "female" or "classification".
func (l *Lexicon) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Groups returns the group names in load order.
func (l *Lexicon) Groups() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.order))
	for i, key := range l.order {
		out[i] = l.display[key]
	}
	return out
}

// Size returns the number of values in the selected groups.
func (l *Lexicon) Size(groups []string) int {
	n := 0
	for _, key := range l.selected(groups) {
		n += len(l.byGroup[key])
	}
	return n
}

// HasGroup reports whether a group exists (case-insensitive).
func (l *Lexicon) HasGroup(group string) bool {
	if l == nil {
		return false
	}
	_, ok := l.byGroup[strings.ToLower(strings.TrimSpace(group))]
	return ok
}

// Draw picks one value uniformly over the union of the selected groups.
// An empty selection or one containing "all" selects every group.
// Returns false when the selection holds no values.
func (l *Lexicon) Draw(rng *rand.Rand, groups []string) (string, bool) {
	keys := l.selected(groups)
	total := 0
	for _, key := range keys {
		total += len(l.byGroup[key])
	}
	if total == 0 {
		return "", false
	}

	idx := rng.IntN(total)
	for _, key := range keys {
		values := l.byGroup[key]
		if idx < len(values) {
			return values[idx], true
		}
		idx -= len(values)
	}
	return "", false
}

func (l *Lexicon) selected(groups []string) []string {
	if l == nil {
		return nil
	}
	if len(groups) == 0 {
		return l.order
	}
	seen := make(map[string]bool, len(groups))
	var keys []string
	for _, g := range groups {
		key := strings.ToLower(strings.TrimSpace(g))
		if key == AllGroups {
			return l.order
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := l.byGroup[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}
