package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/flatrec/internal/git"
	"github.com/matsen/flatrec/internal/schema"
)

// Change is an entity present on both sides of a diff with different values.
type Change struct {
	Header string         `json:"header"`
	Before *schema.Entity `json:"-"`
	After  *schema.Entity `json:"-"`
	Fields []string       `json:"fields"` // Names of the fields that differ
}

// Diff lists the entities added, removed and changed between two versions
// of a data file. Each list is sorted by header value.
type Diff struct {
	Added   []*schema.Entity
	Removed []*schema.Entity
	Changed []Change
}

// Empty reports whether the two versions hold the same entities.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// decodeAll decodes every line, keyed by header value.
func decodeAll(sch *schema.Schema, all []string, side string) (map[string]*schema.Entity, error) {
	out := make(map[string]*schema.Entity, len(all))
	for i, line := range all {
		e, err := sch.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", side, i+1, err)
		}
		out[e.Header()] = e
	}
	return out, nil
}

// DiffEntities compares two versions of a data file given as lines.
func DiffEntities(sch *schema.Schema, before, after []string) (*Diff, error) {
	old, err := decodeAll(sch, before, "old")
	if err != nil {
		return nil, err
	}
	current, err := decodeAll(sch, after, "new")
	if err != nil {
		return nil, err
	}

	d := &Diff{}
	for header, e := range current {
		prev, ok := old[header]
		if !ok {
			d.Added = append(d.Added, e)
			continue
		}
		if fields := changedFields(prev, e); len(fields) > 0 {
			d.Changed = append(d.Changed, Change{Header: header, Before: prev, After: e, Fields: fields})
		}
	}
	for header, e := range old {
		if _, ok := current[header]; !ok {
			d.Removed = append(d.Removed, e)
		}
	}

	sortEntities(d.Added)
	sortEntities(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Header < d.Changed[j].Header })
	return d, nil
}

func changedFields(before, after *schema.Entity) []string {
	var fields []string
	for _, ef := range after.Fields() {
		if before.Value(ef.Name()) != ef.Value() {
			fields = append(fields, ef.Name())
		}
	}
	return fields
}

func sortEntities(entities []*schema.Entity) {
	sort.Slice(entities, func(i, j int) bool { return entities[i].Header() < entities[j].Header() })
}

// DiffSince compares the data file in the working tree with its version at
// a git commit. The data file must be tracked by git.
func (s *Store) DiffSince(commitRef string) (*Diff, error) {
	gitRoot, err := git.FindRepoRoot(s.Dir)
	if err != nil {
		return nil, err
	}
	rel, err := git.RelPath(gitRoot, s.dataPath)
	if err != nil {
		return nil, err
	}
	if !git.IsFileTracked(gitRoot, rel) {
		return nil, fmt.Errorf("%w: %s", git.ErrFileNotTracked, rel)
	}

	data, err := git.FileAtCommit(gitRoot, rel, commitRef)
	if err != nil {
		return nil, err
	}
	var before []string
	if text := strings.TrimSuffix(string(data), "\n"); text != "" {
		before = strings.Split(text, "\n")
	}

	after, err := s.file.Lines()
	if err != nil {
		return nil, err
	}
	return DiffEntities(s.Schema, before, after)
}
