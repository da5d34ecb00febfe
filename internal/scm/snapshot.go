package scm

import "sort"

// Snapshot maps every blob path of a tree to its content id.
type Snapshot map[string]string

// Rename pairs a path with the name it had in the older snapshot.
type Rename struct {
	Path    string
	OldPath string
}

// ChangeSet is the difference between two snapshots.
type ChangeSet struct {
	Added    []string
	Deleted  []string
	Renamed  []Rename
	Modified []string
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Deleted) == 0 && len(c.Renamed) == 0 && len(c.Modified) == 0
}

// CompareSnapshots classifies the paths of newer relative to older. Added
// paths whose content id matches a deleted path are reported as renames.
// A nil older snapshot reports every path of newer as added.
func CompareSnapshots(older, newer Snapshot) ChangeSet {
	added := make(map[string]bool)
	deleted := make(map[string]bool)
	for name := range newer {
		if _, ok := older[name]; !ok {
			added[name] = true
		}
	}
	for name := range older {
		if _, ok := newer[name]; !ok {
			deleted[name] = true
		}
	}

	var renamed []Rename
	if len(added) > 0 && len(deleted) > 0 {
		oldIDToName := make(map[string]string, len(deleted))
		for _, name := range sortedKeys(deleted) {
			oldIDToName[older[name]] = name
		}

		for _, name := range sortedKeys(added) {
			oldName, ok := oldIDToName[newer[name]]
			if !ok || !deleted[oldName] {
				continue
			}
			// trees converted from other systems can list the same name
			// on both sides; such a pair says nothing about a rename
			if added[oldName] && deleted[oldName] {
				continue
			}
			delete(added, name)
			delete(deleted, oldName)
			delete(oldIDToName, newer[name])
			renamed = append(renamed, Rename{Path: name, OldPath: oldName})
		}
	}

	var modified []string
	for name, id := range newer {
		if oldID, ok := older[name]; ok && oldID != id {
			modified = append(modified, name)
		}
	}
	sort.Strings(modified)

	return ChangeSet{
		Added:    sortedKeys(added),
		Deleted:  sortedKeys(deleted),
		Renamed:  renamed,
		Modified: modified,
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
