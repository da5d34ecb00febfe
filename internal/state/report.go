package state

// Report labels.
const (
	LabelNewFile  = "New file"
	LabelModified = "Modified"
	LabelDeleted  = "Deleted"
	LabelRenamed  = "Renamed"
)

// ReportEntry is one line of a status report.
type ReportEntry struct {
	Label   string
	Path    string
	OldPath string // renames only
}

// ReportStaged lists the staged changes in path order.
func ReportStaged(files StatusMap) []ReportEntry {
	var out []ReportEntry
	for _, p := range files.Paths() {
		fs := files[p]
		switch {
		case fs.IsStagedNew():
			out = append(out, ReportEntry{Label: LabelNewFile, Path: p})
		case fs.IsStagedModified():
			out = append(out, ReportEntry{Label: LabelModified, Path: p})
		case fs.IsStagedDeleted():
			out = append(out, ReportEntry{Label: LabelDeleted, Path: p})
		case fs.IsStagedRenamed():
			out = append(out, ReportEntry{Label: LabelRenamed, Path: p, OldPath: fs.RenamedFrom()})
		}
	}
	return out
}

// ReportUntracked lists untracked files and unstaged changes in path order.
func ReportUntracked(files StatusMap) []ReportEntry {
	var out []ReportEntry
	for _, p := range files.Paths() {
		fs := files[p]
		switch {
		case fs.IsUncontrolled():
			out = append(out, ReportEntry{Label: LabelNewFile, Path: p})
		case fs.IsUnstagedModified():
			out = append(out, ReportEntry{Label: LabelModified, Path: p})
		case fs.IsUnstagedDeleted():
			out = append(out, ReportEntry{Label: LabelDeleted, Path: p})
		}
	}
	return out
}
