// Package state holds the status model of a working tree: per-file
// classification, the reconciliation pass that builds it, the folder
// tree projections and commit change logs.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/scm"
)

// ErrNoBlob is returned when a revision of a file was never captured.
var ErrNoBlob = errors.New("no blob for this revision of the file")

// Abbreviations used for staged and unstaged status.
const (
	AbbrevNone     = ""
	AbbrevAdded    = "A"
	AbbrevModified = "M"
	AbbrevDeleted  = "D"
	AbbrevRenamed  = "R"
)

// RawFacts is everything a reconciliation pass learned about one path.
type RawFacts struct {
	IsDir      bool
	IndexEntry *scm.IndexEntry
	Staged     *scm.DiffRecord
	Unstaged   *scm.DiffRecord
	Untracked  bool
}

// Derived is the classification computed from RawFacts.
type Derived struct {
	StagedAbbrev       string
	UnstagedAbbrev     string
	StagedIsModified   bool
	UnstagedIsModified bool
	HeadBlobID         string
	StagedBlobID       string
}

// Classify derives the status of a path from its raw facts.
//
// The staged record compares the index (A) against HEAD (B), so a path
// missing from HEAD shows up as a deleted file and is reported as "A",
// and a path missing from the index is reported as "D".
func Classify(raw RawFacts) Derived {
	var d Derived

	if s := raw.Staged; s != nil {
		switch {
		case s.Renamed:
			d.StagedAbbrev = AbbrevRenamed
		case s.DeletedFile:
			d.StagedAbbrev = AbbrevAdded
		case s.NewFile:
			d.StagedAbbrev = AbbrevDeleted
		default:
			d.StagedAbbrev = AbbrevModified
			d.StagedIsModified = true
			d.HeadBlobID = s.BID
			d.StagedBlobID = s.AID
		}
	}

	if u := raw.Unstaged; u != nil {
		switch {
		case u.DeletedFile:
			d.UnstagedAbbrev = AbbrevDeleted
		case u.NewFile:
			d.UnstagedAbbrev = AbbrevAdded
		default:
			d.UnstagedAbbrev = AbbrevModified
			d.UnstagedIsModified = true
			if d.HeadBlobID == "" {
				d.HeadBlobID = u.AID
			}
		}
	}

	return d
}

// FileState is the immutable status of one repository-relative path.
type FileState struct {
	path    string
	raw     RawFacts
	derived Derived
}

// NewFileState classifies raw once; the result never changes.
func NewFileState(path string, raw RawFacts) *FileState {
	return &FileState{path: path, raw: raw, derived: Classify(raw)}
}

func (f *FileState) String() string {
	return fmt.Sprintf("<FileState %s S=%q U=%q>", f.path, f.derived.StagedAbbrev, f.derived.UnstagedAbbrev)
}

// Path is the repository-relative path with forward slashes.
func (f *FileState) Path() string { return f.path }

// IsDir reports an untracked directory entry.
func (f *FileState) IsDir() bool { return f.raw.IsDir }

// Raw returns the facts the state was classified from.
func (f *FileState) Raw() RawFacts { return f.raw }

// Derived returns the classification.
func (f *FileState) Derived() Derived { return f.derived }

// HeadBlobID is the blob at HEAD, "" when the file is new.
func (f *FileState) HeadBlobID() string { return f.derived.HeadBlobID }

// StagedBlobID is the blob in the index for a staged modification.
func (f *FileState) StagedBlobID() string { return f.derived.StagedBlobID }

// StagedAbbrev is one of the Abbrev constants for HEAD against the index.
func (f *FileState) StagedAbbrev() string { return f.derived.StagedAbbrev }

// UnstagedAbbrev is one of the Abbrev constants for the index against the
// working tree.
func (f *FileState) UnstagedAbbrev() string { return f.derived.UnstagedAbbrev }

func (f *FileState) stagedRename() bool {
	return f.raw.Staged != nil && f.raw.Staged.Renamed
}

// RenamedFrom is the previous name of a staged rename, "" otherwise.
func (f *FileState) RenamedFrom() string {
	if !f.IsStagedRenamed() {
		return ""
	}
	return f.raw.Staged.RenameFrom
}

// IsControlled holds for paths in the index or staged as a rename target.
func (f *FileState) IsControlled() bool {
	return f.stagedRename() || f.raw.IndexEntry != nil
}

// IsUncontrolled holds for untracked paths.
func (f *FileState) IsUncontrolled() bool {
	return f.raw.Untracked
}

// IsIgnored holds for paths the backend neither tracks nor reports as
// untracked.
func (f *FileState) IsIgnored() bool {
	return !f.stagedRename() && f.raw.IndexEntry == nil && !f.raw.Untracked
}

// Staged predicates, one per abbreviation.
func (f *FileState) IsStagedNew() bool      { return f.derived.StagedAbbrev == AbbrevAdded }
func (f *FileState) IsStagedModified() bool { return f.derived.StagedAbbrev == AbbrevModified }
func (f *FileState) IsStagedDeleted() bool  { return f.derived.StagedAbbrev == AbbrevDeleted }
func (f *FileState) IsStagedRenamed() bool  { return f.derived.StagedAbbrev == AbbrevRenamed }

// Unstaged predicates.
func (f *FileState) IsUnstagedModified() bool { return f.derived.UnstagedAbbrev == AbbrevModified }
func (f *FileState) IsUnstagedDeleted() bool  { return f.derived.UnstagedAbbrev == AbbrevDeleted }

// CanStage holds when add would change the index.
func (f *FileState) CanStage() bool {
	return f.derived.UnstagedAbbrev != AbbrevNone || f.raw.Untracked
}

// CanUnstage holds when the index differs from HEAD.
func (f *FileState) CanUnstage() bool {
	return f.derived.StagedAbbrev != AbbrevNone
}

// CanRevert holds when either the index or the working copy differs.
func (f *FileState) CanRevert() bool {
	return f.derived.UnstagedAbbrev != AbbrevNone || f.derived.StagedAbbrev != AbbrevNone
}

// CanDiffHeadVsStaged holds for a staged modification.
func (f *FileState) CanDiffHeadVsStaged() bool {
	return f.derived.StagedIsModified
}

// CanDiffStagedVsWorking holds when the file is modified both in the index
// and in the working tree.
func (f *FileState) CanDiffStagedVsWorking() bool {
	return f.derived.UnstagedIsModified && f.derived.StagedIsModified
}

// CanDiffHeadVsWorking holds for an unstaged modification.
func (f *FileState) CanDiffHeadVsWorking() bool {
	return f.derived.UnstagedIsModified
}

// ContentReader is the part of the backend the line accessors need.
type ContentReader interface {
	ReadBlob(id string) ([]byte, error)
	ReadWorkingFile(path string) ([]byte, error)
	ReadAtRevision(rev, path string) ([]byte, error)
}

// TextLinesWorking reads the working copy.
func (f *FileState) TextLinesWorking(r ContentReader) ([]string, error) {
	data, err := r.ReadWorkingFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return splitLines(data), nil
}

// TextLinesHead reads the HEAD blob. It fails with ErrNoBlob when the
// classification did not capture one.
func (f *FileState) TextLinesHead(r ContentReader) ([]string, error) {
	return f.blobLines(r, f.derived.HeadBlobID)
}

// TextLinesStaged reads the staged blob, or fails with ErrNoBlob.
func (f *FileState) TextLinesStaged(r ContentReader) ([]string, error) {
	return f.blobLines(r, f.derived.StagedBlobID)
}

// TextLinesForCommit reads the file as of commitID.
func (f *FileState) TextLinesForCommit(r ContentReader, commitID string) ([]string, error) {
	data, err := r.ReadAtRevision(commitID, f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", f.path, commitID, err)
	}
	return splitLines(data), nil
}

func (f *FileState) blobLines(r ContentReader, id string) ([]string, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: %w", f.path, ErrNoBlob)
	}
	data, err := r.ReadBlob(id)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return splitLines(data), nil
}

// splitLines splits on "\n" and drops the empty string after a final
// newline.
func splitLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
