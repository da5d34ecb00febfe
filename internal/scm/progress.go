package scm

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Stage is one phase of a remote operation as reported by the transport.
type Stage int

const (
	StageUnknown Stage = iota
	StageCounting
	StageCompressing
	StageWriting
	StageReceiving
	StageResolving
	StageFindingSources
	StageCheckingOut
)

var stageNames = map[Stage]string{
	StageUnknown:        "Unknown",
	StageCounting:       "Counting",
	StageCompressing:    "Compressing",
	StageWriting:        "Writing",
	StageReceiving:      "Receiving",
	StageResolving:      "Resolving",
	StageFindingSources: "Finding Sources",
	StageCheckingOut:    "Checking Out",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return stageNames[StageUnknown]
}

var stagePrefixes = []struct {
	prefix string
	stage  Stage
}{
	{"counting objects", StageCounting},
	{"compressing objects", StageCompressing},
	{"writing objects", StageWriting},
	{"receiving objects", StageReceiving},
	{"resolving deltas", StageResolving},
	{"finding sources", StageFindingSources},
	{"checking out files", StageCheckingOut},
	{"updating files", StageCheckingOut},
}

func stageFor(title string) Stage {
	title = strings.ToLower(strings.TrimSpace(title))
	for _, sp := range stagePrefixes {
		if strings.HasPrefix(title, sp.prefix) {
			return sp.stage
		}
	}
	return StageUnknown
}

// ProgressEvent is one parsed progress line.
type ProgressEvent struct {
	Stage   Stage
	Begin   bool
	End     bool
	Current int
	Max     int // zero when the transport gave no total
	Message string
}

// ProgressFunc receives progress events on the goroutine that writes to
// the ProgressParser.
type ProgressFunc func(ProgressEvent)

// "Receiving objects:  50% (5/10), 1.00 KiB | 1.00 MiB/s"
// "Counting objects: 12, done."
var progressLine = regexp.MustCompile(`^(?:remote:\s*)?([A-Za-z][A-Za-z ]*?):\s+(?:(\d+)%\s+\((\d+)/(\d+)\)|(\d+))(.*)$`)

// ProgressParser is an io.Writer for transport sideband output. It turns
// well-formed progress lines into ProgressEvents and keeps every other
// non-empty line so it can be reported if the operation fails.
type ProgressParser struct {
	fn ProgressFunc

	mu         sync.Mutex
	pending    []byte
	active     map[Stage]bool
	errorLines []string
}

func NewProgressParser(fn ProgressFunc) *ProgressParser {
	return &ProgressParser{
		fn:     fn,
		active: make(map[Stage]bool),
	}
}

// Write splits p into lines on either '\r' or '\n'. Partial lines are held
// until the terminator arrives or Flush is called.
func (p *ProgressParser) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.pending = append(p.pending, b...)
	var lines []string
	for {
		i := indexLineEnd(p.pending)
		if i < 0 {
			break
		}
		lines = append(lines, string(p.pending[:i]))
		p.pending = p.pending[i+1:]
	}
	p.mu.Unlock()

	for _, line := range lines {
		p.handleLine(line)
	}
	return len(b), nil
}

// Flush processes any buffered partial line.
func (p *ProgressParser) Flush() {
	p.mu.Lock()
	line := string(p.pending)
	p.pending = nil
	p.mu.Unlock()

	if line != "" {
		p.handleLine(line)
	}
}

// ErrorLines returns the lines that were not progress reports.
func (p *ProgressParser) ErrorLines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.errorLines))
	copy(out, p.errorLines)
	return out
}

func (p *ProgressParser) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	m := progressLine.FindStringSubmatch(line)
	if m == nil {
		p.mu.Lock()
		p.errorLines = append(p.errorLines, line)
		p.mu.Unlock()
		return
	}

	ev := ProgressEvent{Stage: stageFor(m[1])}
	if m[3] != "" {
		ev.Current, _ = strconv.Atoi(m[3])
		ev.Max, _ = strconv.Atoi(m[4])
	} else {
		ev.Current, _ = strconv.Atoi(m[5])
	}

	rest := strings.TrimSpace(m[6])
	if strings.HasSuffix(rest, "done.") {
		ev.End = true
		rest = strings.TrimSpace(strings.TrimSuffix(rest, "done."))
	}
	ev.Message = strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(rest, ","), ","))

	p.mu.Lock()
	if !p.active[ev.Stage] {
		ev.Begin = true
		p.active[ev.Stage] = true
	}
	if ev.End {
		delete(p.active, ev.Stage)
	}
	p.mu.Unlock()

	if p.fn != nil {
		p.fn(ev)
	}
}

func indexLineEnd(b []byte) int {
	for i, c := range b {
		if c == '\r' || c == '\n' {
			return i
		}
	}
	return -1
}
