package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressParser(t *testing.T) {
	var events []ProgressEvent
	p := NewProgressParser(func(ev ProgressEvent) { events = append(events, ev) })

	input := "Counting objects:  50% (1/2)\rCounting objects: 100% (2/2), done.\n" +
		"Receiving objects:  50% (5/10), 1.00 KiB | 1.00 MiB/s\r" +
		"fatal: could not read from remote\n" +
		"Resolving deltas: 3"

	n, err := p.Write([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, len(input), n)

	// the last line has no terminator yet
	require.Len(t, events, 3)
	p.Flush()
	require.Len(t, events, 4)

	assert.Equal(t, ProgressEvent{Stage: StageCounting, Begin: true, Current: 1, Max: 2}, events[0])
	assert.Equal(t, ProgressEvent{Stage: StageCounting, End: true, Current: 2, Max: 2}, events[1])
	assert.Equal(t, ProgressEvent{Stage: StageReceiving, Begin: true, Current: 5, Max: 10, Message: "1.00 KiB | 1.00 MiB/s"}, events[2])
	assert.Equal(t, ProgressEvent{Stage: StageResolving, Begin: true, Current: 3}, events[3])

	assert.Equal(t, []string{"fatal: could not read from remote"}, p.ErrorLines())
}

func TestProgressParserSplitWrites(t *testing.T) {
	var events []ProgressEvent
	p := NewProgressParser(func(ev ProgressEvent) { events = append(events, ev) })

	_, _ = p.Write([]byte("remote: Compressing obj"))
	assert.Empty(t, events)
	_, _ = p.Write([]byte("ects: 100% (4/4), done.\n"))

	require.Len(t, events, 1)
	assert.Equal(t, StageCompressing, events[0].Stage)
	assert.True(t, events[0].Begin)
	assert.True(t, events[0].End)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "Finding Sources", StageFindingSources.String())
	assert.Equal(t, "Checking Out", StageCheckingOut.String())
	assert.Equal(t, "Unknown", Stage(99).String())
	assert.Equal(t, StageUnknown, stageFor("Enumerating objects"))
}
