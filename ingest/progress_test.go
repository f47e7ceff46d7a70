package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 10, 5)

	tracker.Start()
	tracker.Increment(5)
	assert.Contains(t, buf.String(), "5/10")
	assert.Contains(t, buf.String(), "50.0%")
	assert.Contains(t, buf.String(), "files/s")
}

func TestProgressTracker_BelowIntervalIsSilent(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 10, 5)

	tracker.Start()
	tracker.Increment(2)
	assert.Empty(t, buf.String())
}

func TestProgressTracker_FinishCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 3, 100)

	tracker.Start()
	tracker.Increment(99)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "3/3")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTracker_NotStartedIsInert(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "files", 10, 1)

	tracker.Increment(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}
