package logparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collect(t *testing.T, path string, offset int64) []Record {
	t.Helper()
	scanner, err := NewScanner(path, offset)
	require.NoError(t, err)
	defer scanner.Close()

	var records []Record
	for scanner.Scan() {
		records = append(records, scanner.Record())
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestScanner_FullFile(t *testing.T) {
	path := writeLog(t, "first\nsecond\nthird\n")
	records := collect(t, path, 0)

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Text)
	assert.Equal(t, int64(0), records[0].ByteOffset)
	assert.Equal(t, 1, records[0].LineNumber)
	assert.Equal(t, "second", records[1].Text)
	assert.Equal(t, int64(6), records[1].ByteOffset)
	assert.Equal(t, 2, records[1].LineNumber)
	assert.Equal(t, "third", records[2].Text)
	assert.Equal(t, 3, records[2].LineNumber)
}

func TestScanner_EmptyFile(t *testing.T) {
	path := writeLog(t, "")
	assert.Empty(t, collect(t, path, 0))
}

func TestScanner_ResumeAtBoundary(t *testing.T) {
	path := writeLog(t, "first\nsecond\n")
	boundary := int64(len("first\n"))

	records := collect(t, path, boundary)
	require.Len(t, records, 1)
	assert.Equal(t, "second", records[0].Text)
	assert.Equal(t, boundary, records[0].ByteOffset)
	// Numbering is relative to the file start, not the resume point.
	assert.Equal(t, 2, records[0].LineNumber)
}

func TestScanner_ResumeMidLine(t *testing.T) {
	path := writeLog(t, "first\nsecond\nthird\n")

	// Offset inside "second": the fragment is discarded and scanning
	// resumes at "third".
	records := collect(t, path, int64(len("first\nsec")))
	require.Len(t, records, 1)
	assert.Equal(t, "third", records[0].Text)
	assert.Equal(t, 3, records[0].LineNumber)
}

func TestScanner_ResumeAfterAppend(t *testing.T) {
	path := writeLog(t, "first\nsecond\n")
	oldSize := int64(len("first\nsecond\n"))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("third\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Resuming from the previous end of file yields exactly the
	// appended record, nothing double-counted or skipped.
	records := collect(t, path, oldSize)
	require.Len(t, records, 1)
	assert.Equal(t, "third", records[0].Text)
	assert.Equal(t, 3, records[0].LineNumber)
}

func TestScanner_SplitRunEqualsFullRun(t *testing.T) {
	content := "alpha\nbravo\ncharlie\ndelta\n"
	path := writeLog(t, content)
	full := collect(t, path, 0)

	split := int64(len("alpha\nbravo\n"))
	first := collect(t, path, 0)
	// Simulate the first run having stopped at the boundary.
	first = first[:2]
	second := collect(t, path, split)

	assert.Equal(t, full, append(first, second...))
}

func TestScanner_OffsetBeyondEOF(t *testing.T) {
	path := writeLog(t, "first\n")
	assert.Empty(t, collect(t, path, 1000))
}

func TestScanner_FinalLineWithoutNewline(t *testing.T) {
	path := writeLog(t, "first\nsecond")
	records := collect(t, path, 0)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[1].Text)
}

func TestScanner_InvalidUTF8Substituted(t *testing.T) {
	path := writeLog(t, "ok\n\xff\xfebad\nalso ok\n")
	records := collect(t, path, 0)
	require.Len(t, records, 3)
	assert.Contains(t, records[1].Text, "�")
	assert.Equal(t, "also ok", records[2].Text)
}

func TestScanner_MissingFile(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "absent.jsonl"), 0)
	assert.Error(t, err)
}
