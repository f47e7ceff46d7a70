package logparse

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// Record is one physical line of a log file. It is ephemeral and
// consumed immediately by Extract; it is never persisted.
type Record struct {
	ByteOffset int64  // offset of the line start within the file
	LineNumber int    // 1-based, counted from the start of the file
	Text       string // decoded line without the trailing newline
}

// Scanner produces a lazy, finite, non-restartable sequence of Records
// from a log file, starting at a byte offset.
//
// When the starting offset is non-zero and does not fall on a line
// boundary, the partial trailing fragment at the start point is
// discarded by advancing to the next newline before the first record is
// emitted. Invalid byte sequences are replaced with the Unicode
// replacement character rather than aborting the scan.
type Scanner struct {
	file       *os.File
	reader     *bufio.Reader
	offset     int64
	lineNumber int
	rec        Record
	err        error
	done       bool
}

// NewScanner opens the log file at path and positions the scan at
// startOffset. Pass 0 to scan the whole file.
func NewScanner(path string, startOffset int64) (*Scanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	s := &Scanner{file: file}

	if startOffset > 0 {
		if err := s.resume(startOffset); err != nil {
			file.Close()
			return nil, err
		}
	} else {
		s.reader = bufio.NewReader(file)
	}

	return s, nil
}

// resume counts the lines preceding startOffset so numbering stays
// relative to the file start, then positions the reader at the next
// clean line boundary at or after startOffset.
func (s *Scanner) resume(startOffset int64) error {
	prefix := io.LimitReader(s.file, startOffset)
	counter := bufio.NewReader(prefix)

	var consumed int64
	onBoundary := true
	for {
		chunk, err := counter.ReadBytes('\n')
		consumed += int64(len(chunk))
		if err == nil {
			s.lineNumber++
			onBoundary = true
		} else if err == io.EOF {
			if len(chunk) > 0 {
				onBoundary = false
			}
			break
		} else {
			return err
		}
	}

	if consumed < startOffset {
		// Offset lies beyond the current end of file, likely a
		// truncated log. Nothing to scan.
		s.done = true
		return nil
	}

	if _, err := s.file.Seek(startOffset, io.SeekStart); err != nil {
		return err
	}
	s.offset = startOffset
	s.reader = bufio.NewReader(s.file)

	if !onBoundary {
		// Discard the partial fragment up to the next boundary.
		fragment, err := s.reader.ReadBytes('\n')
		s.offset += int64(len(fragment))
		s.lineNumber++
		if err == io.EOF {
			s.done = true
		} else if err != nil {
			return err
		}
	}

	return nil
}

// Scan advances to the next line. It returns false when no more
// boundary-delimited data remains or an error occurred; Err
// distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	line, err := s.reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.err = err
		return false
	}
	if err == io.EOF {
		s.done = true
		if len(line) == 0 {
			return false
		}
	}

	start := s.offset
	s.offset += int64(len(line))
	s.lineNumber++

	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	s.rec = Record{
		ByteOffset: start,
		LineNumber: s.lineNumber,
		Text:       strings.ToValidUTF8(string(line), "�"),
	}
	return true
}

// Record returns the line produced by the last successful Scan.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first error encountered during scanning.
// Reaching end of input is not an error.
func (s *Scanner) Err() error {
	return s.err
}

// Close releases the underlying file handle.
func (s *Scanner) Close() error {
	return s.file.Close()
}
