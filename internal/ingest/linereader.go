// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ingest

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultMaxLineLength bounds a single record.
const DefaultMaxLineLength = 4096

// LineReader turns the chunked byte stream of a socket or UART into
// newline-delimited records. A record may arrive split over several reads,
// and one read may carry several records.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r. Lines longer than maxLen bytes are reported as
// ErrLineTooLong.
func NewLineReader(r io.Reader, maxLen int) *LineReader {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	return &LineReader{r: bufio.NewReaderSize(r, maxLen)}
}

// ReadLine returns the next record without its line terminator. A final
// record not followed by a newline is returned before io.EOF.
func (lr *LineReader) ReadLine() (string, error) {
	data, err := lr.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = lr.r.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err != nil {
		if errors.Is(err, io.EOF) && len(data) > 0 {
			return clean(data), nil
		}
		return "", err
	}
	return clean(data), nil
}

func clean(data []byte) string {
	s := strings.TrimRight(string(data), "\r\n")
	return strings.ToValidUTF8(s, "�")
}
