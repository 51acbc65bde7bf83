package excel

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"
)

// LineReader yields plain-text lines without their terminators
type LineReader struct {
	sc     *bufio.Scanner
	line   int
	offset int64
	next   int64
}

// NewLineReader reads content line by line. "\n" separates lines; a
// trailing "\r" is stripped.
func NewLineReader(content []byte, cfg Config) *LineReader {
	var base int64
	if bytes.HasPrefix(content, utf8BOM) {
		content = content[len(utf8BOM):]
		base = int64(len(utf8BOM))
	}
	sc := bufio.NewScanner(bytes.NewReader(content))
	max := cfg.MaxLineBytes
	if max <= 0 {
		max = DefaultConfig().MaxLineBytes
	}
	sc.Buffer(make([]byte, 0, 64*1024), max)
	sc.Split(scanRawLines)
	return &LineReader{sc: sc, next: base}
}

// Next returns the next line
func (l *LineReader) Next() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", apperrors.ParseError(string(dataset.FileTypePlainText), apperrors.Locator{Row: l.line + 1, Offset: l.next}, err)
		}
		return "", io.EOF
	}
	raw := l.sc.Bytes()
	l.line++
	l.offset = l.next
	l.next += int64(len(raw)) + 1
	if !utf8.Valid(raw) {
		bad := firstInvalidUTF8(raw)
		return "", apperrors.ParseError(string(dataset.FileTypePlainText), apperrors.Locator{
			Row:    l.line,
			Column: bad + 1,
			Offset: l.offset + int64(bad),
		}, fmt.Errorf("invalid UTF-8"))
	}
	return strings.TrimSuffix(string(raw), "\r"), nil
}

// Locate reports the 1-based line number and start offset of the last line
func (l *LineReader) Locate() apperrors.Locator {
	return apperrors.Locator{Row: l.line, Offset: l.offset}
}

// ReadLines drains the reader
func ReadLines(content []byte, cfg Config) ([]string, error) {
	lr := NewLineReader(content, cfg)
	lines := []string{}
	for {
		line, err := lr.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// scanRawLines splits on "\n" only and keeps any "\r" so offsets stay exact
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
