package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a token that is not an integer.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid integer %q", e.Line, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// maxLine bounds a single input line; single-line datasets with 100k values fit easily.
const maxLine = 64 << 20

// ReadFile loads a dataset, decompressing by extension.
func ReadFile(path string) ([]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	codec := CodecFor(path)
	data, err := codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	seq, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}

// Parse reads integers separated by any mix of whitespace, commas and semicolons.
// Text after '#' on a line is ignored. Empty input yields an empty sequence.
func Parse(r io.Reader) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	seq := make([]int, 0, 1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, tok := range strings.FieldsFunc(text, isSeparator) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &ParseError{Line: line, Token: tok, Err: err}
			}
			seq = append(seq, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}
