package yamlite

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

const byteOrderMark = "\uFEFF"

// lexer reads input one line at a time and classifies each line.
type lexer struct {
	r       *bufio.Reader
	lineNum int  // Number of the last line read (1-based).
	eof     bool // True once the reader is exhausted.
}

// newLexer creates a new lexer that reads from r.
func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r)}
}

// next returns the next classified line. It returns io.EOF once every line
// has been consumed; any other read error is returned unchanged.
func (l *lexer) next() (line, error) {
	raw, err := l.readLine()
	if err != nil {
		return line{}, err
	}

	return classify(l.lineNum, raw)
}

// readLine reads the next line without its terminator. A final line with
// no trailing newline is still returned.
func (l *lexer) readLine() (string, error) {
	if l.eof {
		return "", io.EOF
	}

	s, err := l.r.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return "", err
		}
		l.eof = true
		if s == "" {
			return "", io.EOF
		}
	}

	l.lineNum++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	if l.lineNum == 1 {
		s = strings.TrimPrefix(s, byteOrderMark)
	}

	return s, nil
}

// classify splits a raw line into indentation, key and value.
func classify(num int, raw string) (line, error) {
	ln := line{Num: num, Raw: raw}

	body := strings.TrimLeftFunc(raw, unicode.IsSpace)
	ln.Indent = raw[:len(raw)-len(body)]
	body = strings.TrimRightFunc(body, unicode.IsSpace)

	if body == "" {
		ln.Kind = lineBlank
		ln.Indent = ""
		return ln, nil
	}

	first := strings.IndexByte(body, ':')
	if first < 0 {
		return line{}, malformed(ln, "missing ':' separator")
	}
	last := strings.LastIndexByte(body, ':')

	ln.Key = strings.TrimSpace(body[:first])
	if ln.Key == "" {
		return line{}, malformed(ln, "empty key")
	}

	if last == len(body)-1 {
		// "a:b:" is rejected rather than opening a mapping named "a:b";
		// keys never contain ':'.
		if first != last {
			return line{}, malformed(ln, "no value after the last ':'")
		}
		ln.Kind = lineMappingOpen
		return ln, nil
	}

	ln.Kind = lineKeyValue
	ln.Value = strings.TrimSpace(body[last+1:])

	return ln, nil
}

func malformed(ln line, reason string) error {
	return &MalformedLineError{Line: ln.Num, Content: ln.Raw, Reason: reason}
}
