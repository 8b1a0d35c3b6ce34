package cmake

import (
	"strings"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/zerr"
)

// Command is one command invocation in a CMakeLists.txt.
type Command struct {
	// Name is lower cased; CMake command names are case insensitive.
	Name string
	Args []Argument
	Line int
}

// Argument is one command argument.
type Argument struct {
	Value  string
	Quoted bool
}

// Parse tokenizes CMake language source into command invocations. It does
// not evaluate anything: control flow, macros and generator expressions
// remain opaque arguments.
func Parse(src string) ([]Command, error) {
	l := &lexer{src: src, line: 1}
	var cmds []Command

	for {
		l.skipSpaceAndComments()
		if l.eof() {
			return cmds, nil
		}

		line := l.line
		name := l.identifier()
		if name == "" {
			return nil, l.errorf("expected command name")
		}

		l.skipSpaceAndComments()
		if l.eof() || l.peek() != '(' {
			return nil, l.errorf("expected '(' after " + name)
		}
		l.pos++

		args, err := l.arguments()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, Command{Name: strings.ToLower(name), Args: args, Line: line})
	}
}

type lexer struct {
	src  string
	pos  int
	line int
}

func (l *lexer) eof() bool  { return l.pos >= len(l.src) }
func (l *lexer) peek() byte { return l.src[l.pos] }

func (l *lexer) errorf(msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrParseFailed, msg), "line", l.line)
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for !l.eof() {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '#':
			l.comment()
		default:
			return
		}
	}
}

// comment consumes a line comment or a bracket comment #[[ ... ]].
func (l *lexer) comment() {
	l.pos++
	if level, ok := l.bracketOpen(); ok {
		l.bracketBody(level)
		return
	}
	for !l.eof() && l.peek() != '\n' {
		l.pos++
	}
}

func (l *lexer) identifier() string {
	start := l.pos
	for !l.eof() {
		c := l.peek()
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' && l.pos > start {
			l.pos++
			continue
		}
		break
	}
	return l.src[start:l.pos]
}

// arguments reads up to the closing parenthesis of the current command.
// Unquoted parentheses nest and are kept as part of the argument list.
func (l *lexer) arguments() ([]Argument, error) {
	var args []Argument
	depth := 0

	for {
		l.skipSpaceAndComments()
		if l.eof() {
			return nil, l.errorf("unterminated argument list")
		}

		switch c := l.peek(); c {
		case '(':
			depth++
			l.pos++
		case ')':
			l.pos++
			if depth == 0 {
				return args, nil
			}
			depth--
		case '"':
			v, err := l.quoted()
			if err != nil {
				return nil, err
			}
			args = append(args, Argument{Value: v, Quoted: true})
		case '[':
			if level, ok := l.bracketOpen(); ok {
				v, err := l.bracketBody(level)
				if err != nil {
					return nil, err
				}
				args = append(args, Argument{Value: v, Quoted: true})
				continue
			}
			args = append(args, Argument{Value: l.unquoted()})
		default:
			args = append(args, Argument{Value: l.unquoted()})
		}
	}
}

func (l *lexer) quoted() (string, error) {
	l.advance()
	var b strings.Builder
	for !l.eof() {
		c := l.advance()
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if l.eof() {
				return "", l.errorf("unterminated escape")
			}
			e := l.advance()
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\n':
				// line continuation
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", l.errorf("unterminated quoted argument")
}

func (l *lexer) unquoted() string {
	var b strings.Builder
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '(' || c == ')' || c == '#' || c == '"':
			return b.String()
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos++
			b.WriteByte(l.advance())
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return b.String()
}

// bracketOpen consumes "[", "=" * n, "[" and returns n when present.
func (l *lexer) bracketOpen() (int, bool) {
	if l.eof() || l.peek() != '[' {
		return 0, false
	}
	j := l.pos + 1
	for j < len(l.src) && l.src[j] == '=' {
		j++
	}
	if j >= len(l.src) || l.src[j] != '[' {
		return 0, false
	}
	level := j - l.pos - 1
	l.pos = j + 1
	return level, true
}

func (l *lexer) bracketBody(level int) (string, error) {
	closer := "]" + strings.Repeat("=", level) + "]"
	end := strings.Index(l.src[l.pos:], closer)
	if end < 0 {
		l.pos = len(l.src)
		return "", l.errorf("unterminated bracket")
	}
	body := l.src[l.pos : l.pos+end]
	l.line += strings.Count(body, "\n")
	l.pos += end + len(closer)
	// A newline directly after the opening bracket is not part of the content.
	body = strings.TrimPrefix(strings.TrimPrefix(body, "\r"), "\n")
	return body, nil
}
