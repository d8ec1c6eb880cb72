package qmf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrOptionSyntax wraps every option-string parse failure.
var ErrOptionSyntax = errors.New("qmf: option syntax")

// Options holds a parsed qpid option map such as "{strict-security:False}".
type Options map[string]interface{}

// ParseOptions parses a qpid map literal. Blank input yields an empty map and
// the surrounding braces may be omitted.
func ParseOptions(text string) (Options, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Options{}, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		trimmed = "{" + trimmed + "}"
	}
	v, err := parseLiteral(trimmed)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected a map", ErrOptionSyntax)
	}
	return Options(m), nil
}

// String returns the option as text, or fallback when absent.
func (o Options) String(key, fallback string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return fallback
	}
	return FormatValue(v)
}

// Bool returns the option as a boolean, or fallback when absent or not a
// boolean.
func (o Options) Bool(key string, fallback bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// Int returns the option as an integer, or fallback when absent or not
// numeric.
func (o Options) Int(key string, fallback int64) int64 {
	switch v := o[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseLiteral parses a single map, list or scalar literal and rejects
// trailing input.
func parseLiteral(text string) (interface{}, error) {
	p := &literalParser{src: []rune(text)}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", string(p.src[p.pos]))
	}
	return v, nil
}

type literalParser struct {
	src []rune
	pos int
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrOptionSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) expect(r rune) error {
	p.skipSpace()
	if p.peek() != r {
		if p.eof() {
			return p.errorf("expected %q, got end of input", string(r))
		}
		return p.errorf("expected %q, got %q", string(r), string(p.peek()))
	}
	p.pos++
	return nil
}

func (p *literalParser) value() (interface{}, error) {
	p.skipSpace()
	switch r := p.peek(); {
	case p.eof():
		return nil, p.errorf("unexpected end of input")
	case r == '{':
		return p.mapLiteral()
	case r == '[':
		return p.listLiteral()
	case r == '\'' || r == '"':
		return p.quoted()
	default:
		word := p.word()
		if word == "" {
			return nil, p.errorf("unexpected %q", string(r))
		}
		return scalar(word), nil
	}
}

func (p *literalParser) mapLiteral() (interface{}, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		var key string
		if r := p.peek(); r == '\'' || r == '"' {
			k, err := p.quoted()
			if err != nil {
				return nil, err
			}
			key = k
		} else {
			key = p.word()
		}
		if key == "" {
			return nil, p.errorf("expected key")
		}
		p.skipSpace()
		if r := p.peek(); r != ':' && r != '=' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *literalParser) listLiteral() (interface{}, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	out := []interface{}{}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *literalParser) quoted() (string, error) {
	quote := p.peek()
	p.pos++
	var b strings.Builder
	for !p.eof() {
		r := p.src[p.pos]
		p.pos++
		switch {
		case r == '\\' && !p.eof():
			b.WriteRune(p.src[p.pos])
			p.pos++
		case r == quote:
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) word() string {
	start := p.pos
	for !p.eof() {
		r := p.src[p.pos]
		if unicode.IsSpace(r) || strings.ContainsRune(",:={}[]'\"", r) {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func scalar(word string) interface{} {
	switch strings.ToLower(word) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return f
	}
	return word
}
