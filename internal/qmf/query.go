package qmf

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrFilterSyntax wraps every agent-filter parse failure.
var ErrFilterSyntax = errors.New("qmf: filter syntax")

// Predicate is a compiled QMF query predicate such as
// "[eq, _product, [quote, 'qpidd']]". Bare strings name attributes; literals
// are written as [quote, value] or as numbers and booleans.
type Predicate struct {
	expr string
	raw  []interface{}
	root node
}

// ParsePredicate compiles a predicate expression. A blank expression matches
// everything.
func ParsePredicate(expr string) (*Predicate, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return &Predicate{expr: trimmed, root: constNode(true)}, nil
	}
	v, err := parseLiteral(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilterSyntax, err)
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: predicate must be a list", ErrFilterSyntax)
	}
	root, err := compile(list)
	if err != nil {
		return nil, err
	}
	return &Predicate{expr: trimmed, raw: list, root: root}, nil
}

// MustParsePredicate is ParsePredicate for expressions known to be valid.
func MustParsePredicate(expr string) *Predicate {
	p, err := ParsePredicate(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// List returns the predicate in list form for the wire; nil for match-all.
func (p *Predicate) List() []interface{} {
	if p == nil {
		return nil
	}
	return p.raw
}

// Match evaluates the predicate against a set of attributes.
func (p *Predicate) Match(attrs Properties) bool {
	if p == nil || p.root == nil {
		return true
	}
	return p.root.eval(attrs)
}

type node interface {
	eval(Properties) bool
}

type constNode bool

func (c constNode) eval(Properties) bool { return bool(c) }

type existsNode string

func (e existsNode) eval(attrs Properties) bool {
	_, ok := attrs.Get(string(e))
	return ok
}

type logicNode struct {
	op   string
	args []node
}

func (l logicNode) eval(attrs Properties) bool {
	switch l.op {
	case "and":
		for _, a := range l.args {
			if !a.eval(attrs) {
				return false
			}
		}
		return true
	case "or":
		for _, a := range l.args {
			if a.eval(attrs) {
				return true
			}
		}
		return false
	case "not":
		return !l.args[0].eval(attrs)
	}
	return false
}

// operand is either an attribute reference or a literal.
type operand struct {
	name    string
	literal interface{}
	isName  bool
}

func (o operand) resolve(attrs Properties) (interface{}, bool) {
	if o.isName {
		return attrs.Get(o.name)
	}
	return o.literal, true
}

type compareNode struct {
	op  string
	lhs operand
	rhs operand
	re  *regexp.Regexp
}

func (c compareNode) eval(attrs Properties) bool {
	lhs, ok := c.lhs.resolve(attrs)
	if !ok {
		return false
	}
	if c.op == "re_match" {
		return c.re.MatchString(FormatValue(lhs))
	}
	rhs, ok := c.rhs.resolve(attrs)
	if !ok {
		return false
	}
	cmp, comparable := compareValues(lhs, rhs)
	if !comparable {
		return c.op == "ne"
	}
	switch c.op {
	case "eq":
		return cmp == 0
	case "ne":
		return cmp != 0
	case "lt":
		return cmp < 0
	case "le":
		return cmp <= 0
	case "gt":
		return cmp > 0
	case "ge":
		return cmp >= 0
	}
	return false
}

func compile(list []interface{}) (node, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty predicate", ErrFilterSyntax)
	}
	// the literal parser has already turned bare true/false into booleans
	if b, ok := list[0].(bool); ok && len(list) == 1 {
		return constNode(b), nil
	}
	op, ok := list[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: operator must be a word, got %v", ErrFilterSyntax, list[0])
	}
	op = strings.ToLower(op)
	args := list[1:]
	switch op {
	case "true":
		return constNode(true), nil
	case "false":
		return constNode(false), nil
	case "exists":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: exists takes one attribute name", ErrFilterSyntax)
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: exists needs an attribute name", ErrFilterSyntax)
		}
		return existsNode(name), nil
	case "and", "or", "not":
		if op == "not" && len(args) != 1 {
			return nil, fmt.Errorf("%w: not takes one predicate", ErrFilterSyntax)
		}
		nodes := make([]node, 0, len(args))
		for _, a := range args {
			sub, ok := a.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s operands must be predicates", ErrFilterSyntax, op)
			}
			n, err := compile(sub)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		return logicNode{op: op, args: nodes}, nil
	case "eq", "ne", "lt", "le", "gt", "ge", "re_match":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes two operands", ErrFilterSyntax, op)
		}
		lhs, err := compileOperand(args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := compileOperand(args[1])
		if err != nil {
			return nil, err
		}
		n := compareNode{op: op, lhs: lhs, rhs: rhs}
		if op == "re_match" {
			pattern, ok := rhs.literal.(string)
			if rhs.isName || !ok {
				return nil, fmt.Errorf("%w: re_match needs a quoted pattern", ErrFilterSyntax)
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrFilterSyntax, err)
			}
			n.re = re
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrFilterSyntax, op)
}

func compileOperand(v interface{}) (operand, error) {
	switch t := v.(type) {
	case string:
		return operand{name: t, isName: true}, nil
	case []interface{}:
		if len(t) == 2 {
			if word, ok := t[0].(string); ok && strings.EqualFold(word, "quote") {
				return operand{literal: t[1]}, nil
			}
		}
		return operand{}, fmt.Errorf("%w: nested operand must be [quote, value]", ErrFilterSyntax)
	default:
		return operand{literal: t}, nil
	}
}

func compareValues(a, b interface{}) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if ba == bb {
			return 0, true
		}
		return 1, true
	}
	sa, sb := FormatValue(a), FormatValue(b)
	return strings.Compare(sa, sb), true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
