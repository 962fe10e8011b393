package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Node is a parsed expression.
type Node interface {
	eval(env Env) (Value, error)
	String() string
}

type numberNode struct {
	value float64
}

type identNode struct {
	name string
}

type binaryNode struct {
	op          string
	left, right Node
}

type memberNode struct {
	collection string
	item       string
}

func (n numberNode) String() string { return FormatNumber(n.value) }
func (n identNode) String() string  { return n.name }
func (n binaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}
func (n memberNode) String() string {
	return fmt.Sprintf("(%s & %s)", n.collection, n.item)
}

// Program is a parsed expression bound to its source text.
type Program struct {
	src  string
	root Node
}

// Source returns the expression text the program was parsed from.
func (p *Program) Source() string {
	return p.src
}

// Root returns the parsed syntax tree.
func (p *Program) Root() Node {
	return p.root
}

// cache holds programs by source text; effect data is static so every
// expression is parsed at most once per process.
var cache sync.Map

// Compile parses src, reusing a previously parsed program when available.
func Compile(src string) (*Program, error) {
	if cached, ok := cache.Load(src); ok {
		return cached.(*Program), nil
	}
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	program := &Program{src: src, root: root}
	actual, _ := cache.LoadOrStore(src, program)
	return actual.(*Program), nil
}

// Parse builds the syntax tree for src without consulting the cache.
func Parse(src string) (Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	root, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, invalidExpression(src, fmt.Sprintf("unexpected %q at offset %d", tok.Text, tok.Pos))
	}
	return root, nil
}

type parser struct {
	src    string
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) peekOperator(ops ...string) (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.Kind != TokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) comparison() (Node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	tok, ok := p.peek()
	if !ok || tok.Kind != TokenOperator || !comparisonOperators[tok.Text] {
		return left, nil
	}
	p.pos++

	if tok.Text == "&" {
		ident, isIdent := left.(identNode)
		if !isIdent {
			return nil, invalidExpression(p.src, "left side of & must name a collection")
		}
		item, ok := p.peek()
		if !ok || item.Kind != TokenOperand {
			return nil, invalidExpression(p.src, "missing right side of &")
		}
		p.pos++
		return memberNode{collection: ident.name, item: normalizeLiteral(item.Text)}, nil
	}

	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: tok.Text, left: left, right: right}, nil
}

func (p *parser) additive() (Node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("+", "-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) multiplicative() (Node, error) {
	left, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("*", "/", "%")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.atom()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) atom() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, invalidExpression(p.src, "unexpected end of expression")
	}
	if tok.Kind != TokenOperand {
		return nil, invalidExpression(p.src, fmt.Sprintf("unexpected operator %q at offset %d", tok.Text, tok.Pos))
	}
	p.pos++
	if v, err := strconv.ParseFloat(tok.Text, 64); err == nil {
		return numberNode{value: v}, nil
	}
	if !identifierPattern.MatchString(tok.Text) {
		return nil, invalidExpression(p.src, fmt.Sprintf("malformed operand %q", tok.Text))
	}
	return identNode{name: tok.Text}, nil
}

func normalizeLiteral(text string) string {
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return FormatNumber(v)
	}
	return text
}
