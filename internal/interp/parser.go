package interp

import "fmt"

// AST nodes. The language is expression-oriented: a program is a list of
// statements and the value of the last one is the result of run().
type (
	nodeNumber struct{ val float64 }
	nodeString struct{ val string }
	nodeBool   struct{ val bool }
	nodeNull   struct{}

	nodeIdent struct {
		name string
		line int
	}

	nodeArrayLit struct{ elems []node }

	nodeObjectLit struct {
		keys []string
		vals []node
	}

	nodeUnary struct {
		op string
		x  node
	}

	nodeBinary struct {
		op       string
		lhs, rhs node
		line     int
	}

	nodeAssign struct {
		target node // nodeIdent, nodeMember or nodeIndex
		value  node
		line   int
	}

	nodeCall struct {
		callee node
		args   []node
		line   int
	}

	nodeMember struct {
		obj  node
		name string
		line int
	}

	nodeIndex struct {
		obj   node
		index node
		line  int
	}

	nodeNew struct {
		class string
		args  []node
		line  int
	}

	nodeVar struct {
		name string
		init node
	}
)

type node any

type parser struct {
	lx  *lexer
	tok token
}

func parse(src string) ([]node, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var stmts []node
	for p.tok.kind != tokEOF {
		// Stray separators between statements are fine.
		if p.isPunct(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.isPunct(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return stmts, nil
}

func (p *parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return fmt.Errorf("line %d: expected %q", p.tok.line, s)
	}
	return p.advance()
}

func (p *parser) statement() (node, error) {
	if p.tok.kind == tokIdent && p.tok.text == "var" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected name after var", p.tok.line)
		}
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		var init node = nodeNull{}
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.assignment()
			if err != nil {
				return nil, err
			}
			init = e
		}
		return nodeVar{name: name, init: init}, nil
	}
	return p.assignment()
}

// assignment := additive ("=" assignment)?
func (p *parser) assignment() (node, error) {
	lhs, err := p.additive()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("=") {
		return lhs, nil
	}
	line := p.tok.line
	switch lhs.(type) {
	case nodeIdent, nodeMember, nodeIndex:
	default:
		return nil, fmt.Errorf("line %d: invalid assignment target", line)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return nodeAssign{target: lhs, value: rhs, line: line}, nil
}

func (p *parser) additive() (node, error) {
	lhs, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op, line := p.tok.text, p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		lhs = nodeBinary{op: op, lhs: lhs, rhs: rhs, line: line}
	}
	return lhs, nil
}

func (p *parser) multiplicative() (node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") {
		op, line := p.tok.text, p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		lhs = nodeBinary{op: op, lhs: lhs, rhs: rhs, line: line}
	}
	return lhs, nil
}

func (p *parser) unary() (node, error) {
	if p.isPunct("-") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return nodeUnary{op: "-", x: x}, nil
	}
	return p.postfix()
}

// postfix := primary ( "." ident | "[" expr "]" | "(" args ")" )*
func (p *parser) postfix() (node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			line := p.tok.line
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, fmt.Errorf("line %d: expected property name", p.tok.line)
			}
			x = nodeMember{obj: x, name: p.tok.text, line: line}
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.isPunct("["):
			line := p.tok.line
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.assignment()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			x = nodeIndex{obj: x, index: idx, line: line}
		case p.isPunct("("):
			line := p.tok.line
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			x = nodeCall{callee: x, args: args, line: line}
		default:
			return x, nil
		}
	}
}

// argList consumes "(" expr ("," expr)* ")".
func (p *parser) argList() ([]node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []node
	for !p.isPunct(")") {
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		a, err := p.assignment()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, p.advance()
}

func (p *parser) primary() (node, error) {
	t := p.tok
	switch t.kind {
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nodeNumber{val: t.num}, nil

	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nodeString{val: t.text}, nil

	case tokIdent:
		switch t.text {
		case "true", "false":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return nodeBool{val: t.text == "true"}, nil
		case "null":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return nodeNull{}, nil
		case "new":
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, fmt.Errorf("line %d: expected class name after new", p.tok.line)
			}
			name, line := p.tok.text, p.tok.line
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			return nodeNew{class: name, args: args, line: line}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nodeIdent{name: t.text, line: t.line}, nil

	case tokPunct:
		switch t.text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.assignment()
			if err != nil {
				return nil, err
			}
			return e, p.expectPunct(")")
		case "[":
			return p.arrayLit()
		case "{":
			return p.objectLit()
		}
	}
	return nil, fmt.Errorf("line %d: unexpected token", t.line)
}

func (p *parser) arrayLit() (node, error) {
	if err := p.advance(); err != nil { // "["
		return nil, err
	}
	var elems []node
	for !p.isPunct("]") {
		if len(elems) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		e, err := p.assignment()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return nodeArrayLit{elems: elems}, p.advance()
}

func (p *parser) objectLit() (node, error) {
	if err := p.advance(); err != nil { // "{"
		return nil, err
	}
	var lit nodeObjectLit
	for !p.isPunct("}") {
		if len(lit.keys) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		if p.tok.kind != tokIdent && p.tok.kind != tokString {
			return nil, fmt.Errorf("line %d: expected property key", p.tok.line)
		}
		key := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		v, err := p.assignment()
		if err != nil {
			return nil, err
		}
		lit.keys = append(lit.keys, key)
		lit.vals = append(lit.vals, v)
	}
	return lit, p.advance()
}
