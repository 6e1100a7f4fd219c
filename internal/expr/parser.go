package expr

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradepersona/internal/trade"
)

type parser struct {
	toks  []token
	pos   int
	depth int
}

func parse(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s %q at %d", ErrSyntax, tok.kind, tok.text, tok.pos)
	}
	return root, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, fmt.Errorf("%w: expected %s at %d, got %s", ErrSyntax, kind, tok.pos, tok.kind)
	}
	return tok, nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return fmt.Errorf("%w: expression nested deeper than %d", ErrSyntax, MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseExpr() (node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		op := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: op.pos, op: tokOr, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		op := p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: op.pos, op: tokAnd, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind != tokNot {
		return p.parseComparison()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	op := p.next()
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &unaryNode{pos: op.pos, op: tokNot, x: x}, nil
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	switch tok.kind {
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte, tokContains:
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &binaryNode{pos: tok.pos, op: tok.kind, l: left, r: right}, nil
	case tokIn:
		p.next()
		items, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return &inNode{pos: tok.pos, x: left, items: items}, nil
	case tokNot:
		if p.peekAt(1).kind == tokIn {
			p.next()
			p.next()
			items, err := p.parseList()
			if err != nil {
				return nil, err
			}
			return &inNode{pos: tok.pos, x: left, items: items, negate: true}, nil
		}
	}
	return left, nil
}

func (p *parser) parseList() ([]node, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var items []node
	for {
		item, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokPlus || k == tokMinus; k = p.peek().kind {
		op := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: op.pos, op: op.kind, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokStar || k == tokSlash; k = p.peek().kind {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: op.pos, op: op.kind, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind != tokMinus {
		return p.parsePrimary()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	op := p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &unaryNode{pos: op.pos, op: tokMinus, x: x}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		d, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, tok.text, tok.pos)
		}
		return &litNode{pos: tok.pos, val: numberValue(d)}, nil
	case tokString:
		return &litNode{pos: tok.pos, val: stringValue(tok.text)}, nil
	case tokTrue:
		return &litNode{pos: tok.pos, val: boolValue(true)}, nil
	case tokFalse:
		return &litNode{pos: tok.pos, val: boolValue(false)}, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		if tableNames[strings.ToLower(tok.text)] {
			return &tableNode{pos: tok.pos, name: tok.text}, nil
		}
		col, ok := lookupColumn(tok.text)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q at %d", ErrSyntax, tok.text, tok.pos)
		}
		return &colNode{pos: tok.pos, name: col.name, col: col}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s at %d", ErrSyntax, tok.kind, tok.pos)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := reductions[strings.ToLower(name.text)]
	if !ok {
		return nil, fmt.Errorf("%w: function %q is not allowed", ErrSyntax, name.text)
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	call := &callNode{pos: name.pos, fn: fn}
	switch {
	case p.peek().kind == tokRParen:
	case p.peek().kind == tokStar && p.peekAt(1).kind == tokRParen:
		p.next()
	case p.peek().kind == tokWhere:
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.where = where
	default:
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.arg = arg
		if k := p.peek().kind; k == tokWhere || k == tokComma {
			p.next()
			where, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.where = where
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return call, nil
}

type scope int

const (
	scopeRow scope = iota
	scopeAggregate
)

// check 做静态类型检查；日期列与字符串字面量比较时在此把字面量转换为时间。
func check(n node, sc scope) (Kind, error) {
	switch n := n.(type) {
	case *litNode:
		return n.val.Kind, nil
	case *colNode:
		if sc == scopeAggregate {
			return KindInvalid, fmt.Errorf("%w: column %q must be wrapped in a reduction such as sum(...) or count(...)", ErrSyntax, n.name)
		}
		return n.col.kind, nil
	case *tableNode:
		return KindInvalid, fmt.Errorf("%w: %q may only be used as count(%s)", ErrSyntax, n.name, n.name)
	case *unaryNode:
		k, err := check(n.x, sc)
		if err != nil {
			return KindInvalid, err
		}
		if n.op == tokNot {
			if k != KindBool {
				return KindInvalid, fmt.Errorf("%w: 'not' needs a boolean operand at %d", ErrSyntax, n.pos)
			}
			return KindBool, nil
		}
		if k != KindNumber {
			return KindInvalid, fmt.Errorf("%w: unary minus needs a number at %d", ErrSyntax, n.pos)
		}
		return KindNumber, nil
	case *binaryNode:
		return checkBinary(n, sc)
	case *inNode:
		if sc == scopeAggregate {
			return KindInvalid, fmt.Errorf("%w: 'in' is only valid inside a filter", ErrSyntax)
		}
		k, err := check(n.x, sc)
		if err != nil {
			return KindInvalid, err
		}
		for _, item := range n.items {
			lit, ok := item.(*litNode)
			if !ok {
				return KindInvalid, fmt.Errorf("%w: 'in' list accepts literals only at %d", ErrSyntax, item.position())
			}
			if err := coerceLiteral(lit, k); err != nil {
				return KindInvalid, err
			}
			if lit.val.Kind != k {
				return KindInvalid, fmt.Errorf("%w: 'in' list item %d is %s, want %s", ErrSyntax, lit.pos, lit.val.Kind, k)
			}
		}
		return KindBool, nil
	case *callNode:
		return checkCall(n, sc)
	}
	return KindInvalid, fmt.Errorf("%w: unsupported node", ErrSyntax)
}

func checkBinary(n *binaryNode, sc scope) (Kind, error) {
	lk, err := check(n.l, sc)
	if err != nil {
		return KindInvalid, err
	}
	rk, err := check(n.r, sc)
	if err != nil {
		return KindInvalid, err
	}
	switch n.op {
	case tokAnd, tokOr:
		if lk != KindBool || rk != KindBool {
			return KindInvalid, fmt.Errorf("%w: %s needs boolean operands at %d", ErrSyntax, n.op, n.pos)
		}
		return KindBool, nil
	case tokPlus, tokMinus, tokStar, tokSlash:
		if lk != KindNumber || rk != KindNumber {
			return KindInvalid, fmt.Errorf("%w: %s needs numeric operands at %d", ErrSyntax, n.op, n.pos)
		}
		return KindNumber, nil
	}
	if sc == scopeAggregate {
		return KindInvalid, fmt.Errorf("%w: comparisons are only valid inside a filter or a where clause", ErrSyntax)
	}
	if n.op == tokContains {
		if rk != KindString || (lk != KindList && lk != KindString) {
			return KindInvalid, fmt.Errorf("%w: contains needs a text or tags column and a string at %d", ErrSyntax, n.pos)
		}
		return KindBool, nil
	}
	lk, rk, err = coercePair(n, lk, rk)
	if err != nil {
		return KindInvalid, err
	}
	if lk != rk {
		return KindInvalid, fmt.Errorf("%w: cannot compare %s with %s at %d", ErrSyntax, lk, rk, n.pos)
	}
	switch n.op {
	case tokEq, tokNeq:
		if lk == KindList {
			return KindInvalid, fmt.Errorf("%w: use 'tags contains ...' instead of comparing lists", ErrSyntax)
		}
	case tokLt, tokLte, tokGt, tokGte:
		if lk != KindNumber && lk != KindTime {
			return KindInvalid, fmt.Errorf("%w: %s needs numbers or dates at %d", ErrSyntax, n.op, n.pos)
		}
	}
	return KindBool, nil
}

func coercePair(n *binaryNode, lk, rk Kind) (Kind, Kind, error) {
	if lk == KindTime && rk == KindString {
		if lit, ok := n.r.(*litNode); ok {
			if err := coerceLiteral(lit, KindTime); err != nil {
				return lk, rk, err
			}
			return lk, KindTime, nil
		}
	}
	if rk == KindTime && lk == KindString {
		if lit, ok := n.l.(*litNode); ok {
			if err := coerceLiteral(lit, KindTime); err != nil {
				return lk, rk, err
			}
			return KindTime, rk, nil
		}
	}
	return lk, rk, nil
}

func coerceLiteral(lit *litNode, want Kind) error {
	if want != KindTime || lit.val.Kind != KindString {
		return nil
	}
	ts, err := trade.ParseDate(lit.val.Str)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	lit.val = timeValue(ts)
	return nil
}

func checkCall(n *callNode, sc scope) (Kind, error) {
	if sc == scopeRow {
		return KindInvalid, fmt.Errorf("%w: %s(...) cannot be nested inside a filter or another reduction", ErrSyntax, n.fn)
	}
	if n.fn == "count" {
		if _, ok := n.arg.(*tableNode); ok {
			n.arg = nil
		}
		if n.arg != nil {
			k, err := check(n.arg, scopeRow)
			if err != nil {
				return KindInvalid, err
			}
			if k != KindBool || n.where != nil {
				return KindInvalid, fmt.Errorf("%w: count takes no argument or a filter", ErrSyntax)
			}
			n.where, n.arg = n.arg, nil
		}
	}
	if n.where != nil {
		k, err := check(n.where, scopeRow)
		if err != nil {
			return KindInvalid, err
		}
		if k != KindBool {
			return KindInvalid, fmt.Errorf("%w: where clause of %s must be a filter", ErrSyntax, n.fn)
		}
	}
	switch n.fn {
	case "count":
		return KindNumber, nil
	case "sum", "mean", "min", "max":
		if n.arg == nil {
			return KindInvalid, fmt.Errorf("%w: %s needs a numeric argument", ErrSyntax, n.fn)
		}
		k, err := check(n.arg, scopeRow)
		if err != nil {
			return KindInvalid, err
		}
		if k != KindNumber {
			return KindInvalid, fmt.Errorf("%w: %s needs a numeric argument, got %s", ErrSyntax, n.fn, k)
		}
		return KindNumber, nil
	case "breakdown", "mode":
		col, ok := n.arg.(*colNode)
		if !ok {
			return KindInvalid, fmt.Errorf("%w: %s needs a column argument", ErrSyntax, n.fn)
		}
		if col.col.kind != KindString && col.col.kind != KindList {
			return KindInvalid, fmt.Errorf("%w: %s needs a text or tags column, got %s", ErrSyntax, n.fn, col.col.kind)
		}
		if n.fn == "mode" {
			return KindString, nil
		}
		return KindBreakdown, nil
	}
	return KindInvalid, fmt.Errorf("%w: function %q is not allowed", ErrSyntax, n.fn)
}
