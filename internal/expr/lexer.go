package expr

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokComma
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokAnd
	tokOr
	tokNot
	tokIn
	tokContains
	tokWhere
	tokTrue
	tokFalse
)

var tokenNames = map[tokenKind]string{
	tokEOF: "end of input", tokIdent: "identifier", tokNumber: "number", tokString: "string",
	tokLParen: "(", tokRParen: ")", tokComma: ",", tokEq: "==", tokNeq: "!=",
	tokLt: "<", tokLte: "<=", tokGt: ">", tokGte: ">=", tokPlus: "+", tokMinus: "-",
	tokStar: "*", tokSlash: "/", tokAnd: "and", tokOr: "or", tokNot: "not", tokIn: "in",
	tokContains: "contains", tokWhere: "where", tokTrue: "true", tokFalse: "false",
}

func (k tokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

var keywords = map[string]tokenKind{
	"and":      tokAnd,
	"or":       tokOr,
	"not":      tokNot,
	"in":       tokIn,
	"contains": tokContains,
	"where":    tokWhere,
	"true":     tokTrue,
	"false":    tokFalse,
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex 把输入切分为词法单元；任何不在白名单内的字符都直接报错。
func lex(src string) ([]token, error) {
	var out []token
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case isIdentStart(ch):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if kind, ok := keywords[strings.ToLower(word)]; ok {
				out = append(out, token{kind: kind, text: word, pos: start})
			} else {
				out = append(out, token{kind: tokIdent, text: word, pos: start})
			}
		case isDigit(ch) || (ch == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			seenDot := false
			for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !seenDot)) {
				if src[i] == '.' {
					seenDot = true
				}
				i++
			}
			out = append(out, token{kind: tokNumber, text: src[start:i], pos: start})
		case ch == '\'' || ch == '"':
			text, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: text, pos: i})
			i = next
		default:
			kind, width, ok := lexOperator(src[i:])
			if !ok {
				return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, ch, i)
			}
			out = append(out, token{kind: kind, text: src[i : i+width], pos: i})
			i += width
		}
		if len(out) > MaxTokens {
			return nil, fmt.Errorf("%w: expression exceeds %d tokens", ErrSyntax, MaxTokens)
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(src)})
	return out, nil
}

func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == '\\' && i+1 < len(src):
			b.WriteByte(src[i+1])
			i += 2
		case ch == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string starting at %d", ErrSyntax, start)
}

func lexOperator(rest string) (tokenKind, int, bool) {
	two := map[string]tokenKind{
		"==": tokEq, "!=": tokNeq, "<>": tokNeq, "<=": tokLte, ">=": tokGte,
		"&&": tokAnd, "||": tokOr,
	}
	if len(rest) >= 2 {
		if kind, ok := two[rest[:2]]; ok {
			return kind, 2, true
		}
	}
	switch rest[0] {
	case '(':
		return tokLParen, 1, true
	case ')':
		return tokRParen, 1, true
	case ',':
		return tokComma, 1, true
	case '=':
		return tokEq, 1, true
	case '<':
		return tokLt, 1, true
	case '>':
		return tokGt, 1, true
	case '+':
		return tokPlus, 1, true
	case '-':
		return tokMinus, 1, true
	case '*':
		return tokStar, 1, true
	case '/':
		return tokSlash, 1, true
	case '&':
		return tokAnd, 1, true
	case '|':
		return tokOr, 1, true
	case '!', '~':
		return tokNot, 1, true
	}
	return tokEOF, 0, false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
