// Package nix parses Nix expressions into lossless syntax trees.
//
// The parser keeps every byte of the input: whitespace and comments become
// trivia tokens attached to the innermost node that is open when the next
// significant token or node begins. As a consequence, no node other than the
// root starts or ends with trivia.
package nix

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Parser parses Nix source. It holds no state and is safe for concurrent use.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// ParseError describes the first syntax error in a file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// bailout unwinds the recursive descent on the first syntax error.
type bailout struct{}

// Parse converts content into a syntax tree. content is not retained; the
// tree owns a private copy.
//
// The returned tree satisfies:
//   - tree.Path == path
//   - syntax.ValidateTokens(tree.Tokens, len(tree.Content))
//   - tree.Root.Kind == syntax.NodeRoot and spans the whole content
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	src := make([]byte, len(content))
	copy(src, content)

	ps := &parser{
		path:   path,
		src:    src,
		tokens: lex(src),
		b:      syntax.NewBuilder(path, src),
	}
	if err := ps.parseRoot(); err != nil {
		return nil, err
	}

	tree, err := ps.b.Finish()
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return tree, nil
}

type parser struct {
	path   string
	src    []byte
	tokens []lexeme
	pos    int
	b      *syntax.Builder
	err    *ParseError
}

func (p *parser) parseRoot() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			err = p.err
		}
	}()

	for _, t := range p.tokens {
		if t.kind == syntax.TokError && strings.HasPrefix(string(p.src[t.start:t.end]), "/*") {
			p.failAt(t.start, "unterminated comment")
		}
	}

	p.b.StartNode(syntax.NodeRoot)
	p.flushTrivia()
	if p.peek() != eof {
		p.parseExpr()
	}
	p.flushTrivia()
	if p.peek() != eof {
		p.fail("unexpected %s after expression", p.peek())
	}
	p.b.FinishNode()
	return nil
}

// eof is returned by peek at the end of input.
const eof = syntax.Kind(^uint16(0))

// nth returns the kind of the n-th significant lexeme ahead, skipping trivia.
func (p *parser) nth(n int) syntax.Kind {
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].kind.IsTrivia() {
			continue
		}
		if n == 0 {
			return p.tokens[i].kind
		}
		n--
	}
	return eof
}

func (p *parser) peek() syntax.Kind {
	return p.nth(0)
}

func (p *parser) at(kinds ...syntax.Kind) bool {
	next := p.peek()
	for _, k := range kinds {
		if next == k {
			return true
		}
	}
	return false
}

// flushTrivia attaches pending whitespace and comments to the open node.
func (p *parser) flushTrivia() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].kind.IsTrivia() {
		t := p.tokens[p.pos]
		p.b.Token(t.kind, t.start, t.end)
		p.pos++
	}
}

// bump emits the next significant token into the open node.
func (p *parser) bump() {
	p.flushTrivia()
	if p.pos >= len(p.tokens) {
		p.fail("unexpected end of input")
	}
	t := p.tokens[p.pos]
	p.b.Token(t.kind, t.start, t.end)
	p.pos++
}

func (p *parser) expect(kind syntax.Kind) {
	if next := p.peek(); next != kind {
		p.failExpected(kind.String(), next)
	}
	p.bump()
}

func (p *parser) startNode(kind syntax.Kind) {
	p.flushTrivia()
	p.b.StartNode(kind)
}

func (p *parser) finishNode() {
	p.b.FinishNode()
}

func (p *parser) checkpoint() syntax.Checkpoint {
	p.flushTrivia()
	return p.b.Checkpoint()
}

func (p *parser) failExpected(want string, got syntax.Kind) {
	if got == eof {
		p.fail("expected %s, got end of input", want)
	}
	p.fail("expected %s, got %s", want, got)
}

func (p *parser) fail(format string, args ...any) {
	offset := len(p.src)
	for i := p.pos; i < len(p.tokens); i++ {
		if !p.tokens[i].kind.IsTrivia() {
			offset = p.tokens[i].start
			break
		}
	}
	p.failAt(offset, format, args...)
}

func (p *parser) failAt(offset int, format string, args ...any) {
	line, col := lineCol(p.src, offset)
	p.err = &ParseError{
		Path:    p.path,
		Line:    line,
		Column:  col,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
	panic(bailout{})
}

func lineCol(src []byte, offset int) (int, int) {
	line, col := 1, 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func (p *parser) parseExpr() {
	switch p.peek() {
	case syntax.TokIdent:
		switch p.nth(1) {
		case syntax.TokColon:
			p.startNode(syntax.NodeLambda)
			p.parseIdent()
			p.expect(syntax.TokColon)
			p.parseExpr()
			p.finishNode()
			return
		case syntax.TokAt:
			p.parsePatternLambda()
			return
		}
	case syntax.TokCurlyL:
		if p.isPattern() {
			p.parsePatternLambda()
			return
		}
	case syntax.TokAssert:
		p.startNode(syntax.NodeAssert)
		p.bump()
		p.parseExpr()
		p.expect(syntax.TokSemicolon)
		p.parseExpr()
		p.finishNode()
		return
	case syntax.TokWith:
		p.startNode(syntax.NodeWith)
		p.bump()
		p.parseExpr()
		p.expect(syntax.TokSemicolon)
		p.parseExpr()
		p.finishNode()
		return
	case syntax.TokLet:
		if p.nth(1) != syntax.TokCurlyL {
			p.startNode(syntax.NodeLetIn)
			p.bump()
			p.parseBindings(syntax.TokIn)
			p.expect(syntax.TokIn)
			p.parseExpr()
			p.finishNode()
			return
		}
	case syntax.TokIf:
		p.startNode(syntax.NodeIfElse)
		p.bump()
		p.parseExpr()
		p.expect(syntax.TokThen)
		p.parseExpr()
		p.expect(syntax.TokElse)
		p.parseExpr()
		p.finishNode()
		return
	}
	p.parseBinary(0)
}

// isPattern decides whether the '{' ahead opens a lambda pattern rather
// than an attribute set.
func (p *parser) isPattern() bool {
	switch p.nth(1) {
	case syntax.TokCurlyR:
		next := p.nth(2)
		return next == syntax.TokColon || next == syntax.TokAt
	case syntax.TokEllipsis:
		return true
	case syntax.TokIdent:
		switch p.nth(2) {
		case syntax.TokComma, syntax.TokQuestion:
			return true
		case syntax.TokCurlyR:
			next := p.nth(3)
			return next == syntax.TokColon || next == syntax.TokAt
		}
	}
	return false
}

func (p *parser) parsePatternLambda() {
	p.startNode(syntax.NodeLambda)
	p.startNode(syntax.NodePattern)
	if p.at(syntax.TokIdent) {
		p.startNode(syntax.NodePatBind)
		p.parseIdent()
		p.expect(syntax.TokAt)
		p.finishNode()
	}
	p.expect(syntax.TokCurlyL)
	for !p.at(syntax.TokCurlyR) {
		switch p.peek() {
		case syntax.TokEllipsis:
			p.bump()
		case syntax.TokIdent:
			p.startNode(syntax.NodePatEntry)
			p.parseIdent()
			if p.at(syntax.TokQuestion) {
				p.bump()
				p.parseExpr()
			}
			p.finishNode()
		default:
			p.failExpected("pattern entry", p.peek())
		}
		if !p.at(syntax.TokComma) {
			break
		}
		p.bump()
	}
	p.expect(syntax.TokCurlyR)
	if p.at(syntax.TokAt) {
		p.startNode(syntax.NodePatBind)
		p.bump()
		p.parseIdent()
		p.finishNode()
	}
	p.finishNode()
	p.expect(syntax.TokColon)
	p.parseExpr()
	p.finishNode()
}

// Binding powers, loosest first.
const (
	bpPipe = iota + 1
	bpImplication
	bpOr
	bpAnd
	bpEquality
	bpComparison
	bpUpdate
	bpNot
	bpAdditive
	bpMultiplicative
	bpConcat
	bpHasAttr
	bpNegate
)

// infix returns the binding power and associativity of a binary operator.
func infix(kind syntax.Kind) (int, bool, bool) {
	switch kind {
	case syntax.TokPipeRight, syntax.TokPipeLeft:
		return bpPipe, false, true
	case syntax.TokImplication:
		return bpImplication, true, true
	case syntax.TokOr:
		return bpOr, false, true
	case syntax.TokAnd:
		return bpAnd, false, true
	case syntax.TokEqual, syntax.TokNotEqual:
		return bpEquality, false, true
	case syntax.TokLess, syntax.TokLessOrEq, syntax.TokMore, syntax.TokMoreOrEq:
		return bpComparison, false, true
	case syntax.TokUpdate:
		return bpUpdate, true, true
	case syntax.TokAdd, syntax.TokSub:
		return bpAdditive, false, true
	case syntax.TokMul, syntax.TokDiv:
		return bpMultiplicative, false, true
	case syntax.TokConcat:
		return bpConcat, true, true
	case syntax.TokQuestion:
		return bpHasAttr, false, true
	}
	return 0, false, false
}

// parseBinary is a precedence climber over infix and prefix operators.
func (p *parser) parseBinary(minBP int) {
	cp := p.checkpoint()

	switch p.peek() {
	case syntax.TokInvert:
		p.startNode(syntax.NodeUnaryOp)
		p.bump()
		p.parseBinary(bpNot)
		p.finishNode()
	case syntax.TokSub:
		p.startNode(syntax.NodeUnaryOp)
		p.bump()
		p.parseBinary(bpNegate)
		p.finishNode()
	default:
		p.parseApply()
	}

	for {
		op := p.peek()
		bp, right, ok := infix(op)
		if !ok || bp < minBP {
			return
		}
		if op == syntax.TokQuestion {
			p.b.StartNodeAt(cp, syntax.NodeHasAttr)
			p.bump()
			p.parseAttrpath()
			p.finishNode()
			continue
		}
		p.b.StartNodeAt(cp, syntax.NodeBinOp)
		p.bump()
		if right {
			p.parseBinary(bp)
		} else {
			p.parseBinary(bp + 1)
		}
		p.finishNode()
	}
}

func startsAtom(kind syntax.Kind) bool {
	switch kind {
	case syntax.TokIdent, syntax.TokInteger, syntax.TokFloat, syntax.TokPath,
		syntax.TokURI, syntax.TokQuote, syntax.TokIndQuote, syntax.TokParenL,
		syntax.TokBracketL, syntax.TokCurlyL, syntax.TokRec:
		return true
	}
	return false
}

func (p *parser) parseApply() {
	cp := p.checkpoint()
	p.parseSelect()
	for startsAtom(p.peek()) {
		p.b.StartNodeAt(cp, syntax.NodeApply)
		p.parseSelect()
		p.finishNode()
	}
}

func (p *parser) parseSelect() {
	cp := p.checkpoint()
	p.parseAtom()
	if !p.at(syntax.TokDot) {
		return
	}
	p.b.StartNodeAt(cp, syntax.NodeSelect)
	p.bump()
	p.parseAttrpath()
	if p.at(syntax.TokOrDefault) {
		p.bump()
		p.parseSelect()
	}
	p.finishNode()
}

func (p *parser) parseAtom() {
	switch p.peek() {
	case syntax.TokIdent, syntax.TokOrDefault:
		p.parseIdent()
	case syntax.TokInteger, syntax.TokFloat, syntax.TokURI:
		p.startNode(syntax.NodeLiteral)
		p.bump()
		p.finishNode()
	case syntax.TokPath:
		p.startNode(syntax.NodePath)
		p.bump()
		p.finishNode()
	case syntax.TokQuote, syntax.TokIndQuote:
		p.parseString()
	case syntax.TokParenL:
		p.startNode(syntax.NodeParen)
		p.bump()
		p.parseExpr()
		p.expect(syntax.TokParenR)
		p.finishNode()
	case syntax.TokBracketL:
		p.startNode(syntax.NodeList)
		p.bump()
		for !p.at(syntax.TokBracketR) {
			if p.peek() == eof {
				p.failExpected(syntax.TokBracketR.String(), eof)
			}
			p.parseSelect()
		}
		p.bump()
		p.finishNode()
	case syntax.TokRec, syntax.TokCurlyL:
		p.startNode(syntax.NodeAttrSet)
		if p.at(syntax.TokRec) {
			p.bump()
		}
		p.expect(syntax.TokCurlyL)
		p.parseBindings(syntax.TokCurlyR)
		p.expect(syntax.TokCurlyR)
		p.finishNode()
	case syntax.TokLet:
		// Legacy "let { ... }" form.
		p.startNode(syntax.NodeAttrSet)
		p.bump()
		p.expect(syntax.TokCurlyL)
		p.parseBindings(syntax.TokCurlyR)
		p.expect(syntax.TokCurlyR)
		p.finishNode()
	default:
		p.failExpected("expression", p.peek())
	}
}

func (p *parser) parseIdent() {
	next := p.peek()
	if next != syntax.TokIdent && next != syntax.TokOrDefault {
		p.failExpected("identifier", next)
	}
	p.startNode(syntax.NodeIdent)
	p.bump()
	p.finishNode()
}

func (p *parser) parseString() {
	p.startNode(syntax.NodeString)
	closing := p.peek()
	p.bump()
	for {
		switch p.peek() {
		case closing:
			p.bump()
			p.finishNode()
			return
		case syntax.TokStringContent:
			p.bump()
		case syntax.TokInterpolStart:
			p.parseInterpolation(syntax.NodeInterpol)
		default:
			p.failExpected(closing.String(), p.peek())
		}
	}
}

func (p *parser) parseInterpolation(kind syntax.Kind) {
	p.startNode(kind)
	p.expect(syntax.TokInterpolStart)
	p.parseExpr()
	p.expect(syntax.TokCurlyR)
	p.finishNode()
}

// parseBindings parses attribute bindings until the terminator is ahead.
func (p *parser) parseBindings(terminator syntax.Kind) {
	for !p.at(terminator) {
		switch p.peek() {
		case eof:
			p.failExpected(terminator.String(), eof)
		case syntax.TokInherit:
			p.parseInherit()
		default:
			p.startNode(syntax.NodeKeyValue)
			p.parseAttrpath()
			p.expect(syntax.TokAssign)
			p.parseExpr()
			p.expect(syntax.TokSemicolon)
			p.finishNode()
		}
	}
}

func (p *parser) parseInherit() {
	p.startNode(syntax.NodeInherit)
	p.bump()
	if p.at(syntax.TokParenL) {
		p.startNode(syntax.NodeInheritFrom)
		p.bump()
		p.parseExpr()
		p.expect(syntax.TokParenR)
		p.finishNode()
	}
	for !p.at(syntax.TokSemicolon) {
		p.parseAttr()
	}
	p.bump()
	p.finishNode()
}

func (p *parser) parseAttrpath() {
	p.startNode(syntax.NodeAttrpath)
	p.parseAttr()
	for p.at(syntax.TokDot) {
		p.bump()
		p.parseAttr()
	}
	p.finishNode()
}

func (p *parser) parseAttr() {
	switch p.peek() {
	case syntax.TokIdent, syntax.TokOrDefault:
		p.parseIdent()
	case syntax.TokQuote:
		p.parseString()
	case syntax.TokInterpolStart:
		p.parseInterpolation(syntax.NodeDynamic)
	default:
		p.failExpected("attribute name", p.peek())
	}
}
