package nix

import (
	"unicode/utf8"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// lexeme is a classified span of the input.
type lexeme struct {
	kind  syntax.Kind
	start int
	end   int
}

type lexMode uint8

const (
	modeCode lexMode = iota
	modeString
	modeIndString
)

// lexContext is one level of the mode stack. Code contexts opened by an
// interpolation track brace depth so that the matching '}' closes them.
type lexContext struct {
	mode   lexMode
	depth  int
	interp bool
}

// lexer splits Nix source into lexemes covering every byte.
type lexer struct {
	src    []byte
	pos    int
	stack  []lexContext
	tokens []lexeme
}

//nolint:gochecknoglobals // Read-only lookup table.
var keywords = map[string]syntax.Kind{
	"let":     syntax.TokLet,
	"in":      syntax.TokIn,
	"rec":     syntax.TokRec,
	"with":    syntax.TokWith,
	"assert":  syntax.TokAssert,
	"if":      syntax.TokIf,
	"then":    syntax.TokThen,
	"else":    syntax.TokElse,
	"inherit": syntax.TokInherit,
	"or":      syntax.TokOrDefault,
}

// operators is ordered so that longer spellings are tried first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var operators = []struct {
	text string
	kind syntax.Kind
}{
	{"...", syntax.TokEllipsis},
	{"//", syntax.TokUpdate},
	{"++", syntax.TokConcat},
	{"->", syntax.TokImplication},
	{"==", syntax.TokEqual},
	{"!=", syntax.TokNotEqual},
	{"<=", syntax.TokLessOrEq},
	{">=", syntax.TokMoreOrEq},
	{"&&", syntax.TokAnd},
	{"||", syntax.TokOr},
	{"|>", syntax.TokPipeRight},
	{"<|", syntax.TokPipeLeft},
	{".", syntax.TokDot},
	{"/", syntax.TokDiv},
	{"+", syntax.TokAdd},
	{"-", syntax.TokSub},
	{"*", syntax.TokMul},
	{"=", syntax.TokAssign},
	{"!", syntax.TokInvert},
	{"<", syntax.TokLess},
	{">", syntax.TokMore},
	{";", syntax.TokSemicolon},
	{":", syntax.TokColon},
	{",", syntax.TokComma},
	{"@", syntax.TokAt},
	{"?", syntax.TokQuestion},
	{"(", syntax.TokParenL},
	{")", syntax.TokParenR},
	{"[", syntax.TokBracketL},
	{"]", syntax.TokBracketR},
}

// lex tokenizes src. The result is contiguous and covers [0, len(src)).
func lex(src []byte) []lexeme {
	l := &lexer{
		src:   src,
		stack: []lexContext{{mode: modeCode}},
	}
	for l.pos < len(l.src) {
		switch l.top().mode {
		case modeString:
			l.lexString()
		case modeIndString:
			l.lexIndString()
		default:
			l.lexCode()
		}
	}
	return l.tokens
}

func (l *lexer) top() *lexContext {
	return &l.stack[len(l.stack)-1]
}

func (l *lexer) push(ctx lexContext) {
	l.stack = append(l.stack, ctx)
}

func (l *lexer) pop() {
	if len(l.stack) > 1 {
		l.stack = l.stack[:len(l.stack)-1]
	}
}

func (l *lexer) emit(kind syntax.Kind, end int) {
	l.tokens = append(l.tokens, lexeme{kind: kind, start: l.pos, end: end})
	l.pos = end
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) hasPrefix(s string) bool {
	return len(l.src)-l.pos >= len(s) && string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *lexer) lexCode() {
	c := l.src[l.pos]
	switch {
	case isSpace(c):
		end := l.pos
		for end < len(l.src) && isSpace(l.src[end]) {
			end++
		}
		l.emit(syntax.TokWhitespace, end)
	case c == '#':
		end := l.pos
		for end < len(l.src) && l.src[end] != '\n' && l.src[end] != '\r' {
			end++
		}
		l.emit(syntax.TokComment, end)
	case l.hasPrefix("/*"):
		end := l.pos + 2
		for end < len(l.src) && !(l.src[end] == '*' && end+1 < len(l.src) && l.src[end+1] == '/') {
			end++
		}
		if end >= len(l.src) {
			// Unterminated; the parser reports it.
			l.emit(syntax.TokError, len(l.src))
			return
		}
		l.emit(syntax.TokComment, end+2)
	case c == '"':
		l.emit(syntax.TokQuote, l.pos+1)
		l.push(lexContext{mode: modeString})
	case l.hasPrefix("''"):
		l.emit(syntax.TokIndQuote, l.pos+2)
		l.push(lexContext{mode: modeIndString})
	case l.hasPrefix("${"):
		l.emit(syntax.TokInterpolStart, l.pos+2)
		l.push(lexContext{mode: modeCode, interp: true})
	case c == '{':
		l.top().depth++
		l.emit(syntax.TokCurlyL, l.pos+1)
	case c == '}':
		ctx := l.top()
		l.emit(syntax.TokCurlyR, l.pos+1)
		if ctx.depth > 0 {
			ctx.depth--
		} else if ctx.interp {
			l.pop()
		}
	default:
		l.lexWord()
	}
}

// lexWord handles URIs, paths, numbers, identifiers and operators.
func (l *lexer) lexWord() {
	if end := l.scanURI(); end > 0 {
		l.emit(syntax.TokURI, end)
		return
	}
	if end := l.scanPath(); end > 0 {
		l.emit(syntax.TokPath, end)
		return
	}

	c := l.src[l.pos]
	switch {
	case isDigit(c) || (c == '.' && isDigit(l.peekByte(1))):
		l.lexNumber()
		return
	case isIdentStart(c):
		end := l.pos + 1
		for end < len(l.src) && isIdentChar(l.src[end]) {
			end++
		}
		kind := syntax.TokIdent
		if kw, ok := keywords[string(l.src[l.pos:end])]; ok {
			kind = kw
		}
		l.emit(kind, end)
		return
	}

	for _, op := range operators {
		if l.hasPrefix(op.text) {
			l.emit(op.kind, l.pos+len(op.text))
			return
		}
	}

	_, size := utf8.DecodeRune(l.src[l.pos:])
	l.emit(syntax.TokError, l.pos+size)
}

func (l *lexer) lexNumber() {
	end := l.pos
	for end < len(l.src) && isDigit(l.src[end]) {
		end++
	}
	kind := syntax.TokInteger
	if end < len(l.src) && l.src[end] == '.' && end+1 < len(l.src) && isDigit(l.src[end+1]) {
		kind = syntax.TokFloat
		end++
		for end < len(l.src) && isDigit(l.src[end]) {
			end++
		}
	}
	if kind == syntax.TokFloat && end < len(l.src) && (l.src[end] == 'e' || l.src[end] == 'E') {
		exp := end + 1
		if exp < len(l.src) && (l.src[exp] == '+' || l.src[exp] == '-') {
			exp++
		}
		if exp < len(l.src) && isDigit(l.src[exp]) {
			end = exp
			for end < len(l.src) && isDigit(l.src[end]) {
				end++
			}
		}
	}
	l.emit(kind, end)
}

// scanURI matches scheme ':' uri-chars and returns the end offset, or 0.
func (l *lexer) scanURI() int {
	i := l.pos
	if i >= len(l.src) || !isAlpha(l.src[i]) {
		return 0
	}
	i++
	for i < len(l.src) && isSchemeChar(l.src[i]) {
		i++
	}
	if i >= len(l.src) || l.src[i] != ':' {
		return 0
	}
	i++
	start := i
	for i < len(l.src) && isURIChar(l.src[i]) {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

// scanPath matches relative, absolute, home and search paths and returns
// the end offset, or 0.
func (l *lexer) scanPath() int {
	i := l.pos
	if i >= len(l.src) {
		return 0
	}

	if l.src[i] == '<' {
		j := i + 1
		segStart := j
		for j < len(l.src) && (isPathChar(l.src[j]) || l.src[j] == '/') {
			j++
		}
		if j > segStart && j < len(l.src) && l.src[j] == '>' {
			return j + 1
		}
		return 0
	}

	if l.src[i] == '~' {
		i++
	} else {
		for i < len(l.src) && isPathChar(l.src[i]) {
			i++
		}
	}

	segments := 0
	for i+1 < len(l.src) && l.src[i] == '/' && isPathChar(l.src[i+1]) {
		i++
		for i < len(l.src) && isPathChar(l.src[i]) {
			i++
		}
		segments++
	}
	if segments == 0 {
		return 0
	}
	return i
}

func (l *lexer) lexString() {
	start := l.pos
	i := l.pos
	for i < len(l.src) {
		c := l.src[i]
		switch {
		case c == '"':
			if i > start {
				l.emit(syntax.TokStringContent, i)
			}
			l.emit(syntax.TokQuote, i+1)
			l.pop()
			return
		case c == '\\' && i+1 < len(l.src):
			i += 2
		case c == '$' && i+1 < len(l.src) && l.src[i+1] == '$':
			i += 2
		case c == '$' && i+1 < len(l.src) && l.src[i+1] == '{':
			if i > start {
				l.emit(syntax.TokStringContent, i)
			}
			l.emit(syntax.TokInterpolStart, i+2)
			l.push(lexContext{mode: modeCode, interp: true})
			return
		default:
			i++
		}
	}
	l.emit(syntax.TokStringContent, len(l.src))
}

func (l *lexer) lexIndString() {
	start := l.pos
	i := l.pos
	for i < len(l.src) {
		switch {
		case l.src[i] == '\'' && i+1 < len(l.src) && l.src[i+1] == '\'':
			// ''' , ''$ and ''\x are escapes inside the string.
			if i+2 < len(l.src) {
				switch l.src[i+2] {
				case '\'', '$':
					i += 3
					continue
				case '\\':
					i = min(i+4, len(l.src))
					continue
				}
			}
			if i > start {
				l.emit(syntax.TokStringContent, i)
			}
			l.emit(syntax.TokIndQuote, i+2)
			l.pop()
			return
		case l.src[i] == '$' && i+1 < len(l.src) && l.src[i+1] == '$':
			i += 2
		case l.src[i] == '$' && i+1 < len(l.src) && l.src[i+1] == '{':
			if i > start {
				l.emit(syntax.TokStringContent, i)
			}
			l.emit(syntax.TokInterpolStart, i+2)
			l.push(lexContext{mode: modeCode, interp: true})
			return
		default:
			i++
		}
	}
	l.emit(syntax.TokStringContent, len(l.src))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '\'' || c == '-'
}

func isPathChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '.' || c == '_' || c == '-' || c == '+'
}

func isSchemeChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

func isURIChar(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}
