package syntax

import "strconv"

// Kind classifies both tokens and nodes of a syntax tree.
// Token kinds sort before tokenKindEnd; node kinds after it.
type Kind uint16

// Token kinds. Together the tokens of a tree cover every byte of its content.
const (
	TokError Kind = iota
	TokWhitespace
	TokComment

	TokIdent
	TokInteger
	TokFloat
	TokPath          // ./foo, /abs, ~/x, <nixpkgs>
	TokURI           // https://example.org
	TokQuote         // '"'
	TokIndQuote      // "''"
	TokStringContent // literal text inside a string
	TokInterpolStart // '${'

	TokCurlyL
	TokCurlyR
	TokBracketL
	TokBracketR
	TokParenL
	TokParenR
	TokSemicolon
	TokColon
	TokComma
	TokDot
	TokEllipsis
	TokAt
	TokQuestion
	TokAssign

	TokAdd
	TokSub
	TokMul
	TokDiv
	TokConcat
	TokUpdate
	TokEqual
	TokNotEqual
	TokLess
	TokLessOrEq
	TokMore
	TokMoreOrEq
	TokAnd
	TokOr
	TokImplication
	TokInvert
	TokPipeRight
	TokPipeLeft

	TokLet
	TokIn
	TokRec
	TokWith
	TokAssert
	TokIf
	TokThen
	TokElse
	TokInherit
	TokOrDefault // the 'or' keyword of a select

	tokenKindEnd
)

// Node kinds.
const (
	NodeRoot Kind = iota + tokenKindEnd + 1
	NodeError

	NodeIdent
	NodeLiteral
	NodePath
	NodeString
	NodeInterpol
	NodeParen
	NodeList
	NodeAttrSet
	NodeKeyValue
	NodeAttrpath
	NodeDynamic
	NodeInherit
	NodeInheritFrom
	NodeLambda
	NodePattern
	NodePatEntry
	NodePatBind
	NodeApply
	NodeSelect
	NodeHasAttr
	NodeBinOp
	NodeUnaryOp
	NodeLetIn
	NodeWith
	NodeAssert
	NodeIfElse

	nodeKindEnd
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = map[Kind]string{
	TokError:         "TOKEN_ERROR",
	TokWhitespace:    "TOKEN_WHITESPACE",
	TokComment:       "TOKEN_COMMENT",
	TokIdent:         "TOKEN_IDENT",
	TokInteger:       "TOKEN_INTEGER",
	TokFloat:         "TOKEN_FLOAT",
	TokPath:          "TOKEN_PATH",
	TokURI:           "TOKEN_URI",
	TokQuote:         "TOKEN_QUOTE",
	TokIndQuote:      "TOKEN_IND_QUOTE",
	TokStringContent: "TOKEN_STRING_CONTENT",
	TokInterpolStart: "TOKEN_INTERPOL_START",
	TokCurlyL:        "TOKEN_L_BRACE",
	TokCurlyR:        "TOKEN_R_BRACE",
	TokBracketL:      "TOKEN_L_BRACK",
	TokBracketR:      "TOKEN_R_BRACK",
	TokParenL:        "TOKEN_L_PAREN",
	TokParenR:        "TOKEN_R_PAREN",
	TokSemicolon:     "TOKEN_SEMICOLON",
	TokColon:         "TOKEN_COLON",
	TokComma:         "TOKEN_COMMA",
	TokDot:           "TOKEN_DOT",
	TokEllipsis:      "TOKEN_ELLIPSIS",
	TokAt:            "TOKEN_AT",
	TokQuestion:      "TOKEN_QUESTION",
	TokAssign:        "TOKEN_ASSIGN",
	TokAdd:           "TOKEN_ADD",
	TokSub:           "TOKEN_SUB",
	TokMul:           "TOKEN_MUL",
	TokDiv:           "TOKEN_DIV",
	TokConcat:        "TOKEN_CONCAT",
	TokUpdate:        "TOKEN_UPDATE",
	TokEqual:         "TOKEN_EQUAL",
	TokNotEqual:      "TOKEN_NOT_EQUAL",
	TokLess:          "TOKEN_LESS",
	TokLessOrEq:      "TOKEN_LESS_OR_EQ",
	TokMore:          "TOKEN_MORE",
	TokMoreOrEq:      "TOKEN_MORE_OR_EQ",
	TokAnd:           "TOKEN_AND",
	TokOr:            "TOKEN_OR",
	TokImplication:   "TOKEN_IMPLICATION",
	TokInvert:        "TOKEN_INVERT",
	TokPipeRight:     "TOKEN_PIPE_RIGHT",
	TokPipeLeft:      "TOKEN_PIPE_LEFT",
	TokLet:           "TOKEN_LET",
	TokIn:            "TOKEN_IN",
	TokRec:           "TOKEN_REC",
	TokWith:          "TOKEN_WITH",
	TokAssert:        "TOKEN_ASSERT",
	TokIf:            "TOKEN_IF",
	TokThen:          "TOKEN_THEN",
	TokElse:          "TOKEN_ELSE",
	TokInherit:       "TOKEN_INHERIT",
	TokOrDefault:     "TOKEN_OR_DEFAULT",

	NodeRoot:        "NODE_ROOT",
	NodeError:       "NODE_ERROR",
	NodeIdent:       "NODE_IDENT",
	NodeLiteral:     "NODE_LITERAL",
	NodePath:        "NODE_PATH",
	NodeString:      "NODE_STRING",
	NodeInterpol:    "NODE_INTERPOL",
	NodeParen:       "NODE_PAREN",
	NodeList:        "NODE_LIST",
	NodeAttrSet:     "NODE_ATTR_SET",
	NodeKeyValue:    "NODE_KEY_VALUE",
	NodeAttrpath:    "NODE_ATTRPATH",
	NodeDynamic:     "NODE_DYNAMIC",
	NodeInherit:     "NODE_INHERIT",
	NodeInheritFrom: "NODE_INHERIT_FROM",
	NodeLambda:      "NODE_LAMBDA",
	NodePattern:     "NODE_PATTERN",
	NodePatEntry:    "NODE_PAT_ENTRY",
	NodePatBind:     "NODE_PAT_BIND",
	NodeApply:       "NODE_APPLY",
	NodeSelect:      "NODE_SELECT",
	NodeHasAttr:     "NODE_HAS_ATTR",
	NodeBinOp:       "NODE_BIN_OP",
	NodeUnaryOp:     "NODE_UNARY_OP",
	NodeLetIn:       "NODE_LET_IN",
	NodeWith:        "NODE_WITH",
	NodeAssert:      "NODE_ASSERT",
	NodeIfElse:      "NODE_IF_ELSE",
}

// String returns the upper-case name of the kind, e.g. "NODE_ATTR_SET".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsToken returns true for token kinds.
func (k Kind) IsToken() bool {
	return k < tokenKindEnd
}

// IsNode returns true for node kinds.
func (k Kind) IsNode() bool {
	return k > tokenKindEnd && k < nodeKindEnd
}

// IsTrivia returns true for kinds that carry no meaning: whitespace and comments.
func (k Kind) IsTrivia() bool {
	return k == TokWhitespace || k == TokComment
}

// IsKeyword returns true for reserved-word tokens.
func (k Kind) IsKeyword() bool {
	return k >= TokLet && k <= TokOrDefault
}

// IsBinaryOperator returns true for infix operator tokens.
func (k Kind) IsBinaryOperator() bool {
	return k >= TokAdd && k <= TokPipeLeft && k != TokInvert
}

// KindByName looks up a kind by its String() name.
func KindByName(name string) (Kind, bool) {
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}
