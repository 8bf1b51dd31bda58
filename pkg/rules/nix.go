package rules

import (
	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Rule names. Several DSL rules may share one name; they are enabled and
// disabled together.
const (
	FileStart        = "file-start"
	FileEnd          = "file-end"
	TopLevel         = "top-level"
	LambdaColon      = "lambda-colon"
	LambdaBody       = "lambda-body"
	PatternBraces    = "pattern-braces"
	PatternCommas    = "pattern-commas"
	PatternDefaults  = "pattern-defaults"
	PatternBind      = "pattern-bind"
	SetBraces        = "attr-set-braces"
	SetEntries       = "attr-set-entries"
	Assignment       = "assignment"
	Semicolon        = "semicolon"
	AttrpathDots     = "attrpath-dots"
	SelectDefault    = "select-default"
	InheritSpacing   = "inherit"
	LetIn            = "let-in"
	WithAssert       = "with-assert"
	IfThenElse       = "if-then-else"
	ListBrackets     = "list-brackets"
	ListItems        = "list-items"
	Parens           = "parens"
	BinaryOperators  = "binary-operators"
	UnaryOperators   = "unary-operators"
	Application      = "application"
	Interpolation    = "interpolation"
	ClosingDelimiter = "closing-delimiter"
)

//nolint:gochecknoglobals // Read-only lookup table.
var binaryOperators = []syntax.Kind{
	syntax.TokAdd, syntax.TokSub, syntax.TokMul, syntax.TokDiv,
	syntax.TokConcat, syntax.TokUpdate, syntax.TokEqual, syntax.TokNotEqual,
	syntax.TokLess, syntax.TokLessOrEq, syntax.TokMore, syntax.TokMoreOrEq,
	syntax.TokAnd, syntax.TokOr, syntax.TokImplication,
	syntax.TokPipeRight, syntax.TokPipeLeft,
}

// Spacing returns the built-in spacing rules for Nix.
func Spacing() *dsl.SpacingDsl {
	s := dsl.NewSpacing()

	s.Rule(FileStart).Inside(syntax.NodeRoot).Before().When(firstInParent()).None()
	s.Rule(FileEnd).Inside(syntax.NodeRoot).After().When(lastInParent()).ExactNewline()

	s.Rule(LambdaColon).Inside(syntax.NodeLambda).Before(syntax.TokColon).None()
	s.Rule(LambdaColon).Inside(syntax.NodeLambda).After(syntax.TokColon).SingleOptionalNewline()

	s.Rule(PatternBraces).Inside(syntax.NodePattern).After(syntax.TokCurlyL).SingleOptionalNewline()
	s.Rule(PatternBraces).Inside(syntax.NodePattern).Before(syntax.TokCurlyR).SingleOrNewline()
	s.Rule(PatternCommas).Inside(syntax.NodePattern).Before(syntax.TokComma).NoneOptionalNewline()
	s.Rule(PatternCommas).Inside(syntax.NodePattern).After(syntax.TokComma).SingleOptionalNewline()
	s.Rule(PatternDefaults).Inside(syntax.NodePatEntry).Around(syntax.TokQuestion).Single()
	s.Rule(PatternBind).Inside(syntax.NodePatBind).Around(syntax.TokAt).None()

	s.Rule(SetBraces).Inside(syntax.NodeAttrSet).After(syntax.TokRec).Single()
	s.Rule(SetBraces).Inside(syntax.NodeAttrSet).After(syntax.TokCurlyL).SingleOrNewline()
	s.Rule(SetBraces).Inside(syntax.NodeAttrSet).Before(syntax.TokCurlyR).SingleOrNewline()
	s.Rule(SetEntries).Inside(syntax.NodeAttrSet).Between(bindings(), bindings()).SingleOrNewline()

	s.Rule(Assignment).Inside(syntax.NodeKeyValue).Before(syntax.TokAssign).Single()
	s.Rule(Assignment).Inside(syntax.NodeKeyValue).After(syntax.TokAssign).SingleOptionalNewline()
	s.Rule(Semicolon).
		Inside(syntax.NodeKeyValue, syntax.NodeInherit, syntax.NodeWith, syntax.NodeAssert).
		Before(syntax.TokSemicolon).None()

	s.Rule(AttrpathDots).Inside(syntax.NodeAttrpath, syntax.NodeSelect).Around(syntax.TokDot).None()
	s.Rule(SelectDefault).Inside(syntax.NodeSelect).Around(syntax.TokOrDefault).Single()

	s.Rule(InheritSpacing).Inside(syntax.NodeInherit).After(syntax.TokInherit).Single()
	s.Rule(InheritSpacing).Inside(syntax.NodeInherit).
		Between(
			[]syntax.Kind{syntax.NodeIdent, syntax.NodeString, syntax.NodeInheritFrom},
			[]syntax.Kind{syntax.NodeIdent, syntax.NodeString},
		).SingleOptionalNewline()
	s.Rule(InheritSpacing).Inside(syntax.NodeInheritFrom).After(syntax.TokParenL).None()
	s.Rule(InheritSpacing).Inside(syntax.NodeInheritFrom).Before(syntax.TokParenR).None()

	s.Rule(LetIn).Inside(syntax.NodeLetIn).After(syntax.TokLet).SingleOrNewline()
	s.Rule(LetIn).Inside(syntax.NodeLetIn).Around(syntax.TokIn).SingleOrNewline()
	s.Rule(LetIn).Inside(syntax.NodeLetIn).Between(bindings(), bindings()).SingleOrNewline()

	s.Rule(WithAssert).Inside(syntax.NodeWith).After(syntax.TokWith).Single()
	s.Rule(WithAssert).Inside(syntax.NodeAssert).After(syntax.TokAssert).Single()
	s.Rule(WithAssert).Inside(syntax.NodeWith, syntax.NodeAssert).
		After(syntax.TokSemicolon).SingleOptionalNewline()

	s.Rule(IfThenElse).Inside(syntax.NodeIfElse).After(syntax.TokIf).Single()
	s.Rule(IfThenElse).Inside(syntax.NodeIfElse).
		Around(syntax.TokThen, syntax.TokElse).SingleOptionalNewline()

	s.Rule(ListBrackets).Inside(syntax.NodeList).After(syntax.TokBracketL).SingleOrNewline()
	s.Rule(ListBrackets).Inside(syntax.NodeList).Before(syntax.TokBracketR).SingleOrNewline()
	s.Rule(ListItems).Inside(syntax.NodeList).Before().When(nodeAfterNode()).SingleOptionalNewline()

	s.Rule(Parens).Inside(syntax.NodeParen).After(syntax.TokParenL).NoneOptionalNewline()
	s.Rule(Parens).Inside(syntax.NodeParen).Before(syntax.TokParenR).NoneOptionalNewline()

	s.Rule(BinaryOperators).Inside(syntax.NodeBinOp).Around(binaryOperators...).SingleOptionalNewline()
	s.Rule(BinaryOperators).Inside(syntax.NodeHasAttr).Around(syntax.TokQuestion).Single()
	s.Rule(UnaryOperators).Inside(syntax.NodeUnaryOp).After(syntax.TokInvert, syntax.TokSub).None()

	s.Rule(Application).Inside(syntax.NodeApply).Before().When(nodeAfterNode()).SingleOptionalNewline()

	s.Rule(Interpolation).Inside(syntax.NodeInterpol, syntax.NodeDynamic).After(syntax.TokInterpolStart).None()
	s.Rule(Interpolation).Inside(syntax.NodeInterpol, syntax.NodeDynamic).Before(syntax.TokCurlyR).None()

	return s
}

// Indent returns the built-in indentation rules and anchors for Nix.
func Indent() *dsl.IndentDsl {
	in := dsl.NewIndent()

	in.Anchor("binding", pattern.Kind(syntax.NodeKeyValue, syntax.NodeInherit))

	in.Rule(TopLevel).Inside(syntax.NodeRoot).Column(0)

	in.Rule(LambdaBody).Inside(syntax.NodeLambda).
		When(pattern.LastChild()).When(curried()).Align()

	in.Rule(ClosingDelimiter).Inside(syntax.NodePattern).Matching(syntax.TokComma, syntax.TokCurlyR).Align()
	in.Rule(ClosingDelimiter).Inside(syntax.NodeAttrSet).Matching(syntax.TokCurlyR).Align()
	in.Rule(ClosingDelimiter).Inside(syntax.NodeList).Matching(syntax.TokBracketR).Align()
	in.Rule(ClosingDelimiter).Inside(syntax.NodeParen).Matching(syntax.TokParenR).Align()
	in.Rule(ClosingDelimiter).Inside(syntax.NodeInterpol, syntax.NodeDynamic).Matching(syntax.TokCurlyR).Align()

	in.Rule(LetIn).Inside(syntax.NodeLetIn).Matching(syntax.TokIn).Align()
	in.Rule(LetIn).Inside(syntax.NodeLetIn).When(pattern.LastChild()).Align()

	in.Rule(WithAssert).Inside(syntax.NodeWith, syntax.NodeAssert).When(pattern.LastChild()).Align()

	in.Rule(IfThenElse).Inside(syntax.NodeIfElse).Matching(syntax.TokThen, syntax.TokElse).Align()

	return in
}

func bindings() []syntax.Kind {
	return []syntax.Kind{syntax.NodeKeyValue, syntax.NodeInherit}
}

// firstInParent matches the first element of its parent that is not
// whitespace. Comments count.
func firstInParent() *pattern.Pattern {
	return pattern.Predicate("first", func(e syntax.Element) bool {
		for sib, ok := e.PrevSibling(); ok; sib, ok = sib.PrevSibling() {
			if sib.Kind() != syntax.TokWhitespace {
				return false
			}
		}
		return true
	})
}

// lastInParent matches the last element of its parent that is not
// whitespace. Comments count.
func lastInParent() *pattern.Pattern {
	return pattern.Predicate("last", func(e syntax.Element) bool {
		for sib, ok := e.NextSibling(); ok; sib, ok = sib.NextSibling() {
			if sib.Kind() != syntax.TokWhitespace {
				return false
			}
		}
		return true
	})
}

// nodeAfterNode matches nodes whose previous significant sibling is a node.
func nodeAfterNode() *pattern.Pattern {
	return pattern.Predicate("node-after-node", func(e syntax.Element) bool {
		if !e.IsNode() {
			return false
		}
		prev, ok := e.PrevNonTrivia()
		return ok && prev.IsNode()
	})
}

// curried matches children of a lambda that is the whole file or the body
// of another lambda.
func curried() *pattern.Pattern {
	return pattern.Predicate("curried", func(e syntax.Element) bool {
		lambda := e.Parent()
		if lambda == nil || lambda.Parent == nil {
			return false
		}
		switch lambda.Parent.Kind {
		case syntax.NodeRoot, syntax.NodeLambda:
			return true
		}
		return false
	})
}
