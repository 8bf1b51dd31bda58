package nix_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()

	tree, err := nix.New().Parse(context.Background(), "test.nix", []byte(src))
	require.NoError(t, err)
	return tree
}

func TestParseLambda(t *testing.T) {
	t.Parallel()

	tree := parse(t, "x: x")

	want := "NODE_ROOT 0..4\n" +
		"  NODE_LAMBDA 0..4\n" +
		"    NODE_IDENT 0..1\n" +
		"      TOKEN_IDENT 0..1 \"x\"\n" +
		"    TOKEN_COLON 1..2 \":\"\n" +
		"    TOKEN_WHITESPACE 2..3 \" \"\n" +
		"    NODE_IDENT 3..4\n" +
		"      TOKEN_IDENT 3..4 \"x\"\n"
	assert.Equal(t, want, syntax.Dump(tree.Root))
}

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	tree := parse(t, "a + b * c")

	want := "NODE_ROOT 0..9\n" +
		"  NODE_BIN_OP 0..9\n" +
		"    NODE_IDENT 0..1\n" +
		"      TOKEN_IDENT 0..1 \"a\"\n" +
		"    TOKEN_WHITESPACE 1..2 \" \"\n" +
		"    TOKEN_ADD 2..3 \"+\"\n" +
		"    TOKEN_WHITESPACE 3..4 \" \"\n" +
		"    NODE_BIN_OP 4..9\n" +
		"      NODE_IDENT 4..5\n" +
		"        TOKEN_IDENT 4..5 \"b\"\n" +
		"      TOKEN_WHITESPACE 5..6 \" \"\n" +
		"      TOKEN_MUL 6..7 \"*\"\n" +
		"      TOKEN_WHITESPACE 7..8 \" \"\n" +
		"      NODE_IDENT 8..9\n" +
		"        TOKEN_IDENT 8..9 \"c\"\n"
	assert.Equal(t, want, syntax.Dump(tree.Root))
}

func TestParseConstructs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kinds map[syntax.Kind]int
	}{
		{
			name:  "pattern lambda",
			input: "{ a, b ? 1, ... }@args: a",
			kinds: map[syntax.Kind]int{
				syntax.NodeLambda:   1,
				syntax.NodePattern:  1,
				syntax.NodePatEntry: 2,
				syntax.NodePatBind:  1,
			},
		},
		{
			name:  "let in",
			input: "let x = 1; y = x; in x",
			kinds: map[syntax.Kind]int{syntax.NodeLetIn: 1, syntax.NodeKeyValue: 2},
		},
		{
			name:  "interpolated string",
			input: `"a ${b} c"`,
			kinds: map[syntax.Kind]int{syntax.NodeString: 1, syntax.NodeInterpol: 1},
		},
		{
			name:  "indented string",
			input: "''\n  foo ${bar}\n''",
			kinds: map[syntax.Kind]int{syntax.NodeString: 1, syntax.NodeInterpol: 1},
		},
		{
			name:  "select with default",
			input: "a.b.c or d",
			kinds: map[syntax.Kind]int{syntax.NodeSelect: 1, syntax.NodeAttrpath: 1},
		},
		{
			name:  "has attr",
			input: "x ? y",
			kinds: map[syntax.Kind]int{syntax.NodeHasAttr: 1},
		},
		{
			name:  "inherit",
			input: "rec { inherit (a) b c; inherit d; }",
			kinds: map[syntax.Kind]int{syntax.NodeInherit: 2, syntax.NodeInheritFrom: 1},
		},
		{
			name:  "control flow",
			input: "assert a; with b; if c then d else e",
			kinds: map[syntax.Kind]int{syntax.NodeAssert: 1, syntax.NodeWith: 1, syntax.NodeIfElse: 1},
		},
		{
			name:  "application",
			input: "f x y",
			kinds: map[syntax.Kind]int{syntax.NodeApply: 2},
		},
		{
			name:  "unary",
			input: "!a || -b < 0",
			kinds: map[syntax.Kind]int{syntax.NodeUnaryOp: 2, syntax.NodeBinOp: 2},
		},
		{
			name:  "list and paths",
			input: "[ ./a.nix <nixpkgs> https://nixos.org ]",
			kinds: map[syntax.Kind]int{syntax.NodeList: 1, syntax.NodePath: 2, syntax.NodeLiteral: 1},
		},
		{
			name:  "dynamic attribute",
			input: `{ ${a} = 1; "b" = 2; }`,
			kinds: map[syntax.Kind]int{syntax.NodeDynamic: 1, syntax.NodeString: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tree := parse(t, tc.input)
			for kind, count := range tc.kinds {
				assert.Len(t, syntax.FindByKind(tree.Root, kind), count, "count of %s", kind)
			}
		})
	}
}

func TestParseTreeInvariants(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"  # only a comment\n",
		"{\n  a = 1; # trailing\n  b = [ 1 2 ];\n}\n",
		"{ pkgs ? import <nixpkgs> {} }:\n\npkgs.mkShell {\n  buildInputs = with pkgs; [ go ];\n}\n",
		"let\n  f = x: y: x + y;\nin\n  f 1 2\n",
		"''\n  line one\n    line two\n''\n",
	}

	for _, input := range inputs {
		tree := parse(t, input)

		assert.Equal(t, input, string(tree.Content))
		assert.True(t, syntax.ValidateTokens(tree.Tokens, len(tree.Content)))

		for e := range syntax.Preorder(tree.Root) {
			n := e.Node()
			if n == nil || n.Parent == nil {
				continue
			}
			assert.False(t, tree.Tokens[n.FirstToken].Kind.IsTrivia(), "%s starts with trivia", n.Kind)
			assert.False(t, tree.Tokens[n.LastToken].Kind.IsTrivia(), "%s ends with trivia", n.Kind)
		}
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		line    int
		column  int
		message string
	}{
		{
			name:    "missing value",
			input:   "{\n  a = ;\n}",
			line:    2,
			column:  7,
			message: "expected expression, got TOKEN_SEMICOLON",
		},
		{
			name:    "missing in",
			input:   "let x = 1;",
			line:    1,
			column:  11,
			message: "expected TOKEN_IN, got end of input",
		},
		{
			name:    "unterminated comment",
			input:   "{\n  a = 1; /* note\n}",
			line:    2,
			column:  10,
			message: "unterminated comment",
		},
		{
			name:    "bare comment opener",
			input:   "/*",
			line:    1,
			column:  1,
			message: "unterminated comment",
		},
		{
			name:    "unterminated string",
			input:   `"abc`,
			line:    1,
			column:  5,
			message: "expected TOKEN_QUOTE, got end of input",
		},
		{
			name:    "unterminated indented string",
			input:   "''\n  abc\n",
			line:    3,
			column:  1,
			message: "expected TOKEN_IND_QUOTE, got end of input",
		},
		{
			name:    "trailing tokens",
			input:   "a )",
			line:    1,
			column:  3,
			message: "unexpected TOKEN_R_PAREN after expression",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := nix.New().Parse(context.Background(), "bad.nix", []byte(tc.input))
			require.Error(t, err)

			var parseErr *nix.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tc.line, parseErr.Line)
			assert.Equal(t, tc.column, parseErr.Column)
			assert.Equal(t, tc.message, parseErr.Message)
			assert.Contains(t, err.Error(), "bad.nix:")
		})
	}
}

func TestParseCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := nix.New().Parse(ctx, "", []byte("1"))
	require.ErrorIs(t, err, context.Canceled)
}
