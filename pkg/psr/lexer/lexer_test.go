package lexer

import (
	"testing"

	"github.com/psr-lang/psr/pkg/psr/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	tokens, diags := Tokenize(src)
	if diags.HasErrors() {
		t.Fatalf("unexpected lex errors for %q: %v", src, diags)
	}
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func TestGenericVersusComparison(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "generic call with union type",
			src:  "createSignal<IUser | null>(null)",
			want: []token.Kind{
				token.IDENT, token.GENERICOPEN, token.IDENT, token.BITOR, token.NULL,
				token.GENERICCLOSE, token.LPAREN, token.NULL, token.RPAREN,
			},
		},
		{
			name: "greater-or-equal stays one token",
			src:  "a >= b",
			want: []token.Kind{token.IDENT, token.GTE, token.IDENT},
		},
		{
			name: "comparison chain is not a generic",
			src:  "a < b && c > d",
			want: []token.Kind{
				token.IDENT, token.LT, token.IDENT, token.AND,
				token.IDENT, token.GT, token.IDENT,
			},
		},
		{
			name: "nested generic closes one angle at a time",
			src:  "wrap<Promise<Array<T>>>(x)",
			want: []token.Kind{
				token.IDENT, token.GENERICOPEN, token.IDENT,
				token.GENERICOPEN, token.IDENT, token.GENERICOPEN, token.IDENT,
				token.GENERICCLOSE, token.GENERICCLOSE, token.GENERICCLOSE,
				token.LPAREN, token.IDENT, token.RPAREN,
			},
		},
		{
			name: "shift right survives",
			src:  "a >> b",
			want: []token.Kind{token.IDENT, token.SHR, token.IDENT},
		},
		{
			name: "unsigned shift right survives",
			src:  "a >>> b",
			want: []token.Kind{token.IDENT, token.USHR, token.IDENT},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := kinds(t, tc.src)
			assertKinds(t, got, tc.want)
		})
	}
}

func TestJSXTokenization(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "self closing element",
			src:  "const x = <br/>;",
			want: []token.Kind{
				token.CONST, token.IDENT, token.ASSIGN,
				token.JSXOPEN, token.IDENT, token.JSXSLASH, token.JSXCLOSE,
				token.SEMICOLON,
			},
		},
		{
			name: "element with text child",
			src:  "const x = <b>hi</b>;",
			want: []token.Kind{
				token.CONST, token.IDENT, token.ASSIGN,
				token.JSXOPEN, token.IDENT, token.JSXCLOSE,
				token.JSXTEXT,
				token.JSXOPEN, token.JSXSLASH, token.IDENT, token.JSXCLOSE,
				token.SEMICOLON,
			},
		},
		{
			name: "expression child reenters normal mode",
			src:  "const x = <b>{a + 1}</b>;",
			want: []token.Kind{
				token.CONST, token.IDENT, token.ASSIGN,
				token.JSXOPEN, token.IDENT, token.JSXCLOSE,
				token.LBRACE, token.IDENT, token.PLUS, token.NUMBER, token.RBRACE,
				token.JSXOPEN, token.JSXSLASH, token.IDENT, token.JSXCLOSE,
				token.SEMICOLON,
			},
		},
		{
			name: "fragment",
			src:  "const x = <></>;",
			want: []token.Kind{
				token.CONST, token.IDENT, token.ASSIGN,
				token.JSXOPEN, token.JSXCLOSE,
				token.JSXOPEN, token.JSXSLASH, token.JSXCLOSE,
				token.SEMICOLON,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := kinds(t, tc.src)
			assertKinds(t, got, tc.want)
		})
	}
}

func TestTemplatesAndRegex(t *testing.T) {
	got := kinds(t, "const s = `a ${b} c`;")
	assertKinds(t, got, []token.Kind{
		token.CONST, token.IDENT, token.ASSIGN, token.TEMPLATE, token.SEMICOLON,
	})

	got = kinds(t, "const r = /ab+c/gi;")
	assertKinds(t, got, []token.Kind{
		token.CONST, token.IDENT, token.ASSIGN, token.REGEX, token.SEMICOLON,
	})

	// slash after an identifier is division, not a regex
	got = kinds(t, "a / b")
	assertKinds(t, got, []token.Kind{token.IDENT, token.SLASH, token.IDENT})
}

func TestNumberForms(t *testing.T) {
	for _, src := range []string{"0xff", "0b1010", "0o777", "1_000_000", "1.5e-3", "42n"} {
		tokens, diags := Tokenize(src)
		if diags.HasErrors() {
			t.Fatalf("lex error for %q: %v", src, diags)
		}
		if tokens[0].Kind != token.NUMBER || tokens[0].Text != src {
			t.Errorf("Tokenize(%q) = %v %q, want NUMBER %q", src, tokens[0].Kind, tokens[0].Text, src)
		}
	}
}

func TestComponentKeyword(t *testing.T) {
	got := kinds(t, "component App() {}")
	assertKinds(t, got, []token.Kind{
		token.COMPONENT, token.IDENT, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE,
	})
}

func TestCollectRecovery(t *testing.T) {
	lx := New("const a = 'unterminated", Options{Recovery: Collect})
	tokens, diags := lx.Tokenize()
	if !diags.HasErrors() {
		t.Fatal("expected at least one lexical error")
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		t.Fatal("collect mode must still reach EOF")
	}
}

func assertKinds(t *testing.T, got, want []token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("kind[%d] = %v, want %v (full: %v vs %v)", i, got[i], want[i], got, want)
		}
	}
}
