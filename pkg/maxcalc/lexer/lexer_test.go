package lexer

import (
	"testing"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
)

func TestNextToken(t *testing.T) {
	input := `x = 2^3 * (sin(pi/2) + 4i)
y += .5e-3; z -= 1
5 km to mi -> ft [km/h->m/s]`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "x"},
		{ASSIGN, "="},
		{NUMBER, "2"},
		{CARET, "^"},
		{NUMBER, "3"},
		{ASTERISK, "*"},
		{LPAREN, "("},
		{IDENT, "sin"},
		{LPAREN, "("},
		{IDENT, "pi"},
		{SLASH, "/"},
		{NUMBER, "2"},
		{RPAREN, ")"},
		{PLUS, "+"},
		{IMAGINARY, "4i"},
		{RPAREN, ")"},
		{IDENT, "y"},
		{PLUS_ASSIGN, "+="},
		{NUMBER, ".5e-3"},
		{SEMICOLON, ";"},
		{IDENT, "z"},
		{MINUS_ASSIGN, "-="},
		{NUMBER, "1"},
		{NUMBER, "5"},
		{IDENT, "km"},
		{TO, "to"},
		{IDENT, "mi"},
		{ARROW, "->"},
		{IDENT, "ft"},
		{CONVERSION, "[km/h->m/s]"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCompoundOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"+=", PLUS_ASSIGN},
		{"-=", MINUS_ASSIGN},
		{"*=", ASTERISK_ASSIGN},
		{"/=", SLASH_ASSIGN},
		{"^=", CARET_ASSIGN},
		{"->", ARROW},
		{"=", ASSIGN},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, tok.Type)
		}
		if !tok.Type.IsAssignment() && tt.expected != ARROW {
			t.Errorf("%q: expected an assignment operator", tt.input)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		typ      TokenType
		literal  string
		nextType TokenType
	}{
		{"42", NUMBER, "42", EOF},
		{"3.25", NUMBER, "3.25", EOF},
		{".5", NUMBER, ".5", EOF},
		{"1e10", NUMBER, "1e10", EOF},
		{"1E+10", NUMBER, "1E+10", EOF},
		{"4i", IMAGINARY, "4i", EOF},
		{"2.5j", IMAGINARY, "2.5j", EOF},
		{"1e3i", IMAGINARY, "1e3i", EOF},
		{"2in", NUMBER, "2", IDENT},
		{"3 i", NUMBER, "3", IDENT},
		{"7km", NUMBER, "7", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != tt.typ || tok.Literal != tt.literal {
				t.Fatalf("got %s %q, want %s %q", tok.Type, tok.Literal, tt.typ, tt.literal)
			}
			if next := l.NextToken(); next.Type != tt.nextType {
				t.Fatalf("next token: got %s, want %s", next.Type, tt.nextType)
			}
		})
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  merrors.Kind
		arg   string
	}{
		{"1.2.3", merrors.InvalidNumber, "1.2.3"},
		{"1e", merrors.InvalidNumber, "1e"},
		{"1e+", merrors.InvalidNumber, "1e+"},
		{"5.", merrors.InvalidNumber, "5."},
		{".", merrors.InvalidNumber, "."},
		{"2ii", merrors.InvalidNumber, ""},
		{"2 $ 3", merrors.UnknownToken, "$"},
		{"a & b", merrors.UnknownToken, "&"},
		{"5 [km->", merrors.InvalidUnitConversionSyntax, ""},
		{"5 [km->]", merrors.InvalidUnitConversionSyntax, ""},
		{"5 [km mi]", merrors.InvalidUnitConversionSyntax, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			e := merrors.As(err)
			if e.Kind != tt.kind {
				t.Fatalf("kind: got %s, want %s", e.Kind, tt.kind)
			}
			if e.Arg(0) != tt.arg {
				t.Errorf("arg: got %q, want %q", e.Arg(0), tt.arg)
			}
		})
	}
}

func TestConversionToken(t *testing.T) {
	tests := []struct {
		input    string
		from, to string
	}{
		{"[km->mi]", "km", "mi"},
		{"[ km -> mi ]", "km", "mi"},
		{"[->mi]", "", "mi"},
		{"[km/h->m/s]", "km/h", "m/s"},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != CONVERSION {
			t.Fatalf("%q: expected CONVERSION, got %s", tt.input, tok.Type)
		}
		if tok.From != tt.from || tok.To != tt.to {
			t.Errorf("%q: got %q->%q, want %q->%q", tt.input, tok.From, tok.To, tt.from, tt.to)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("1 +\n  foo")

	tok := l.NextToken()
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("first token at %d:%d", tok.Line, tok.Column)
	}
	l.NextToken()
	tok = l.NextToken()
	if tok.Line != 2 || tok.Column != 3 {
		t.Errorf("identifier at %d:%d, want 2:3", tok.Line, tok.Column)
	}

	_, err := Tokenize("12 + #")
	e := merrors.As(err)
	if e.Column != 6 {
		t.Errorf("error column: got %d, want 6", e.Column)
	}
}

func TestKeywordsIgnoreCase(t *testing.T) {
	if LookupIdent("TO") != TO {
		t.Error("TO should be a keyword")
	}
	if LookupIdent("tomato") != IDENT {
		t.Error("tomato is an identifier")
	}
}

func TestPeekTokenDoesNotConsume(t *testing.T) {
	l := New("km/h")
	l.NextToken()

	peeked := l.PeekToken()
	if peeked.Type != SLASH {
		t.Fatalf("PeekToken: got %s %q", peeked.Type, peeked.Literal)
	}
	if tok := l.NextToken(); tok.Type != SLASH {
		t.Fatalf("NextToken after peek: got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Literal != "h" {
		t.Fatalf("expected h, got %q", tok.Literal)
	}
}
