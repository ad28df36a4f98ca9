// Package token defines the lexical token set for PSR source files.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	ILLEGAL Kind = iota
	EOF

	// Literals and identifiers
	IDENT    // foo, Counter
	NUMBER   // 42, 0xff, 1_000, 10n
	STRING   // "abc", 'abc'
	TEMPLATE // `a ${b} c`, stored as raw text including interpolations
	REGEX    // /ab+c/gi
	JSXTEXT  // raw text between JSX tags

	// Keywords
	COMPONENT
	IMPORT
	EXPORT
	FROM
	DEFAULT
	CONST
	LET
	VAR
	FUNCTION
	RETURN
	IF
	ELSE
	SWITCH
	CASE
	FOR
	WHILE
	DO
	BREAK
	CONTINUE
	TRY
	CATCH
	FINALLY
	THROW
	NEW
	DELETE
	TYPEOF
	INSTANCEOF
	IN
	OF
	CLASS
	EXTENDS
	IMPLEMENTS
	INTERFACE
	ENUM
	NAMESPACE
	TYPE
	AS
	ASYNC
	AWAIT
	YIELD
	STATIC
	PUBLIC
	PRIVATE
	PROTECTED
	READONLY
	DECLARE
	TRUE
	FALSE
	NULL
	UNDEFINED
	THIS
	SUPER
	VOID

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	SEMICOLON // ;
	COLON     // :
	COMMA     // ,
	DOT       // .
	ELLIPSIS  // ...
	QUESTION  // ?
	QUESTDOT  // ?.
	ARROW     // =>
	AT        // @

	// Operators
	ASSIGN         // =
	PLUS           // +
	MINUS          // -
	STAR           // *
	SLASH          // /
	PERCENT        // %
	POWER          // **
	PLUSPLUS       // ++
	MINUSMINUS     // --
	PLUSASSIGN     // +=
	MINUSASSIGN    // -=
	STARASSIGN     // *=
	SLASHASSIGN    // /=
	PERCENTASSIGN  // %=
	AMPASSIGN      // &=
	PIPEASSIGN     // |=
	CARETASSIGN    // ^=
	ANDASSIGN      // &&=
	ORASSIGN       // ||=
	COALESCEASSIGN // ??=
	EQ             // ==
	NEQ            // !=
	STRICTEQ       // ===
	STRICTNEQ      // !==
	LT             // <
	GT             // >
	LTE            // <=
	GTE            // >=
	AND            // &&
	OR             // ||
	COALESCE       // ??
	NOT            // !
	BITAND         // &
	BITOR          // |
	BITXOR         // ^
	BITNOT         // ~
	SHL            // <<
	SHR            // >>
	USHR           // >>>

	// JSX punctuation
	JSXOPEN      // < opening a JSX tag
	JSXCLOSE     // > closing a JSX tag
	JSXSLASH     // / in </div> or <div/>
	GENERICOPEN  // < opening a type-argument list
	GENERICCLOSE // > closing a type-argument list
)

var kindNames = map[Kind]string{
	ILLEGAL:        "ILLEGAL",
	EOF:            "EOF",
	IDENT:          "IDENT",
	NUMBER:         "NUMBER",
	STRING:         "STRING",
	TEMPLATE:       "TEMPLATE",
	REGEX:          "REGEX",
	JSXTEXT:        "JSX_TEXT",
	COMPONENT:      "component",
	IMPORT:         "import",
	EXPORT:         "export",
	FROM:           "from",
	DEFAULT:        "default",
	CONST:          "const",
	LET:            "let",
	VAR:            "var",
	FUNCTION:       "function",
	RETURN:         "return",
	IF:             "if",
	ELSE:           "else",
	SWITCH:         "switch",
	CASE:           "case",
	FOR:            "for",
	WHILE:          "while",
	DO:             "do",
	BREAK:          "break",
	CONTINUE:       "continue",
	TRY:            "try",
	CATCH:          "catch",
	FINALLY:        "finally",
	THROW:          "throw",
	NEW:            "new",
	DELETE:         "delete",
	TYPEOF:         "typeof",
	INSTANCEOF:     "instanceof",
	IN:             "in",
	OF:             "of",
	CLASS:          "class",
	EXTENDS:        "extends",
	IMPLEMENTS:     "implements",
	INTERFACE:      "interface",
	ENUM:           "enum",
	NAMESPACE:      "namespace",
	TYPE:           "type",
	AS:             "as",
	ASYNC:          "async",
	AWAIT:          "await",
	YIELD:          "yield",
	STATIC:         "static",
	PUBLIC:         "public",
	PRIVATE:        "private",
	PROTECTED:      "protected",
	READONLY:       "readonly",
	DECLARE:        "declare",
	TRUE:           "true",
	FALSE:          "false",
	NULL:           "null",
	UNDEFINED:      "undefined",
	THIS:           "this",
	SUPER:          "super",
	VOID:           "void",
	LPAREN:         "(",
	RPAREN:         ")",
	LBRACE:         "{",
	RBRACE:         "}",
	LBRACKET:       "[",
	RBRACKET:       "]",
	SEMICOLON:      ";",
	COLON:          ":",
	COMMA:          ",",
	DOT:            ".",
	ELLIPSIS:       "...",
	QUESTION:       "?",
	QUESTDOT:       "?.",
	ARROW:          "=>",
	AT:             "@",
	ASSIGN:         "=",
	PLUS:           "+",
	MINUS:          "-",
	STAR:           "*",
	SLASH:          "/",
	PERCENT:        "%",
	POWER:          "**",
	PLUSPLUS:       "++",
	MINUSMINUS:     "--",
	PLUSASSIGN:     "+=",
	MINUSASSIGN:    "-=",
	STARASSIGN:     "*=",
	SLASHASSIGN:    "/=",
	PERCENTASSIGN:  "%=",
	AMPASSIGN:      "&=",
	PIPEASSIGN:     "|=",
	CARETASSIGN:    "^=",
	ANDASSIGN:      "&&=",
	ORASSIGN:       "||=",
	COALESCEASSIGN: "??=",
	EQ:             "==",
	NEQ:            "!=",
	STRICTEQ:       "===",
	STRICTNEQ:      "!==",
	LT:             "<",
	GT:             ">",
	LTE:            "<=",
	GTE:            ">=",
	AND:            "&&",
	OR:             "||",
	COALESCE:       "??",
	NOT:            "!",
	BITAND:         "&",
	BITOR:          "|",
	BITXOR:         "^",
	BITNOT:         "~",
	SHL:            "<<",
	SHR:            ">>",
	USHR:           ">>>",
	JSXOPEN:        "JSX<",
	JSXCLOSE:       "JSX>",
	JSXSLASH:       "JSX/",
	GENERICOPEN:    "TYPE<",
	GENERICCLOSE:   "TYPE>",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps source spellings to keyword kinds.
var keywords = map[string]Kind{
	"component":  COMPONENT,
	"import":     IMPORT,
	"export":     EXPORT,
	"from":       FROM,
	"default":    DEFAULT,
	"const":      CONST,
	"let":        LET,
	"var":        VAR,
	"function":   FUNCTION,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"switch":     SWITCH,
	"case":       CASE,
	"for":        FOR,
	"while":      WHILE,
	"do":         DO,
	"break":      BREAK,
	"continue":   CONTINUE,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"throw":      THROW,
	"new":        NEW,
	"delete":     DELETE,
	"typeof":     TYPEOF,
	"instanceof": INSTANCEOF,
	"in":         IN,
	"of":         OF,
	"class":      CLASS,
	"extends":    EXTENDS,
	"implements": IMPLEMENTS,
	"interface":  INTERFACE,
	"enum":       ENUM,
	"namespace":  NAMESPACE,
	"type":       TYPE,
	"as":         AS,
	"async":      ASYNC,
	"await":      AWAIT,
	"yield":      YIELD,
	"static":     STATIC,
	"public":     PUBLIC,
	"private":    PRIVATE,
	"protected":  PROTECTED,
	"readonly":   READONLY,
	"declare":    DECLARE,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
	"undefined":  UNDEFINED,
	"this":       THIS,
	"super":      SUPER,
	"void":       VOID,
}

// Lookup maps an identifier spelling to its keyword kind, or IDENT.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Position is a line/column/offset triple into the original source.
// Lines and columns are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token. Tokens are immutable once produced.
type Token struct {
	Kind  Kind
	Text  string
	Start Position
	End   Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Start)
}

// Is reports whether the token has any of the given kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// IsKeyword reports whether the token is any reserved word.
func (t Token) IsKeyword() bool {
	return t.Kind >= COMPONENT && t.Kind <= VOID
}

// IsAssignment reports whether the token is an assignment operator.
func (t Token) IsAssignment() bool {
	switch t.Kind {
	case ASSIGN, PLUSASSIGN, MINUSASSIGN, STARASSIGN, SLASHASSIGN,
		PERCENTASSIGN, AMPASSIGN, PIPEASSIGN, CARETASSIGN,
		ANDASSIGN, ORASSIGN, COALESCEASSIGN:
		return true
	}
	return false
}
