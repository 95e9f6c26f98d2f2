package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var VeilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// String literals (console format strings)
		{"String", `"(\\.|[^"\\])*"`, nil},

		// Address literals (must precede Ident)
		{"Address", `aleo1[a-z0-9]+`, nil},

		// Integer literals with an optional primitive type suffix
		{"Integer", `[0-9]+(i8|i16|i32|i64|i128|u8|u16|u32|u64|u128|field|group|scalar)?`, nil},

		// Keywords and identifiers. '$' never starts an identifier; it only
		// appears inside compiler-generated names, which must survive a
		// re-parse of emitted output.
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_$]*`, nil},

		// Operators (longest first)
		{"Operator", `(>>>=|\*\*=|<<=|>>=|>>>|&&=|\|\|=|\+=|-=|\*=|/=|&=|\|=|\^=|==|!=|<=|>=|&&|\|\||\*\*|<<|>>|->|\.\.|::|[-+*/&|^!<>=?:.])`, nil},

		// Punctuation
		{"Punctuation", `[{}()\[\],;@]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
