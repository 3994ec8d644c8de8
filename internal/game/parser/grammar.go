package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// commandLexer tokenises a command line. Rule order matters: dice tokens
// must win over integers and the "on" separator over plain words.
var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Profile", Pattern: `#\w+`},
	{Name: "Macro", Pattern: `=\w+`},
	{Name: "Dice", Pattern: `\d*[dD]\d+[tT]?`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Attack", Pattern: `!{1,3}`},
	{Name: "Sign", Pattern: `[+-]`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Keyword", Pattern: `\b[oO][nN]\b`},
	{Name: "Word", Pattern: `[A-Za-z]+(?:['_-][A-Za-z]+)*`},
})

// skillTestGrammar is either a whole-line macro reference or a test.
type skillTestGrammar struct {
	Macro string    `  @Macro`
	Test  *testNode `| @@`
}

type testNode struct {
	Profile string      `@Profile?`
	Head    *headNode   `@@`
	Terms   []*termNode `@@*`
	Attack  string      `@Attack?`
	Repeats string      `( Star @Int )?`
}

type headNode struct {
	Command *commandNode `  @@`
	Flat    *flatNode    `| @@`
}

type commandNode struct {
	Left  []string `@Word+`
	Right []string `( Keyword @Word+ )?`
}

type flatNode struct {
	Sign  string `@Sign?`
	Value string `@Int`
}

type termNode struct {
	Sign  string `@Sign`
	Value string `@Int`
}

// diceGrammar is a signed sum of dice, bonus and integer operands.
type diceGrammar struct {
	Profile string           `@Profile?`
	First   *leadingOperand  `@@`
	Rest    []*signedOperand `@@*`
}

type leadingOperand struct {
	Sign    string       `@Sign?`
	Operand *operandNode `@@`
}

type signedOperand struct {
	Sign    string       `@Sign`
	Operand *operandNode `@@`
}

type operandNode struct {
	Dice  string `  @Dice`
	Int   string `| @Int`
	Bonus string `| @Word`
}

var (
	skillTestParser = participle.MustBuild[skillTestGrammar](
		participle.Lexer(commandLexer),
		participle.Elide("Whitespace"),
	)
	diceParser = participle.MustBuild[diceGrammar](
		participle.Lexer(commandLexer),
		participle.Elide("Whitespace"),
	)
)
