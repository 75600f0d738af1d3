package main

import (
	"fmt"
	"strconv"
)

// MachineWord is the word size of the Hack platform.
type MachineWord int16

const MaxIntegerConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolTokenType TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

// KeywordType enumerates the reserved words of the language.
type KeywordType int

const (
	InvalidKeyword KeywordType = iota
	ClassKeyword
	ConstructorKeyword
	FunctionKeyword
	MethodKeyword
	FieldKeyword
	StaticKeyword
	VarKeyword
	IntKeyword
	CharKeyword
	BooleanKeyword
	VoidKeyword
	TrueKeyword
	FalseKeyword
	NullKeyword
	ThisKeyword
	LetKeyword
	DoKeyword
	IfKeyword
	ElseKeyword
	WhileKeyword
	ReturnKeyword
)

var keywords = map[string]KeywordType{
	"class":       ClassKeyword,
	"constructor": ConstructorKeyword,
	"function":    FunctionKeyword,
	"method":      MethodKeyword,
	"field":       FieldKeyword,
	"static":      StaticKeyword,
	"var":         VarKeyword,
	"int":         IntKeyword,
	"char":        CharKeyword,
	"boolean":     BooleanKeyword,
	"void":        VoidKeyword,
	"true":        TrueKeyword,
	"false":       FalseKeyword,
	"null":        NullKeyword,
	"this":        ThisKeyword,
	"let":         LetKeyword,
	"do":          DoKeyword,
	"if":          IfKeyword,
	"else":        ElseKeyword,
	"while":       WhileKeyword,
	"return":      ReturnKeyword,
}

func (k KeywordType) String() string {
	for terminal, keyword := range keywords {
		if keyword == k {
			return terminal
		}
	}
	return "invalid keyword"
}

const symbols = "{}()[].,;+-*/&|<>=~"

// Token is a classified lexeme. String constants hold their text without quotes.
type Token struct {
	tokenType TokenType
	terminal  string
	line      int
	column    int
}

func (t Token) Type() TokenType {
	return t.tokenType
}

func (t Token) Terminal() string {
	return t.terminal
}

// Position returns the 1-based line and column the token starts at.
func (t Token) Position() (line, column int) {
	return t.line, t.column
}

func (t Token) isSymbol(symbol byte) bool {
	return t.tokenType == SymbolTokenType && t.terminal[0] == symbol
}

func (t Token) isKeyword(keyword KeywordType) bool {
	return t.tokenType == Keyword && keywords[t.terminal] == keyword
}

func (t Token) String() string {
	if t.tokenType == InvalidToken {
		return "end of input"
	}
	if t.tokenType == StringConstant {
		return fmt.Sprintf("%s %q at %d:%d", t.tokenType, t.terminal, t.line, t.column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d", t.tokenType, t.terminal, t.line, t.column)
}

func (t Token) asInt() (MachineWord, error) {
	word, err := strconv.Atoi(t.terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxIntegerConstant || word < 0 {
		return 0, fmt.Errorf("cannot parse %q as 16 bit int", t.terminal)
	}
	return MachineWord(word), nil
}
