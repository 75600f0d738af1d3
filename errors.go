package main

import (
	"errors"
	"fmt"
)

var (
	ErrTokensExhausted      = errors.New("token stream exhausted")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrOutputConflict       = errors.New("output path shared by several units")
)

// LexError reports a span of source that is not a token.
type LexError struct {
	Line   int
	Column int
	Text   string
	Reason string
	err    error
}

func (e *LexError) Error() string {
	if e.Line == 0 {
		return "lex error: " + e.Reason
	}
	return fmt.Sprintf("lex error at %d:%d: %s %q", e.Line, e.Column, e.Reason, e.Text)
}

func (e *LexError) Unwrap() error {
	return e.err
}

// SyntaxError reports a token that does not fit the production being compiled.
type SyntaxError struct {
	Expected string
	Actual   Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: expected %s, got %s", e.Expected, e.Actual)
}

// UnexpectedEndOfInputError is returned when the tokens run out in the middle of a construct.
type UnexpectedEndOfInputError struct {
	Expected string
}

func (e *UnexpectedEndOfInputError) Error() string {
	return fmt.Sprintf("unexpected end of input: expected %s", e.Expected)
}

func (e *UnexpectedEndOfInputError) Is(target error) bool {
	return target == ErrUnexpectedEndOfInput
}

// UnresolvedSymbolError reports an identifier that is declared in neither scope,
// or a member that cannot be resolved on its receiver.
type UnresolvedSymbolError struct {
	Name   string
	Token  Token
	Reason string
}

func (e *UnresolvedSymbolError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not declared in class or subroutine scope"
	}
	if e.Token.tokenType == InvalidToken {
		return fmt.Sprintf("unresolved symbol %q: %s", e.Name, reason)
	}
	return fmt.Sprintf("unresolved symbol %q at %d:%d: %s", e.Name, e.Token.line, e.Token.column, reason)
}

// TypeMismatchError is returned by a token accessor called on a token of another kind.
type TypeMismatchError struct {
	Expected TokenType
	Actual   Token
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: current token is not a %s but %s", e.Expected, e.Actual)
}
