package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	symbolRegex          = regexp.MustCompile(`^[\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]`)
	integerConstantRegex = regexp.MustCompile(`^\d+$`)
	stringConstantRegex  = regexp.MustCompile(`^"[^"\n]*"`)
	wordRegex            = regexp.MustCompile(`^\w+`)
	identifierRegex      = regexp.MustCompile(`^[a-zA-Z_]\w*$`)
)

// stripComments blanks out line and block comments. Newlines inside comments are
// kept so that token positions still refer to the unstripped input.
func stripComments(source string) (string, error) {
	var (
		out                 strings.Builder
		inString            bool
		line, column        = 1, 1
		startLine, startCol int
	)
	out.Grow(len(source))

	for i := 0; i < len(source); i++ {
		char := source[i]

		switch {
		case inString:
			if char == '"' || char == '\n' {
				inString = false
			}
		case char == '"':
			inString = true
		case char == '/' && i+1 < len(source) && source[i+1] == '/':
			// Discard until newline character
			for i < len(source) && source[i] != '\n' {
				out.WriteByte(' ')
				i++
			}
			if i == len(source) {
				return out.String(), nil
			}
			char = source[i]
		case char == '/' && i+1 < len(source) && source[i+1] == '*':
			startLine, startCol = line, column
			end := strings.Index(source[i+2:], "*/")
			if end < 0 {
				return "", &LexError{Line: startLine, Column: startCol, Text: "/*", Reason: "unclosed comment"}
			}
			// Discard until */
			for _, c := range []byte(source[i : i+2+end+2]) {
				if c == '\n' {
					out.WriteByte('\n')
					line, column = line+1, 1
				} else {
					out.WriteByte(' ')
					column++
				}
			}
			i += 2 + end + 1
			continue
		}

		out.WriteByte(char)
		if char == '\n' {
			line, column = line+1, 1
		} else {
			column++
		}
	}

	return out.String(), nil
}

// matchToken classifies the token at the start of text and returns its length in bytes.
func matchToken(text string, line, column int) (token Token, length int, err error) {
	token.line, token.column = line, column

	if match := stringConstantRegex.FindString(text); match != "" {
		token.tokenType = StringConstant
		token.terminal = match[1 : len(match)-1]
		if err := checkStringConstant(token.terminal, line, column); err != nil {
			return token, 0, err
		}
		return token, len(match), nil
	}
	if text[0] == '"' {
		end := strings.IndexByte(text, '\n')
		if end < 0 {
			end = len(text)
		}
		return token, 0, &LexError{Line: line, Column: column, Text: text[:end], Reason: "unterminated string constant"}
	}

	if word := wordRegex.FindString(text); word != "" {
		token.terminal = word
		switch {
		case keywords[word] != InvalidKeyword:
			token.tokenType = Keyword
		case integerConstantRegex.MatchString(word):
			token.tokenType = IntegerConstant
			if _, err := token.asInt(); err != nil {
				return token, 0, &LexError{Line: line, Column: column, Text: word, Reason: "integer constant out of range", err: err}
			}
		case identifierRegex.MatchString(word):
			token.tokenType = Identifier
		default:
			return token, 0, &LexError{Line: line, Column: column, Text: word, Reason: "malformed token"}
		}
		return token, len(word), nil
	}

	if match := symbolRegex.FindString(text); match != "" {
		token.tokenType = SymbolTokenType
		token.terminal = match
		return token, len(match), nil
	}

	r, _ := utf8.DecodeRuneInString(text)
	return token, 0, &LexError{Line: line, Column: column, Text: string(r), Reason: "unknown token"}
}

// checkStringConstant rejects string constants the platform's String class cannot hold: characters
// outside printable ASCII, or more characters than a machine word can count.
func checkStringConstant(text string, line, column int) error {
	if len(text) > MaxIntegerConstant {
		return &LexError{Line: line, Column: column, Text: text[:16] + "...", Reason: "string constant too long"}
	}
	for i, r := range text {
		if r < ' ' || r > '~' {
			// +1 for the opening quote
			offset := 1 + utf8.RuneCountInString(text[:i])
			return &LexError{Line: line, Column: column + offset, Text: string(r), Reason: "character outside printable ASCII in string constant"}
		}
	}
	return nil
}

// Tokenize strips the comments of source and splits the rest into tokens.
func Tokenize(source string) ([]Token, error) {
	stripped, err := stripComments(source)
	if err != nil {
		return nil, err
	}

	var tokens []Token
	line, column := 1, 1
	rest := stripped

	for len(rest) > 0 {
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) {
			if r == '\n' {
				line, column = line+1, 1
			} else {
				column++
			}
			rest = rest[size:]
			continue
		}

		token, length, err := matchToken(rest, line, column)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)

		// Tokens never span lines
		column += utf8.RuneCountInString(rest[:length])
		rest = rest[length:]
	}

	return tokens, nil
}

// Tokenizer is a read cursor over the tokens of one unit.
type Tokenizer struct {
	tokens  []Token
	pointer int
	current Token
}

func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read source: %w", err)
	}
	return NewTokenizerFromString(string(source))
}

func NewTokenizerFromString(source string) (*Tokenizer, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{tokens: tokens}, nil
}

// Tokens returns the full token sequence. Callers must not modify it.
func (t *Tokenizer) Tokens() []Token {
	return t.tokens
}

func (t *Tokenizer) HasMoreTokens() bool {
	return t.pointer < len(t.tokens)
}

// Advance makes the next token current and returns it.
func (t *Tokenizer) Advance() (Token, error) {
	if !t.HasMoreTokens() {
		return Token{}, &LexError{Reason: ErrTokensExhausted.Error(), err: ErrTokensExhausted}
	}
	t.current = t.tokens[t.pointer]
	t.pointer++
	return t.current, nil
}

func (t *Tokenizer) Token() Token {
	return t.current
}

func (t *Tokenizer) TokenType() TokenType {
	return t.current.tokenType
}

func (t *Tokenizer) expect(tokenType TokenType) error {
	if t.current.tokenType != tokenType {
		return &TypeMismatchError{Expected: tokenType, Actual: t.current}
	}
	return nil
}

func (t *Tokenizer) Keyword() (KeywordType, error) {
	if err := t.expect(Keyword); err != nil {
		return InvalidKeyword, err
	}
	return keywords[t.current.terminal], nil
}

func (t *Tokenizer) Symbol() (byte, error) {
	if err := t.expect(SymbolTokenType); err != nil {
		return 0, err
	}
	return t.current.terminal[0], nil
}

func (t *Tokenizer) Identifier() (string, error) {
	if err := t.expect(Identifier); err != nil {
		return "", err
	}
	return t.current.terminal, nil
}

func (t *Tokenizer) IntVal() (MachineWord, error) {
	if err := t.expect(IntegerConstant); err != nil {
		return 0, err
	}
	return t.current.asInt()
}

func (t *Tokenizer) StringVal() (string, error) {
	if err := t.expect(StringConstant); err != nil {
		return "", err
	}
	return t.current.terminal, nil
}
