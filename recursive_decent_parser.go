package main

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TokenScanner is the token cursor the compiler pulls from.
type TokenScanner interface {
	HasMoreTokens() bool
	Advance() (Token, error)
	Token() Token
}

// Precedence selects how binary operators are grouped.
type Precedence string

const (
	// PrecedenceFlat folds operators strictly left to right, as the language defines.
	PrecedenceFlat Precedence = "flat"
	// PrecedenceStandard groups | < & < comparisons < additive < multiplicative.
	PrecedenceStandard Precedence = "standard"
)

type binaryOperator struct {
	operation  VMOperation
	precedence int
}

var binaryOperators = map[byte]binaryOperator{
	'|': {OrVMOperation, 1},
	'&': {AndVMOperation, 2},
	'=': {EqVMOperation, 3},
	'<': {LtVMOperation, 3},
	'>': {GtVMOperation, 3},
	'+': {AddVMOperation, 4},
	'-': {SubVMOperation, 4},
	'*': {MulVMOperation, 5},
	'/': {DivVMOperation, 5},
}

type CompilerOption func(*JackCompiler)

func WithLogger(logger zerolog.Logger) CompilerOption {
	return func(c *JackCompiler) {
		c.logger = logger
	}
}

func WithPrecedence(precedence Precedence) CompilerOption {
	return func(c *JackCompiler) {
		c.precedence = precedence
	}
}

// JackCompiler compiles one class. Parsing and code generation happen in the same pass:
// every compileX method consumes exactly the tokens of its production and emits its code.
type JackCompiler struct {
	tokens     TokenScanner
	writer     *VMWriter
	symbols    *SymbolTable
	logger     zerolog.Logger
	precedence Precedence

	// token is the current token, the zero Token once the input is consumed.
	token Token

	className       string
	subroutineName  string
	subroutineKind  KeywordType
	labelCount      int
	constructorSeen bool
}

func NewJackCompiler(tokens TokenScanner, writer *VMWriter, options ...CompilerOption) *JackCompiler {
	c := &JackCompiler{
		tokens:     tokens,
		writer:     writer,
		symbols:    NewSymbolTable(),
		logger:     zerolog.Nop(),
		precedence: PrecedenceFlat,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// CompileCode compiles the class in source and returns its name and VM commands.
func CompileCode(source string, options ...CompilerOption) (className string, commands []string, err error) {
	tokenizer, err := NewTokenizerFromString(source)
	if err != nil {
		return "", nil, err
	}
	writer := NewVMWriter()
	compiler := NewJackCompiler(tokenizer, writer, options...)
	if err := compiler.Compile(); err != nil {
		return compiler.ClassName(), nil, err
	}
	return compiler.ClassName(), writer.Commands(), nil
}

// Compile compiles exactly one class declaration and requires the input to end after it.
func (c *JackCompiler) Compile() error {
	if err := c.advance(); err != nil {
		return err
	}
	if err := c.compileClass(); err != nil {
		return err
	}
	if !c.atEnd() {
		return &SyntaxError{Expected: "end of input", Actual: c.token}
	}
	return nil
}

func (c *JackCompiler) ClassName() string {
	return c.className
}

func (c *JackCompiler) SymbolTable() *SymbolTable {
	return c.symbols
}

func (c *JackCompiler) trace(production string) {
	c.logger.Trace().Str("production", production).Stringer("token", c.token).Msg("compiling")
}

// advance moves the cursor to the next token. Running past the last token is not an
// error by itself: the cursor then rests on the zero Token and the next expectation fails.
func (c *JackCompiler) advance() error {
	if !c.tokens.HasMoreTokens() {
		c.token = Token{}
		return nil
	}
	token, err := c.tokens.Advance()
	if err != nil {
		return err
	}
	c.token = token
	return nil
}

func (c *JackCompiler) atEnd() bool {
	return c.token.tokenType == InvalidToken
}

func (c *JackCompiler) unexpected(expected string) error {
	if c.atEnd() {
		return &UnexpectedEndOfInputError{Expected: expected}
	}
	return &SyntaxError{Expected: expected, Actual: c.token}
}

func (c *JackCompiler) expectSymbol(symbol byte) error {
	if !c.token.isSymbol(symbol) {
		return c.unexpected(fmt.Sprintf("'%c'", symbol))
	}
	return c.advance()
}

func (c *JackCompiler) expectKeyword(keyword KeywordType) error {
	if !c.token.isKeyword(keyword) {
		return c.unexpected(fmt.Sprintf("'%s'", keyword))
	}
	return c.advance()
}

func (c *JackCompiler) expectIdentifier(what string) (string, error) {
	if c.token.tokenType != Identifier {
		return "", c.unexpected(what)
	}
	name := c.token.terminal
	return name, c.advance()
}

func (c *JackCompiler) nextLabel() int {
	n := c.labelCount
	c.labelCount++
	return n
}

func (c *JackCompiler) define(name, variableType string, kind SymbolKind, token Token) error {
	scope, err := scopeOf(kind)
	if err != nil {
		return err
	}
	if c.symbols.IsDefinedIn(name, scope) {
		line, column := token.Position()
		c.logger.Warn().Str("class", c.className).Str("name", name).
			Int("line", line).Int("column", column).Msg("redeclaration replaces earlier declaration")
	}
	symbol, err := c.symbols.Define(name, variableType, kind)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("class", c.className).Stringer("symbol", symbol).Msg("registered symbol")
	return nil
}

// lookupVariable resolves a variable used inside the current subroutine.
func (c *JackCompiler) lookupVariable(name string, token Token) (Symbol, error) {
	symbol, err := c.symbols.Lookup(name)
	if err != nil {
		return Symbol{}, &UnresolvedSymbolError{Name: name, Token: token}
	}
	if symbol.Kind == FieldSymbol && c.subroutineKind == FunctionKeyword {
		return Symbol{}, &UnresolvedSymbolError{
			Name:   name,
			Token:  token,
			Reason: fmt.Sprintf("field used in function %s.%s, which has no current object", c.className, c.subroutineName),
		}
	}
	return symbol, nil
}

func (c *JackCompiler) pushVariable(symbol Symbol) error {
	segment, err := SegmentFor(symbol.Kind)
	if err != nil {
		return err
	}
	c.writer.WritePush(segment, symbol.Index)
	return nil
}

func (c *JackCompiler) popVariable(symbol Symbol) error {
	segment, err := SegmentFor(symbol.Kind)
	if err != nil {
		return err
	}
	c.writer.WritePop(segment, symbol.Index)
	return nil
}

// receiverClass returns the class whose subroutine is called on a value of receiverType.
func (c *JackCompiler) receiverClass(receiverType, subroutine string, token Token) (string, error) {
	switch receiverType {
	case "":
		return "", &UnresolvedSymbolError{Name: subroutine, Token: token, Reason: "class of the receiver is unknown"}
	case "int", "char", "boolean":
		return "", &UnresolvedSymbolError{Name: subroutine, Token: token, Reason: fmt.Sprintf("receiver of type %s has no subroutines", receiverType)}
	}
	return receiverType, nil
}

// fieldOffset resolves a field accessed through a reference of receiverType. Only the
// layout of the class being compiled is known.
func (c *JackCompiler) fieldOffset(receiverType, field string, token Token) (Symbol, error) {
	if receiverType != c.className {
		reason := fmt.Sprintf("fields of class %q are not visible from class %q", receiverType, c.className)
		if receiverType == "" {
			reason = "class of the receiver is unknown"
		}
		return Symbol{}, &UnresolvedSymbolError{Name: field, Token: token, Reason: reason}
	}
	symbol, ok := c.symbols.ClassSymbol(field)
	if !ok || symbol.Kind != FieldSymbol {
		return Symbol{}, &UnresolvedSymbolError{Name: field, Token: token, Reason: fmt.Sprintf("not a field of class %q", c.className)}
	}
	return symbol, nil
}

// compileClass
// precondition: current token is 'class'
// postcondition: current token is the first token past the '}' closing the class
func (c *JackCompiler) compileClass() error {
	c.trace("class")
	if err := c.expectKeyword(ClassKeyword); err != nil {
		return err
	}
	name, err := c.expectIdentifier("class name")
	if err != nil {
		return err
	}
	c.className = name
	c.symbols.Reset()

	if err := c.expectSymbol('{'); err != nil {
		return err
	}

	for {
		var err error
		switch {
		case c.token.isKeyword(StaticKeyword), c.token.isKeyword(FieldKeyword):
			err = c.compileClassVarDec()
		case c.token.isKeyword(ConstructorKeyword), c.token.isKeyword(FunctionKeyword), c.token.isKeyword(MethodKeyword):
			err = c.compileSubroutineDec()
		case c.token.isSymbol('}'):
			return c.advance()
		default:
			return c.unexpected("class variable declaration, subroutine declaration or '}'")
		}
		if err != nil {
			return err
		}
	}
}

// compileClassVarDec
// precondition: current token is 'static' or 'field'
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileClassVarDec() error {
	c.trace("classVarDec")
	kind := StaticSymbol
	if c.token.isKeyword(FieldKeyword) {
		if c.constructorSeen {
			// Object size is emitted with the first constructor and the writer only appends
			return &SyntaxError{Expected: "field declarations before the first constructor (jackc fixes the object size when it compiles a constructor)", Actual: c.token}
		}
		kind = FieldSymbol
	}
	if err := c.advance(); err != nil {
		return err
	}
	return c.compileVarNames(kind)
}

// compileVarNames compiles the shared tail of class and local variable declarations.
// precondition: current token is the declared type
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileVarNames(kind SymbolKind) error {
	variableType, err := c.compileType(false)
	if err != nil {
		return err
	}
	for {
		nameToken := c.token
		name, err := c.expectIdentifier("variable name")
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, kind, nameToken); err != nil {
			return err
		}
		if !c.token.isSymbol(',') {
			break
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
	return c.expectSymbol(';')
}

// compileType
// precondition: current token is a type, or 'void' when allowVoid is set
// postcondition: current token is the first token past the type
func (c *JackCompiler) compileType(allowVoid bool) (string, error) {
	switch {
	case c.token.isKeyword(IntKeyword), c.token.isKeyword(CharKeyword), c.token.isKeyword(BooleanKeyword),
		c.token.tokenType == Identifier, allowVoid && c.token.isKeyword(VoidKeyword):
		variableType := c.token.terminal
		return variableType, c.advance()
	}
	if allowVoid {
		return "", c.unexpected("type or 'void'")
	}
	return "", c.unexpected("type")
}

// compileSubroutineDec
// precondition: current token is 'constructor', 'function' or 'method'
// postcondition: current token is the first token past the '}' closing the subroutine body
func (c *JackCompiler) compileSubroutineDec() error {
	c.trace("subroutineDec")
	c.subroutineKind = keywords[c.token.terminal]
	if err := c.advance(); err != nil {
		return err
	}

	c.symbols.StartSubroutine()
	c.labelCount = 0

	if _, err := c.compileType(true); err != nil {
		return err
	}
	name, err := c.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}
	c.subroutineName = name

	if c.subroutineKind == MethodKeyword {
		if _, err := c.symbols.Define("this", c.className, ArgumentSymbol); err != nil {
			return err
		}
	}

	if err := c.expectSymbol('('); err != nil {
		return err
	}
	if err := c.compileParameterList(); err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}

	if c.subroutineKind == ConstructorKeyword {
		c.constructorSeen = true
	}
	return c.compileSubroutineBody()
}

// compileParameterList
// precondition: current token is the first token of the list, or ')' when it is empty
// postcondition: current token is ')'
func (c *JackCompiler) compileParameterList() error {
	c.trace("parameterList")
	if c.token.isSymbol(')') {
		return nil
	}
	for {
		variableType, err := c.compileType(false)
		if err != nil {
			return err
		}
		nameToken := c.token
		name, err := c.expectIdentifier("parameter name")
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, ArgumentSymbol, nameToken); err != nil {
			return err
		}
		if !c.token.isSymbol(',') {
			if !c.token.isSymbol(')') {
				return c.unexpected("',' or ')'")
			}
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
}

// compileSubroutineBody
// precondition: current token is '{'
// postcondition: current token is the first token past '}'
func (c *JackCompiler) compileSubroutineBody() error {
	c.trace("subroutineBody")
	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	for c.token.isKeyword(VarKeyword) {
		if err := c.compileVarDec(); err != nil {
			return err
		}
	}

	c.writer.WriteFunction(c.className+"."+c.subroutineName, c.symbols.VarCount(VarSymbol))
	switch c.subroutineKind {
	case ConstructorKeyword:
		c.writer.WritePush(ConstVMSegment, c.symbols.VarCount(FieldSymbol))
		c.writer.WriteCall(AllocRoutine, 1)
		c.writer.WritePop(PointerVMSegment, 0)
	case MethodKeyword:
		c.writer.WritePush(ArgumentVMSegment, 0)
		c.writer.WritePop(PointerVMSegment, 0)
	}

	if err := c.compileStatements(); err != nil {
		return err
	}
	return c.closeBlock()
}

// compileVarDec
// precondition: current token is 'var'
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileVarDec() error {
	c.trace("varDec")
	if err := c.advance(); err != nil {
		return err
	}
	return c.compileVarNames(VarSymbol)
}

// closeBlock consumes the '}' ending a statement block.
func (c *JackCompiler) closeBlock() error {
	if !c.token.isSymbol('}') {
		return c.unexpected("statement or '}'")
	}
	return c.advance()
}

// compileStatements
// precondition: current token is the first token of the first statement, or the token following the statements
// postcondition: current token is the first token that does not start a statement
func (c *JackCompiler) compileStatements() error {
	c.trace("statements")
	for {
		var err error
		switch {
		case c.token.isKeyword(LetKeyword):
			err = c.compileLet()
		case c.token.isKeyword(IfKeyword):
			err = c.compileIf()
		case c.token.isKeyword(WhileKeyword):
			err = c.compileWhile()
		case c.token.isKeyword(DoKeyword):
			err = c.compileDo()
		case c.token.isKeyword(ReturnKeyword):
			err = c.compileReturn()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// compileLet
// precondition: current token is 'let'
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileLet() error {
	c.trace("letStatement")
	if err := c.advance(); err != nil {
		return err
	}
	nameToken := c.token
	name, err := c.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	symbol, err := c.lookupVariable(name, nameToken)
	if err != nil {
		return err
	}

	if !c.token.isSymbol('[') && !c.token.isSymbol('.') {
		if err := c.expectSymbol('='); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		if err := c.expectSymbol(';'); err != nil {
			return err
		}
		return c.popVariable(symbol)
	}

	// Compute the target address, then store through that 0
	if err := c.pushVariable(symbol); err != nil {
		return err
	}
	receiverType := symbol.VariableType
	addressPending := false
	for c.token.isSymbol('[') || c.token.isSymbol('.') {
		if addressPending {
			c.writer.WritePop(PointerVMSegment, 1)
			c.writer.WritePush(ThatVMSegment, 0)
		}

		if c.token.isSymbol('[') {
			if err := c.advance(); err != nil {
				return err
			}
			if err := c.compileExpression(); err != nil {
				return err
			}
			if err := c.expectSymbol(']'); err != nil {
				return err
			}
			receiverType = ""
		} else {
			if err := c.advance(); err != nil {
				return err
			}
			fieldToken := c.token
			fieldName, err := c.expectIdentifier("field name")
			if err != nil {
				return err
			}
			field, err := c.fieldOffset(receiverType, fieldName, fieldToken)
			if err != nil {
				return err
			}
			c.writer.WritePush(ConstVMSegment, field.Index)
			receiverType = field.VariableType
		}
		c.writer.WriteArithmetic(AddVMOperation)
		addressPending = true
	}

	if err := c.expectSymbol('='); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}

	c.writer.WritePop(TempVMSegment, 0)
	c.writer.WritePop(PointerVMSegment, 1)
	c.writer.WritePush(TempVMSegment, 0)
	c.writer.WritePop(ThatVMSegment, 0)
	return nil
}

// compileIf
// precondition: current token is 'if'
// postcondition: current token is the first token past the '}' closing the last branch
func (c *JackCompiler) compileIf() error {
	c.trace("ifStatement")
	if err := c.advance(); err != nil {
		return err
	}
	if err := c.expectSymbol('('); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}

	n := c.nextLabel()
	elseLabel := fmt.Sprintf("ELSE_%d", n)
	endLabel := fmt.Sprintf("END_%d", n)

	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(elseLabel)

	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.closeBlock(); err != nil {
		return err
	}

	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(elseLabel)

	if c.token.isKeyword(ElseKeyword) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.expectSymbol('{'); err != nil {
			return err
		}
		if err := c.compileStatements(); err != nil {
			return err
		}
		if err := c.closeBlock(); err != nil {
			return err
		}
	}

	c.writer.WriteLabel(endLabel)
	return nil
}

// compileWhile
// precondition: current token is 'while'
// postcondition: current token is the first token past the '}' closing the body
func (c *JackCompiler) compileWhile() error {
	c.trace("whileStatement")
	n := c.nextLabel()
	whileLabel := fmt.Sprintf("WHILE_%d", n)
	endLabel := fmt.Sprintf("END_%d", n)

	if err := c.advance(); err != nil {
		return err
	}
	c.writer.WriteLabel(whileLabel)

	if err := c.expectSymbol('('); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(')'); err != nil {
		return err
	}

	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(endLabel)

	if err := c.expectSymbol('{'); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.closeBlock(); err != nil {
		return err
	}

	c.writer.WriteGoto(whileLabel)
	c.writer.WriteLabel(endLabel)
	return nil
}

// compileDo
// precondition: current token is 'do'
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileDo() error {
	c.trace("doStatement")
	if err := c.advance(); err != nil {
		return err
	}
	nameToken := c.token
	name, err := c.expectIdentifier("subroutine, class or variable name")
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(name, nameToken); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}
	// Discard the returned value
	c.writer.WritePop(TempVMSegment, 0)
	return nil
}

// compileReturn
// precondition: current token is 'return'
// postcondition: current token is the first token past ';'
func (c *JackCompiler) compileReturn() error {
	c.trace("returnStatement")
	if err := c.advance(); err != nil {
		return err
	}
	if c.token.isSymbol(';') {
		// Void subroutines still return a value
		c.writer.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}
	c.writer.WriteReturn()
	return nil
}

// compileSubroutineCall compiles a call whose leading identifier was already consumed.
// precondition: current token is '(' or '.' following name
// postcondition: current token is the first token past ')'
func (c *JackCompiler) compileSubroutineCall(name string, nameToken Token) error {
	c.trace("subroutineCall")
	switch {
	case c.token.isSymbol('('):
		// Method of the current object
		c.writer.WritePush(PointerVMSegment, 0)
		nargs, err := c.compileArguments()
		if err != nil {
			return err
		}
		c.writer.WriteCall(c.className+"."+name, nargs+1)
		return nil
	case c.token.isSymbol('.'):
		if err := c.advance(); err != nil {
			return err
		}
		subroutineToken := c.token
		subroutine, err := c.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}

		if _, isVariable := c.symbols.KindOf(name); !isVariable {
			// Function or constructor of another class
			nargs, err := c.compileArguments()
			if err != nil {
				return err
			}
			c.writer.WriteCall(name+"."+subroutine, nargs)
			return nil
		}

		receiver, err := c.lookupVariable(name, nameToken)
		if err != nil {
			return err
		}
		class, err := c.receiverClass(receiver.VariableType, subroutine, subroutineToken)
		if err != nil {
			return err
		}
		if err := c.pushVariable(receiver); err != nil {
			return err
		}
		nargs, err := c.compileArguments()
		if err != nil {
			return err
		}
		c.writer.WriteCall(class+"."+subroutine, nargs+1)
		return nil
	}
	return c.unexpected("'(' or '.'")
}

// compileArguments
// precondition: current token is '('
// postcondition: current token is the first token past ')'
func (c *JackCompiler) compileArguments() (MachineWord, error) {
	if err := c.expectSymbol('('); err != nil {
		return 0, err
	}
	nargs, err := c.compileExpressionList()
	if err != nil {
		return 0, err
	}
	return nargs, c.expectSymbol(')')
}

// compileExpressionList
// precondition: current token is the first token of the first expression, or ')' when the list is empty
// postcondition: current token is ')'
func (c *JackCompiler) compileExpressionList() (MachineWord, error) {
	c.trace("expressionList")
	if c.token.isSymbol(')') {
		return 0, nil
	}
	var count MachineWord
	for {
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		count++
		if !c.token.isSymbol(',') {
			if !c.token.isSymbol(')') {
				return 0, c.unexpected("',' or ')'")
			}
			return count, nil
		}
		if err := c.advance(); err != nil {
			return 0, err
		}
	}
}

func (c *JackCompiler) currentBinaryOperator() (binaryOperator, bool) {
	if c.token.tokenType != SymbolTokenType {
		return binaryOperator{}, false
	}
	op, ok := binaryOperators[c.token.terminal[0]]
	return op, ok
}

// compileExpression
// precondition: current token is the first token of the expression
// postcondition: current token is the first token past the expression
func (c *JackCompiler) compileExpression() error {
	c.trace("expression")
	if c.precedence == PrecedenceStandard {
		return c.compileBinaryExpression(1)
	}

	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		op, ok := c.currentBinaryOperator()
		if !ok {
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.writer.WriteArithmetic(op.operation)
	}
}

// compileBinaryExpression compiles operators binding at least as tightly as minPrecedence,
// grouping operators of equal precedence to the left.
func (c *JackCompiler) compileBinaryExpression(minPrecedence int) error {
	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		op, ok := c.currentBinaryOperator()
		if !ok || op.precedence < minPrecedence {
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileBinaryExpression(op.precedence + 1); err != nil {
			return err
		}
		c.writer.WriteArithmetic(op.operation)
	}
}

// compileTerm
// precondition: current token is the first token of the term
// postcondition: current token is the first token past the term
func (c *JackCompiler) compileTerm() error {
	c.trace("term")
	switch c.token.tokenType {
	case IntegerConstant:
		value, err := c.token.asInt()
		if err != nil {
			return &SyntaxError{Expected: "integer constant between 0 and 32767", Actual: c.token}
		}
		c.writer.WritePush(ConstVMSegment, value)
		return c.advance()
	case StringConstant:
		c.writer.WriteStringConstant(c.token.terminal)
		return c.advance()
	case Keyword:
		return c.compileKeywordConstant()
	case Identifier:
		return c.compileIdentifierTerm()
	case SymbolTokenType:
		switch {
		case c.token.isSymbol('('):
			if err := c.advance(); err != nil {
				return err
			}
			if err := c.compileExpression(); err != nil {
				return err
			}
			return c.expectSymbol(')')
		case c.token.isSymbol('-'), c.token.isSymbol('~'):
			operation := NegVMOperation
			if c.token.isSymbol('~') {
				operation = NotVMOperation
			}
			if err := c.advance(); err != nil {
				return err
			}
			if err := c.compileTerm(); err != nil {
				return err
			}
			c.writer.WriteArithmetic(operation)
			return nil
		}
	}
	return c.unexpected("term")
}

// compileKeywordConstant
// precondition: current token is a keyword
// postcondition: current token is the first token past the keyword
func (c *JackCompiler) compileKeywordConstant() error {
	switch keywords[c.token.terminal] {
	case TrueKeyword:
		// All bits set
		c.writer.WritePush(ConstVMSegment, 0)
		c.writer.WriteArithmetic(NotVMOperation)
	case FalseKeyword, NullKeyword:
		c.writer.WritePush(ConstVMSegment, 0)
	case ThisKeyword:
		c.writer.WritePush(PointerVMSegment, 0)
	default:
		return c.unexpected("term")
	}
	return c.advance()
}

// compileIdentifierTerm
// precondition: current token is an identifier starting a term
// postcondition: current token is the first token past the term and all its suffixes
func (c *JackCompiler) compileIdentifierTerm() error {
	nameToken := c.token
	name := nameToken.terminal
	if err := c.advance(); err != nil {
		return err
	}

	_, isVariable := c.symbols.KindOf(name)
	if c.token.isSymbol('(') || (c.token.isSymbol('.') && !isVariable) {
		if err := c.compileSubroutineCall(name, nameToken); err != nil {
			return err
		}
		return c.compileTermSuffixes("")
	}

	symbol, err := c.lookupVariable(name, nameToken)
	if err != nil {
		return err
	}
	if err := c.pushVariable(symbol); err != nil {
		return err
	}
	return c.compileTermSuffixes(symbol.VariableType)
}

// compileTermSuffixes compiles '[' expression ']' and '.' name '(' expressionList ')' suffixes,
// each applied to the value left on the stack by what precedes it.
// precondition: the receiver is on the stack, current token follows it
// postcondition: current token is the first token that is not a suffix
func (c *JackCompiler) compileTermSuffixes(receiverType string) error {
	for {
		switch {
		case c.token.isSymbol('['):
			if err := c.advance(); err != nil {
				return err
			}
			if err := c.compileExpression(); err != nil {
				return err
			}
			if err := c.expectSymbol(']'); err != nil {
				return err
			}
			c.writer.WriteArithmetic(AddVMOperation)
			c.writer.WritePop(PointerVMSegment, 1)
			c.writer.WritePush(ThatVMSegment, 0)
			receiverType = ""
		case c.token.isSymbol('.'):
			if err := c.advance(); err != nil {
				return err
			}
			subroutineToken := c.token
			subroutine, err := c.expectIdentifier("subroutine name")
			if err != nil {
				return err
			}
			class, err := c.receiverClass(receiverType, subroutine, subroutineToken)
			if err != nil {
				return err
			}
			nargs, err := c.compileArguments()
			if err != nil {
				return err
			}
			c.writer.WriteCall(class+"."+subroutine, nargs+1)
			receiverType = ""
		default:
			return nil
		}
	}
}
