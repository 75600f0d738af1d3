package main

import "fmt"

type Scope string

const (
	FunctionScope Scope = "FunctionScope"
	ClassScope    Scope = "ClassScope"
)

func scopeOf(kind SymbolKind) (Scope, error) {
	switch kind {
	case StaticSymbol, FieldSymbol:
		return ClassScope, nil
	case ArgumentSymbol, VarSymbol:
		return FunctionScope, nil
	}
	return "", fmt.Errorf("invalid symbol kind %q", kind)
}

// SymbolTable resolves names against the subroutine scope first, then the class scope.
type SymbolTable struct {
	classScopeTable    map[string]Symbol
	functionScopeTable map[string]Symbol
	counts             map[SymbolKind]MachineWord
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:    make(map[string]Symbol),
		functionScopeTable: make(map[string]Symbol),
		counts:             make(map[SymbolKind]MachineWord),
	}
}

// StartSubroutine discards the subroutine scope and restarts argument and var numbering.
func (s *SymbolTable) StartSubroutine() {
	s.functionScopeTable = make(map[string]Symbol)
	s.counts[ArgumentSymbol] = 0
	s.counts[VarSymbol] = 0
}

// Reset discards both scopes.
func (s *SymbolTable) Reset() {
	s.classScopeTable = make(map[string]Symbol)
	s.functionScopeTable = make(map[string]Symbol)
	s.counts = make(map[SymbolKind]MachineWord)
}

// Define declares name in the scope of kind and assigns it the next index of that kind.
// A name already declared in the same scope is replaced; its old slot stays allocated.
func (s *SymbolTable) Define(name, variableType string, kind SymbolKind) (Symbol, error) {
	scope, err := scopeOf(kind)
	if err != nil {
		return Symbol{}, err
	}

	symbol := Symbol{
		Name:         name,
		Kind:         kind,
		VariableType: variableType,
		Index:        s.counts[kind],
	}
	s.counts[kind]++

	switch scope {
	case ClassScope:
		s.classScopeTable[name] = symbol
	case FunctionScope:
		s.functionScopeTable[name] = symbol
	}
	return symbol, nil
}

// IsDefinedIn reports whether name is already declared in scope.
func (s *SymbolTable) IsDefinedIn(name string, scope Scope) bool {
	var ok bool
	switch scope {
	case ClassScope:
		_, ok = s.classScopeTable[name]
	case FunctionScope:
		_, ok = s.functionScopeTable[name]
	}
	return ok
}

func (s *SymbolTable) resolve(name string) (Symbol, bool) {
	// Try to find it in the method scope table
	if symbol, ok := s.functionScopeTable[name]; ok {
		return symbol, true
	}
	symbol, ok := s.classScopeTable[name]
	return symbol, ok
}

// ClassSymbol resolves name in the class scope only.
func (s *SymbolTable) ClassSymbol(name string) (Symbol, bool) {
	symbol, ok := s.classScopeTable[name]
	return symbol, ok
}

func (s *SymbolTable) Lookup(name string) (Symbol, error) {
	symbol, ok := s.resolve(name)
	if !ok {
		return Symbol{}, &UnresolvedSymbolError{Name: name}
	}
	return symbol, nil
}

func (s *SymbolTable) KindOf(name string) (SymbolKind, bool) {
	symbol, ok := s.resolve(name)
	return symbol.Kind, ok
}

func (s *SymbolTable) TypeOf(name string) (string, bool) {
	symbol, ok := s.resolve(name)
	return symbol.VariableType, ok
}

func (s *SymbolTable) IndexOf(name string) (MachineWord, bool) {
	symbol, ok := s.resolve(name)
	return symbol.Index, ok
}

// VarCount returns how many variables of kind have been declared in the current scopes.
func (s *SymbolTable) VarCount(kind SymbolKind) MachineWord {
	return s.counts[kind]
}
