package main

import "fmt"

// SymbolKind is the storage kind of a variable.
type SymbolKind string

const (
	StaticSymbol   SymbolKind = "static"
	FieldSymbol    SymbolKind = "field"
	ArgumentSymbol SymbolKind = "argument"
	VarSymbol      SymbolKind = "var"
	InvalidSymbol  SymbolKind = ""
)

type Symbol struct {
	Name         string
	Kind         SymbolKind
	VariableType string
	Index        MachineWord
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s %s %s #%d", s.Kind, s.VariableType, s.Name, s.Index)
}

// SegmentFor maps a storage kind to the VM segment holding variables of that kind.
func SegmentFor(kind SymbolKind) (VMSegmentType, error) {
	switch kind {
	case StaticSymbol:
		return StaticVMSegment, nil
	case FieldSymbol:
		return ThisVMSegment, nil
	case ArgumentSymbol:
		return ArgumentVMSegment, nil
	case VarSymbol:
		return LocalVMSegment, nil
	}
	return InvalidVMSegmentType, fmt.Errorf("no segment for symbol kind %q", kind)
}
