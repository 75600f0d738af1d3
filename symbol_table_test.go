package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable(t *testing.T) {

	t.Run("indices are dense and zero-based per kind", func(t *testing.T) {
		table := NewSymbolTable()
		for _, name := range []string{"a", "b", "c"} {
			_, err := table.Define(name, "int", StaticSymbol)
			require.NoError(t, err)
		}
		_, err := table.Define("f", "boolean", FieldSymbol)
		require.NoError(t, err)

		for i, name := range []string{"a", "b", "c"} {
			index, ok := table.IndexOf(name)
			assert.True(t, ok)
			assert.Equal(t, MachineWord(i), index)
		}
		index, _ := table.IndexOf("f")
		assert.Equal(t, MachineWord(0), index)

		assert.Equal(t, MachineWord(3), table.VarCount(StaticSymbol))
		assert.Equal(t, MachineWord(1), table.VarCount(FieldSymbol))
		assert.Equal(t, MachineWord(0), table.VarCount(VarSymbol))
	})

	t.Run("subroutine scope shadows class scope", func(t *testing.T) {
		table := NewSymbolTable()
		table.Define("x", "int", FieldSymbol)
		table.StartSubroutine()
		table.Define("x", "char", ArgumentSymbol)

		kind, ok := table.KindOf("x")
		assert.True(t, ok)
		assert.Equal(t, ArgumentSymbol, kind)

		variableType, _ := table.TypeOf("x")
		assert.Equal(t, "char", variableType)

		field, ok := table.ClassSymbol("x")
		assert.True(t, ok)
		assert.Equal(t, FieldSymbol, field.Kind)

		table.StartSubroutine()
		kind, _ = table.KindOf("x")
		assert.Equal(t, FieldSymbol, kind)
	})

	t.Run("starting a subroutine resets argument and var numbering", func(t *testing.T) {
		table := NewSymbolTable()
		table.Define("s", "int", StaticSymbol)

		table.StartSubroutine()
		table.Define("a", "int", ArgumentSymbol)
		first, err := table.Define("i", "int", VarSymbol)
		require.NoError(t, err)

		table.StartSubroutine()
		second, err := table.Define("j", "int", VarSymbol)
		require.NoError(t, err)

		assert.Equal(t, MachineWord(0), first.Index)
		assert.Equal(t, MachineWord(0), second.Index)
		assert.Equal(t, MachineWord(0), table.VarCount(ArgumentSymbol))
		assert.Equal(t, MachineWord(1), table.VarCount(StaticSymbol))

		_, ok := table.KindOf("i")
		assert.False(t, ok)
	})

	t.Run("unknown names are unresolved", func(t *testing.T) {
		table := NewSymbolTable()

		_, ok := table.KindOf("missing")
		assert.False(t, ok)
		_, ok = table.TypeOf("missing")
		assert.False(t, ok)
		_, ok = table.IndexOf("missing")
		assert.False(t, ok)

		_, err := table.Lookup("missing")
		var unresolved *UnresolvedSymbolError
		if assert.ErrorAs(t, err, &unresolved) {
			assert.Equal(t, "missing", unresolved.Name)
		}
	})

	t.Run("redefinition replaces the entry and keeps the slot allocated", func(t *testing.T) {
		table := NewSymbolTable()
		table.StartSubroutine()
		table.Define("x", "int", VarSymbol)
		table.Define("x", "char", VarSymbol)

		symbol, err := table.Lookup("x")
		require.NoError(t, err)
		assert.Equal(t, "char", symbol.VariableType)
		assert.Equal(t, MachineWord(1), symbol.Index)
		assert.Equal(t, MachineWord(2), table.VarCount(VarSymbol))
		assert.True(t, table.IsDefinedIn("x", FunctionScope))
		assert.False(t, table.IsDefinedIn("x", ClassScope))
	})

	t.Run("invalid kind", func(t *testing.T) {
		table := NewSymbolTable()
		_, err := table.Define("x", "int", InvalidSymbol)
		assert.Error(t, err)
	})

	t.Run("reset clears both scopes", func(t *testing.T) {
		table := NewSymbolTable()
		table.Define("f", "int", FieldSymbol)
		table.Define("a", "int", ArgumentSymbol)
		table.Reset()

		_, ok := table.KindOf("f")
		assert.False(t, ok)
		_, ok = table.KindOf("a")
		assert.False(t, ok)
		assert.Equal(t, MachineWord(0), table.VarCount(FieldSymbol))
	})
}

func TestSegmentFor(t *testing.T) {
	segments := map[SymbolKind]VMSegmentType{
		StaticSymbol:   StaticVMSegment,
		FieldSymbol:    ThisVMSegment,
		ArgumentSymbol: ArgumentVMSegment,
		VarSymbol:      LocalVMSegment,
	}
	for kind, expected := range segments {
		segment, err := SegmentFor(kind)
		assert.NoError(t, err)
		assert.Equal(t, expected, segment)
	}

	_, err := SegmentFor(SymbolKind("register"))
	assert.Error(t, err)
}
