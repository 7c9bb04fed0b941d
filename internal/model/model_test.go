package model

import "testing"

func TestSpanContains(t *testing.T) {
	outer := Span{Start: Position{Offset: 0}, End: Position{Offset: 100}}
	inner := Span{Start: Position{Offset: 10}, End: Position{Offset: 20}}
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if outer.Contains(Span{Start: Position{Offset: 90}, End: Position{Offset: 110}}) {
		t.Error("outer should not contain a span that extends past its end")
	}
}

func TestSymbolKindIsContainer(t *testing.T) {
	containers := []SymbolKind{KindClass, KindInterface, KindNamespace, KindEnum, KindModule}
	for _, k := range containers {
		if !k.IsContainer() {
			t.Errorf("%v should be a container kind", k)
		}
	}

	leaves := []SymbolKind{KindFunction, KindMethod, KindVariable, KindConstant, KindImport, KindParameter}
	for _, k := range leaves {
		if k.IsContainer() {
			t.Errorf("%v should not be a container kind", k)
		}
	}
}

func TestVisibleSymbolsExcludesImports(t *testing.T) {
	tree := &SymbolTree{
		FilePath: "main.go",
		Symbols: []*Symbol{
			{Name: "fmt", Kind: KindImport},
			{Name: "main", Kind: KindFunction},
		},
	}

	visible := tree.VisibleSymbols()
	if len(visible) != 1 || visible[0].Name != "main" {
		t.Errorf("VisibleSymbols() = %+v, want only the main function", visible)
	}

	// The import symbol must still be present in the raw tree.
	if len(tree.Symbols) != 2 {
		t.Errorf("Symbols should still contain the import, got %d entries", len(tree.Symbols))
	}
}

func TestVisibleSymbolsOnEmptyTree(t *testing.T) {
	tree := &SymbolTree{}
	if got := tree.VisibleSymbols(); len(got) != 0 {
		t.Errorf("VisibleSymbols() on an empty tree = %+v, want empty", got)
	}
}
