package synparse

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
)

func newTestParser() *Parser {
	return New(langreg.New(), logr.Discard())
}

func TestParseGoFunction(t *testing.T) {
	src := []byte("package main\n\n// Greet says hello to name.\nfunc Greet(name string) string {\n\treturn \"hello \" + name\n}\n")

	p := newTestParser()
	tree, err := p.Parse(src, "greet.go")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if tree.LanguageID != "go" {
		t.Errorf("LanguageID = %q, want go", tree.LanguageID)
	}
	if len(tree.Errors) != 0 {
		t.Errorf("expected no syntax errors, got %v", tree.Errors)
	}

	var fn *model.Symbol
	for _, s := range tree.Symbols {
		if s.Name == "Greet" {
			fn = s
		}
	}
	if fn == nil {
		t.Fatalf("expected a Greet symbol, got %+v", tree.Symbols)
	}
	if fn.Kind != model.KindFunction {
		t.Errorf("Greet kind = %v, want function", fn.Kind)
	}
	if fn.Doc == "" {
		t.Error("expected the leading doc comment to be associated with Greet")
	}
}

func TestParseGoImportExcludedFromVisibleSymbols(t *testing.T) {
	src := []byte("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n")

	p := newTestParser()
	tree, err := p.Parse(src, "main.go")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	for _, s := range tree.VisibleSymbols() {
		if s.Kind == model.KindImport {
			t.Error("VisibleSymbols must exclude import-kind symbols")
		}
	}

	imports, err := p.ExtractImports(src, "main.go")
	if err != nil {
		t.Fatalf("ExtractImports returned error: %v", err)
	}
	if len(imports) != 1 || imports[0].Source != "fmt" {
		t.Errorf("ExtractImports = %+v, want one import of fmt", imports)
	}
}

func TestParseGoSyntaxErrorStillProducesSymbolsBeforeIt(t *testing.T) {
	src := []byte("package main\n\nfunc Good() {}\n\nfunc Bad( {\n")

	p := newTestParser()
	tree, err := p.Parse(src, "bad.go")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tree.Errors) == 0 {
		t.Error("expected syntax errors to be reported as data")
	}
	// HasError() is transitive (true for every ancestor of the real defect
	// node), so a single bad token must still surface as a small, bounded
	// number of entries, not one per ancestor down to the root.
	if len(tree.Errors) > 3 {
		t.Errorf("expected syntax errors to be reported once per actual defect, not once per ancestor; got %d: %+v", len(tree.Errors), tree.Errors)
	}

	found := false
	for _, s := range tree.Symbols {
		if s.Name == "Good" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Good to still be extracted despite a later syntax error, got %+v", tree.Symbols)
	}
}

func TestParseIdempotentOnIdenticalSource(t *testing.T) {
	src := []byte("package main\n\nfunc One() {}\n\nfunc Two() {}\n")

	p := newTestParser()
	t1, err := p.Parse(src, "idempotent.go")
	if err != nil {
		t.Fatalf("first Parse returned error: %v", err)
	}
	t2, err := p.Parse(src, "idempotent.go")
	if err != nil {
		t.Fatalf("second Parse returned error: %v", err)
	}

	if len(t1.Symbols) != len(t2.Symbols) {
		t.Fatalf("symbol count differs across identical parses: %d vs %d", len(t1.Symbols), len(t2.Symbols))
	}
	for i := range t1.Symbols {
		if t1.Symbols[i].Name != t2.Symbols[i].Name || t1.Symbols[i].Kind != t2.Symbols[i].Kind {
			t.Errorf("symbol %d differs: %+v vs %+v", i, t1.Symbols[i], t2.Symbols[i])
		}
	}
}

func TestParseUnrecognizedExtensionIsInputError(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse([]byte("hello"), "notes.txt"); err == nil {
		t.Error("expected an error for an unrecognized extension")
	}
}

func TestExtractCallsJavaScript(t *testing.T) {
	src := []byte("function greet(name) {\n  console.log(name);\n}\n")

	p := newTestParser()
	calls, err := p.ExtractCalls(src, "greet.js")
	if err != nil {
		t.Fatalf("ExtractCalls returned error: %v", err)
	}

	found := false
	for _, c := range calls {
		if c.CallerName == "greet" && strings.Contains(c.SurroundingLine, "console.log") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a call site inside greet() for console.log, got %+v", calls)
	}
}

func TestParseJavaScriptClassMethods(t *testing.T) {
	src := []byte("class Greeter {\n  greet(name) {\n    return name;\n  }\n\n  shout(name) {\n    return this.greet(name).toUpperCase();\n  }\n}\n")

	p := newTestParser()
	tree, err := p.Parse(src, "greeter.js")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var class *model.Symbol
	for _, s := range tree.Symbols {
		if s.Name == "Greeter" {
			class = s
		}
	}
	if class == nil {
		t.Fatalf("expected a Greeter class symbol, got %+v", tree.Symbols)
	}
	if len(class.Children) != 2 {
		t.Errorf("expected 2 methods under Greeter, got %d: %+v", len(class.Children), class.Children)
	}
}
