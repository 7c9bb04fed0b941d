package langreg

import "testing"

func TestForExtension(t *testing.T) {
	r := New()

	testCases := []struct {
		ext      string
		wantID   string
		wantOk   bool
	}{
		{".go", "go", true},
		{".GO", "go", true},
		{".py", "python", true},
		{".pyi", "python", true},
		{".ts", "typescript", true},
		{".tsx", "typescript", true},
		{".rs", "rust", true},
		{".xyz", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		lang, ok := r.ForExtension(tc.ext)
		if ok != tc.wantOk {
			t.Errorf("ForExtension(%q) ok = %v, want %v", tc.ext, ok, tc.wantOk)
			continue
		}
		if ok && lang.ID != tc.wantID {
			t.Errorf("ForExtension(%q).ID = %q, want %q", tc.ext, lang.ID, tc.wantID)
		}
	}
}

func TestForPath(t *testing.T) {
	r := New()

	lang, ok := r.ForPath("/workspace/src/main.go")
	if !ok || lang.ID != "go" {
		t.Fatalf("ForPath(main.go) = %v, %v, want go, true", lang, ok)
	}

	if _, ok := r.ForPath("/workspace/README.md"); ok {
		t.Error("ForPath(README.md) should not resolve a language")
	}
}

func TestGrammarMemoizedPerProcess(t *testing.T) {
	r := New()

	g1 := r.Grammar("go")
	if g1 == nil {
		t.Fatal("Grammar(go) returned nil")
	}
	g2 := r.Grammar("go")
	if g1 != g2 {
		t.Error("Grammar(go) should return the same memoized handle on repeated calls")
	}
}

func TestGrammarUnknownLanguage(t *testing.T) {
	r := New()
	if g := r.Grammar("cobol"); g != nil {
		t.Errorf("Grammar(cobol) = %v, want nil", g)
	}
}

func TestExtensionsCoversEveryLanguage(t *testing.T) {
	r := New()
	exts := r.Extensions()

	seen := make(map[string]bool, len(exts))
	for _, e := range exts {
		seen[e] = true
	}
	for _, want := range []string{".go", ".py", ".js", ".ts", ".rs", ".java"} {
		if !seen[want] {
			t.Errorf("Extensions() missing %q", want)
		}
	}
}

func TestLanguagesReturnsDefensiveCopy(t *testing.T) {
	r := New()
	langs := r.Languages()
	if len(langs) == 0 {
		t.Fatal("Languages() returned empty slice")
	}
	langs[0].ID = "mutated"

	again := r.Languages()
	if again[0].ID == "mutated" {
		t.Error("Languages() should return a defensive copy, mutation leaked into registry")
	}
}
