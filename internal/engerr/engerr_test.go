package engerr

import (
	"errors"
	"testing"
)

func TestIndexErrorMessage(t *testing.T) {
	err := NotFound("getTree", "file not indexed: foo.go")
	want := "getTree: file not indexed: foo.go"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIndexErrorMessageWithWrappedCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := IO("indexProject", "/workspace", cause)
	want := "indexProject: /workspace: disk gone"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := NotFound("getTree", "missing")
	if !errors.Is(err, Sentinel(KindNotFound)) {
		t.Error("errors.Is should match a NotFound error against the KindNotFound sentinel")
	}
	if errors.Is(err, Sentinel(KindIO)) {
		t.Error("errors.Is should not match a NotFound error against KindIO")
	}
}

func TestAmbiguousListsCandidates(t *testing.T) {
	err := Ambiguous("getInsight", []string{"foo.Bar", "baz.Bar"})
	if err.Kind != KindAmbiguous {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAmbiguous)
	}
	if !errors.Is(err, Sentinel(KindAmbiguous)) {
		t.Error("errors.Is should match KindAmbiguous")
	}
}
