package diag

import (
	"errors"
	"fmt"
	"testing"

	"weave/internal/source"
)

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevWarning, TplShadowedName, source.Span{Start: 10, End: 12}, "late"))
	bag.Add(New(SevError, TplDuplicateBlock, source.Span{Start: 1, End: 3}, "early"))
	bag.Add(New(SevError, TplDuplicateBlock, source.Span{Start: 1, End: 3}, "early again"))

	bag.Sort()
	bag.Dedup()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", bag.Len())
	}
	if bag.Items()[0].Message != "early" {
		t.Errorf("expected earliest diagnostic first, got %q", bag.Items()[0].Message)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Errorf("expected both errors and warnings")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(Diagnostic{}) {
		t.Fatalf("first add must succeed")
	}
	if bag.Add(Diagnostic{}) {
		t.Fatalf("second add must be dropped")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	var got []Diagnostic
	sink := FuncReporter(func(d Diagnostic) { got = append(got, d) })

	b := ReportWarning(sink, TplShadowedName, source.Span{}, "shadow").
		WithNote(source.Span{Start: 4}, "declared here").
		WithAdvice("rename it")
	b.Emit()
	b.Emit()

	if len(got) != 1 {
		t.Fatalf("expected exactly one emitted diagnostic, got %d", len(got))
	}
	if got[0].Advice != "rename it" || len(got[0].Notes) != 1 {
		t.Errorf("builder lost details: %+v", got[0])
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := &Error{Diagnostic: NewError(TplImportPosition, source.Span{}, "import not allowed")}
	wrapped := fmt.Errorf("compile: %w", base)

	de, ok := AsError(wrapped)
	if !ok || de != base {
		t.Fatalf("expected to unwrap *Error")
	}
	if de.Error() != "TPL1001: import not allowed" {
		t.Errorf("unexpected message %q", de.Error())
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Errorf("plain errors must not unwrap")
	}
}
