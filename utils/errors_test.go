package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("export: %w", Classify(DatabaseError, errors.New("conn reset")))
	if got := KindOf(err); got != DatabaseError {
		t.Errorf("KindOf = %s; want %s", got, DatabaseError)
	}
	if got := KindOf(errors.New("plain")); got != UnknownError {
		t.Errorf("KindOf(plain) = %s; want %s", got, UnknownError)
	}
	if Classify(FileIOError, nil) != nil {
		t.Error("Classify(nil) should stay nil")
	}
}

func TestErrorHandlerEscalatesAfterThreshold(t *testing.T) {
	h := NewErrorHandler(NewNopLogger())
	boom := errors.New("boom")

	for i := 1; i <= escalationThreshold; i++ {
		if !h.Handle(boom, DatabaseError, "insert", false) {
			t.Fatalf("occurrence %d escalated too early", i)
		}
	}
	if h.Handle(boom, DatabaseError, "insert", false) {
		t.Error("occurrence 11 should escalate")
	}
	// A different context has its own counter.
	if !h.Handle(boom, DatabaseError, "commit", false) {
		t.Error("new context should not escalate")
	}

	sum := h.Summary()
	if sum["database_error:insert"] != 11 || sum["database_error:commit"] != 1 {
		t.Errorf("summary: %v", sum)
	}
}

func TestErrorHandlerFatalStops(t *testing.T) {
	h := NewErrorHandler(NewNopLogger())
	if h.Handle(errors.New("no backend"), DatabaseError, "connect", true) {
		t.Error("fatal error should return false")
	}
	h.Reset()
	if len(h.Summary()) != 0 {
		t.Error("Reset should clear counters")
	}
}

func TestErrorHandlerMerge(t *testing.T) {
	total := NewErrorHandler(NewNopLogger())
	boom := errors.New("boom")
	total.Handle(boom, DatabaseError, "insert", false)

	pass := NewErrorHandler(NewNopLogger())
	pass.Handle(boom, DatabaseError, "insert", false)
	pass.Handle(boom, DataValidationError, "exporter:csv", false)

	total.Merge(pass)
	sum := total.Summary()
	if sum["database_error:insert"] != 2 || sum["data_validation_error:exporter:csv"] != 1 {
		t.Errorf("summary after merge: %v", sum)
	}
	if len(pass.Summary()) != 2 {
		t.Errorf("merge must not change the source: %v", pass.Summary())
	}
}
