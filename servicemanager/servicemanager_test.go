package servicemanager

import "testing"

func TestTransactionCodesAreDistinct(t *testing.T) {
	codes := map[uint32]string{
		codeGetService:   "getService",
		codeAddService:   "addService",
		codeListServices: "listServices",
	}
	if len(codes) != 3 {
		t.Fatalf("expected 3 distinct transaction codes, got %d", len(codes))
	}
}

func TestDumpFlagPriorityDefaultIsNonZero(t *testing.T) {
	if DumpFlagPriorityDefault == 0 {
		t.Error("DumpFlagPriorityDefault should be non-zero")
	}
}
