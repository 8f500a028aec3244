package repl

import (
	"bytes"
	"testing"
)

func TestDeleteLastRuneAndWidth(t *testing.T) {
	tests := []struct {
		in        string
		wantStr   string
		wantWidth int
	}{
		{"abc", "ab", 1},
		{"", "", 0},
		{"héllo", "héll", 1},
		{"宽", "", 2},
		{"a宽", "a", 2},
	}
	for _, tc := range tests {
		got, width := deleteLastRuneAndWidth(tc.in)
		if got != tc.wantStr || width != tc.wantWidth {
			t.Errorf("deleteLastRuneAndWidth(%q) = %q,%d want %q,%d", tc.in, got, width, tc.wantStr, tc.wantWidth)
		}
	}
}

func TestTerminalOutputWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newTerminalOutputWriter(&buf)

	if _, err := w.Write([]byte("a\nb")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a\r\nb" {
		t.Fatalf("got %q", got)
	}

	buf.Reset()
	if _, err := w.Write([]byte("x\r\ny")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "x\r\ny" {
		t.Fatalf("existing CRLF should pass through, got %q", got)
	}
}

func TestTerminalOutputWriterSplitCRLF(t *testing.T) {
	var buf bytes.Buffer
	w := newTerminalOutputWriter(&buf)
	if _, err := w.Write([]byte("x\r")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("\ny")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "x\r\ny" {
		t.Fatalf("CRLF split across writes must stay intact, got %q", got)
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		in      string
		granted bool
		ok      bool
	}{
		{"y", true, true},
		{"YES", true, true},
		{"n", false, true},
		{"no", false, true},
		{"", false, true},
		{"maybe", false, false},
	}
	for _, tc := range tests {
		granted, ok := parseYesNo(tc.in)
		if granted != tc.granted || ok != tc.ok {
			t.Errorf("parseYesNo(%q) = %v,%v want %v,%v", tc.in, granted, ok, tc.granted, tc.ok)
		}
	}
}
