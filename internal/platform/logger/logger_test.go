package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestStdLogger_TextFormat_SortedKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Writer: &buf, App: "test"}).(*StdLogger)
	l.now = fixedNow

	l.Info("dose logged", map[string]any{"substance": "Caffeine", "id": "abc"})

	got := strings.TrimSpace(buf.String())
	want := "app=test id=abc level=info msg=dose logged substance=Caffeine ts=2026-01-02T03:04:05Z"
	if got != want {
		t.Fatalf("unexpected line:\n got=%q\nwant=%q", got, want)
	}
}

func TestStdLogger_JSONFormat_WithAndErrors(t *testing.T) {
	var buf bytes.Buffer
	root := New(Options{Level: Debug, Format: FormatJSON, Writer: &buf})
	child := root.With(map[string]any{"component": "doselog", "": "ignored"})

	child.Warn("storage corrupted", map[string]any{"err": errors.New("bad json")})

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("line is not json: %v (%q)", err, buf.String())
	}
	if m["component"] != "doselog" {
		t.Fatalf("expected component field, got %#v", m)
	}
	if m["err"] != "bad json" {
		t.Fatalf("expected error rendered as string, got %#v", m["err"])
	}
	if _, ok := m[""]; ok {
		t.Fatalf("empty keys must be dropped")
	}
}

func TestStdLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Writer: &buf})

	l.Info("skip me", nil)
	l.Debug("skip me too", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Error("keep", nil)
	if !strings.Contains(buf.String(), "msg=keep") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "WARNING": Warn, "error": Error, "": Info, "nope": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
	if ParseFormat(" JSON ") != FormatJSON || ParseFormat("xml") != FormatText {
		t.Fatalf("unexpected ParseFormat behaviour")
	}
}
