package outline_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/outliner/editor"
	"github.com/ByLCY/outliner/outline"
	"github.com/ByLCY/outliner/text/texttest"
	"github.com/ByLCY/outliner/widget"
	"github.com/google/go-cmp/cmp"
)

func TestParseScript(t *testing.T) {
	s, err := outline.ParseScriptString(`
focus "two" 1
type "x"; key cmd+shift+z
do indentNode
undo
redo
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(s.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(s.Steps))
	}
	if s.Steps[0].Focus == nil || *s.Steps[0].Cursor != 1 {
		t.Fatalf("focus step mismatch: %+v", s.Steps[0])
	}
	if diff := cmp.Diff([]string{"cmd", "shift", "z"}, s.Steps[2].Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if !s.Steps[4].Undo || !s.Steps[5].Redo {
		t.Fatalf("undo/redo steps mismatch")
	}
}

func TestKeyEvent(t *testing.T) {
	ev, err := outline.KeyEvent([]string{"cmd", "shift", "down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Key != editor.KeyDown || ev.Modifiers != widget.Command|widget.Shift {
		t.Fatalf("unexpected event: %+v", ev)
	}
	ev, err = outline.KeyEvent([]string{"cmd", `"."`})
	if err != nil || ev.Text != "." {
		t.Fatalf("quoted key not parsed: %+v %v", ev, err)
	}
	if _, err := outline.KeyEvent([]string{"hyper", "a"}); err == nil {
		t.Fatalf("expected unknown modifier error")
	}
}

func TestReplay(t *testing.T) {
	doc, _, err := outline.Load(strings.NewReader(`outline "P" {
  - "one"
  - "two"
}`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	page := doc.Find("P")
	r := editor.NewRoot(doc, page, texttest.New())
	r.Layout(300)
	s, err := outline.ParseScriptString(`
focus "two"
key enter
type "three"
key tab
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := outline.Replay(r, s); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	two := page.Child(1)
	if two.ChildCount() != 1 || two.Child(0).Title() != "three" {
		t.Fatalf("expected three indented under two, got %d children", two.ChildCount())
	}

	bad, _ := outline.ParseScriptString(`focus "missing"`)
	if err := outline.Replay(r, bad); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing node error, got %v", err)
	}
}
