package sessions

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WhisperComments/NovelSnip/marks"
	"github.com/WhisperComments/NovelSnip/modes"
	"github.com/WhisperComments/NovelSnip/texts"
	"github.com/reusee/dscope"
)

func testEngine() Engine {
	return NewEngine(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		marks.NewMarker("#"),
	)
}

var testHost = strings.Join([]string{
	"#!/usr/bin/env python3",
	"# -*- coding: utf-8 -*-",
	`"""module docstring"""`,
	"import os",
	"",
	"def main():",
	"    print('hello')",
	"",
	"def helper(x):",
	"    return x + 1",
	"",
	"if __name__ == '__main__':",
	"    main()",
}, "\n") + "\n"

func testNovel(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("novel line %d", i)
	}
	return lines
}

func writeHost(t *testing.T) string {
	t.Helper()
	target := filepath.Join(t.TempDir(), "target.py")
	if err := os.WriteFile(target, []byte(testHost), 0644); err != nil {
		t.Fatal(err)
	}
	return target
}

func readDoc(t *testing.T, target string) string {
	t.Helper()
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// concatenated fragment bodies in index order
func embeddedPage(t *testing.T, e Engine, target string, id string, snippets int) []string {
	t.Helper()
	bodies := e.marker.SnipBodies(readDoc(t, target), id)
	if len(bodies) != snippets {
		t.Fatalf("got %d fragment regions, want %d", len(bodies), snippets)
	}
	var page []string
	for i := 0; i < snippets; i++ {
		body, ok := bodies[i]
		if !ok {
			t.Fatalf("fragment %d missing", i)
		}
		page = append(page, body...)
	}
	return page
}

func TestInjectStripRoundTrip(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	res, err := e.Inject(testNovel(10), target, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.ID == "" {
		t.Fatal("no session id")
	}
	if res.TotalPages != 3 {
		t.Fatalf("got %d pages", res.TotalPages)
	}

	// backup holds the pre-injection host
	if got := readDoc(t, res.BackupPath); got != testHost {
		t.Fatalf("backup differs:\n%s", got)
	}
	// companion holds the full novel
	novel, err := texts.LoadLines(res.CompanionPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(novel) != 10 {
		t.Fatalf("companion has %d lines", len(novel))
	}

	strip, err := e.Strip(target)
	if err != nil {
		t.Fatal(err)
	}
	if strip.ID != res.ID {
		t.Fatalf("stripped id %s, injected %s", strip.ID, res.ID)
	}
	if got := readDoc(t, target); got != testHost {
		t.Fatalf("host not restored:\n%s", got)
	}

	// idempotent re-strip reports NotFound
	if _, err := e.Strip(target); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestInjectRefusesSecond(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	if _, err := e.Inject(testNovel(10), target, 4, 2); err != nil {
		t.Fatal(err)
	}
	before := readDoc(t, target)

	_, err := e.Inject(testNovel(10), target, 4, 2)
	if !errors.Is(err, ErrAlreadyInjected) {
		t.Fatalf("got %v", err)
	}
	if readDoc(t, target) != before {
		t.Fatal("failed inject modified the target")
	}
}

func TestPagingScenario(t *testing.T) {
	e := testEngine()
	target := writeHost(t)
	novel := testNovel(100)

	res, err := e.Inject(novel, target, 40, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalPages != 3 {
		t.Fatalf("got %d pages", res.TotalPages)
	}

	// exactly one metadata region
	doc := readDoc(t, target)
	if got := strings.Count(doc, "NOVEL_META START"); got != 1 {
		t.Fatalf("got %d metadata regions", got)
	}

	// page 0: 4 fragments of 10 lines reconstruct lines [0,40)
	page := embeddedPage(t, e, target, res.ID, 4)
	if len(page) != 40 {
		t.Fatalf("got %d lines", len(page))
	}
	for i, line := range page {
		if line != novel[i] {
			t.Fatalf("line %d: got %q", i, line)
		}
	}

	// page 2 is the short page: fragments of 5,5,5,5
	rec, err := e.Goto(target, 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CurrentPage != 2 {
		t.Fatalf("got current page %d", rec.CurrentPage)
	}
	bodies := e.marker.SnipBodies(readDoc(t, target), res.ID)
	for i := 0; i < 4; i++ {
		if len(bodies[i]) != 5 {
			t.Fatalf("fragment %d has %d lines", i, len(bodies[i]))
		}
	}
	page = embeddedPage(t, e, target, res.ID, 4)
	if len(page) != 20 {
		t.Fatalf("got %d lines", len(page))
	}
	for i, line := range page {
		if line != novel[80+i] {
			t.Fatalf("line %d: got %q", i, line)
		}
	}

	// out of range fails and leaves the document alone
	before := readDoc(t, target)
	if _, err := e.Goto(target, 3); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("got %v", err)
	}
	if readDoc(t, target) != before {
		t.Fatal("failed goto modified the target")
	}
}

func TestGotoIdempotent(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	if _, err := e.Inject(testNovel(100), target, 40, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Goto(target, 1); err != nil {
		t.Fatal(err)
	}
	first := readDoc(t, target)
	if _, err := e.Goto(target, 1); err != nil {
		t.Fatal(err)
	}
	if readDoc(t, target) != first {
		t.Fatal("second goto changed the document")
	}
}

func TestWraparound(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	if _, err := e.Inject(testNovel(100), target, 40, 3); err != nil {
		t.Fatal(err)
	}

	// prev from page 0 wraps to the last page
	rec, err := e.Prev(target)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CurrentPage != 2 {
		t.Fatalf("got page %d", rec.CurrentPage)
	}

	// next from the last page wraps to page 0
	rec, err = e.Next(target)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CurrentPage != 0 {
		t.Fatalf("got page %d", rec.CurrentPage)
	}
}

func TestPositionsStableAcrossUpdates(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	res, err := e.Inject(testNovel(100), target, 30, 3)
	if err != nil {
		t.Fatal(err)
	}
	initial, err := e.Status(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(initial.Positions) != 3 {
		t.Fatalf("got positions %v", initial.Positions)
	}

	for i := 0; i < 6; i++ {
		if _, err := e.Next(target); err != nil {
			t.Fatal(err)
		}
		rec, err := e.Status(target)
		if err != nil {
			t.Fatal(err)
		}
		if fmt.Sprintf("%v", rec.Positions) != fmt.Sprintf("%v", initial.Positions) {
			t.Fatalf("positions drifted: %v -> %v", initial.Positions, rec.Positions)
		}
		if rec.ID != res.ID {
			t.Fatal("session id changed")
		}
	}
}

func TestUpdateMissingCompanion(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	res, err := e.Inject(testNovel(100), target, 40, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(res.CompanionPath); err != nil {
		t.Fatal(err)
	}

	before := readDoc(t, target)
	if _, err := e.Next(target); !errors.Is(err, ErrMissingCompanion) {
		t.Fatalf("got %v", err)
	}
	if readDoc(t, target) != before {
		t.Fatal("failed update modified the target")
	}

	// status and strip still work without the companion
	if _, err := e.Status(target); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Strip(target); err != nil {
		t.Fatal(err)
	}
}

func TestCompanionDrift(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	res, err := e.Inject(testNovel(100), target, 40, 4)
	if err != nil {
		t.Fatal(err)
	}

	// companion shrinks to two pages worth of lines
	if err := texts.WriteDocument(res.CompanionPath, texts.JoinLines(testNovel(50))); err != nil {
		t.Fatal(err)
	}

	rec, err := e.Goto(target, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalPages != 2 {
		t.Fatalf("got %d pages", rec.TotalPages)
	}
	if rec.Lines != 50 {
		t.Fatalf("got %d lines", rec.Lines)
	}

	// page 2 was valid under the old count but not the new one
	if _, err := e.Goto(target, 2); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("got %v", err)
	}
}

func TestPagingWithoutSession(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	if _, err := e.Status(target); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	if _, err := e.Next(target); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	if _, err := e.Goto(target, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestBadArguments(t *testing.T) {
	e := testEngine()
	target := writeHost(t)

	if _, err := e.Inject(testNovel(10), target, 0, 2); err == nil {
		t.Fatal("zero page size accepted")
	}
	if _, err := e.Inject(testNovel(10), target, 4, 0); err == nil {
		t.Fatal("zero snippet count accepted")
	}
}

func TestEngineModule(t *testing.T) {
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		engine Engine,
	) {
		target := writeHost(t)
		res, err := engine.Inject(testNovel(10), target, 4, 2)
		if err != nil {
			t.Fatal(err)
		}
		if res.TotalPages != 3 {
			t.Fatalf("got %d pages", res.TotalPages)
		}
	})
}
