// Package sessions orchestrates the embedding lifecycle of a host
// document: Inject starts a session, Update and its Next/Prev/Goto
// wrappers page through the novel in place, Strip ends the session, Status
// reports it. Every operation validates fully before writing, so a failed
// call leaves the target document untouched.
package sessions

import (
	"errors"
	"fmt"
	"os"

	"github.com/WhisperComments/NovelSnip/logs"
	"github.com/WhisperComments/NovelSnip/marks"
	"github.com/WhisperComments/NovelSnip/pages"
	"github.com/WhisperComments/NovelSnip/texts"
	"github.com/google/uuid"
)

type Engine struct {
	logger logs.Logger
	marker marks.Marker
}

func NewEngine(logger logs.Logger, marker marks.Marker) Engine {
	return Engine{
		logger: logger,
		marker: marker,
	}
}

// InjectResult reports the artifacts of a successful injection.
type InjectResult struct {
	ID            string
	TotalPages    int
	BackupPath    string
	CompanionPath string
}

// Inject embeds page 0 of the novel into the target document and persists
// the full novel as a companion file beside it. The target must not hold a
// session yet. Insertion offsets are chosen once, over the pre-embedding
// host lines, and recorded in the metadata for the session's lifetime.
func (e Engine) Inject(novel []string, target string, pageSize int, snippets int) (InjectResult, error) {
	if pageSize < 1 {
		return InjectResult{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if snippets < 1 {
		return InjectResult{}, fmt.Errorf("snippet count must be positive, got %d", snippets)
	}

	doc, err := texts.ReadDocument(target)
	if err != nil {
		return InjectResult{}, err
	}
	if rec, _, ok := e.marker.FindMeta(doc); ok {
		return InjectResult{}, fmt.Errorf("%s holds session %s: %w", target, rec.ID, ErrAlreadyInjected)
	}

	bak, err := texts.Backup(target)
	if err != nil {
		return InjectResult{}, err
	}
	companion := texts.CompanionPath(target)
	if err := texts.WriteDocument(companion, texts.JoinLines(novel)); err != nil {
		return InjectResult{}, err
	}

	hostLines := texts.SplitLines(doc)
	rec := marks.Record{
		Version:     marks.RecordVersion,
		ID:          uuid.NewString(),
		Lines:       len(novel),
		PageSize:    pageSize,
		Snippets:    snippets,
		TotalPages:  pages.TotalPages(len(novel), pageSize),
		CurrentPage: 0,
		Positions:   pages.Offsets(len(hostLines), snippets),
	}
	bodies := pages.Split(pages.Page(novel, 0, pageSize), snippets)

	if err := texts.WriteDocument(target, e.compose(rec, hostLines, bodies)); err != nil {
		return InjectResult{}, err
	}

	e.logger.Info("injected",
		"target", target,
		"id", rec.ID,
		"pages", rec.TotalPages,
		"page_size", pageSize,
		"snippets", snippets,
	)
	return InjectResult{
		ID:            rec.ID,
		TotalPages:    rec.TotalPages,
		BackupPath:    bak,
		CompanionPath: companion,
	}, nil
}

// compose renders the final document: the metadata region and a blank
// separator first, then the host lines with one fragment region spliced in
// at each recorded offset. Offsets refer to pre-embedding host lines; the
// shift caused by the metadata region's physical lines falls out of
// emitting it before the host content.
func (e Engine) compose(rec marks.Record, hostLines []string, bodies [][]string) string {
	out := texts.SplitLines(e.marker.MetaBlock(rec))
	out = append(out, "")
	last := 0
	for i, pos := range rec.Positions {
		pos = max(pos, last)
		pos = min(pos, len(hostLines))
		out = append(out, hostLines[last:pos]...)
		out = append(out, texts.SplitLines(e.marker.SnipBlock(rec.ID, i, bodies[i]))...)
		last = pos
	}
	out = append(out, hostLines[last:]...)
	return texts.JoinLines(out)
}

// Update regenerates the session's fragment regions in place with the
// given page and records it as current. Fragment regions are found by
// their sentinel identity, not by recorded position, so host edits between
// calls do not break paging. The page count is recomputed from the
// companion copy; a drifted companion adjusts the record rather than
// failing, but the requested page must be valid under both the recorded
// and the recomputed count.
func (e Engine) Update(target string, page int) (marks.Record, error) {
	doc, err := texts.ReadDocument(target)
	if err != nil {
		return marks.Record{}, err
	}
	rec, _, ok := e.marker.FindMeta(doc)
	if !ok {
		return marks.Record{}, fmt.Errorf("%s: %w", target, ErrNotFound)
	}
	if rec.PageSize < 1 || rec.Snippets < 1 {
		return marks.Record{}, fmt.Errorf("corrupt metadata record in %s (id=%s)", target, rec.ID)
	}
	if page < 0 || page >= rec.TotalPages {
		return marks.Record{}, fmt.Errorf("page %d outside 0..%d: %w", page, rec.TotalPages-1, ErrPageOutOfRange)
	}

	companion := texts.CompanionPath(target)
	novel, err := texts.LoadLines(companion)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return marks.Record{}, fmt.Errorf("%s: %w", companion, ErrMissingCompanion)
		}
		return marks.Record{}, err
	}

	if total := pages.TotalPages(len(novel), rec.PageSize); total != rec.TotalPages {
		e.logger.Warn("novel copy changed, recalculating pages",
			"id", rec.ID,
			"was", rec.TotalPages,
			"now", total,
		)
		rec.TotalPages = total
		rec.Lines = len(novel)
		if page >= total {
			return marks.Record{}, fmt.Errorf("page %d outside 0..%d after recalculation: %w", page, total-1, ErrPageOutOfRange)
		}
	}

	bodies := pages.Split(pages.Page(novel, page, rec.PageSize), rec.Snippets)
	doc, replaced := e.marker.ReplaceSnips(doc, rec.ID, bodies)
	if len(replaced) < rec.Snippets {
		e.logger.Warn("fragment regions missing from target",
			"id", rec.ID,
			"expected", rec.Snippets,
			"replaced", replaced,
		)
	}

	rec.CurrentPage = page
	_, region, ok := e.marker.FindMeta(doc)
	if !ok {
		return marks.Record{}, fmt.Errorf("metadata region lost while updating %s", target)
	}
	doc = doc[:region.Start] + e.marker.RewriteMeta(region.Text, rec) + doc[region.End:]

	if err := texts.WriteDocument(target, doc); err != nil {
		return marks.Record{}, err
	}
	e.logger.Info("updated",
		"target", target,
		"id", rec.ID,
		"page", page,
	)
	return rec, nil
}

// Next pages forward, wrapping from the last page to page 0. The target
// page is computed from the record as currently embedded, before Update
// re-reads the companion.
func (e Engine) Next(target string) (marks.Record, error) {
	rec, err := e.Status(target)
	if err != nil {
		return marks.Record{}, err
	}
	total := max(rec.TotalPages, 1)
	return e.Update(target, (rec.CurrentPage+1)%total)
}

// Prev pages backward, wrapping from page 0 to the last page.
func (e Engine) Prev(target string) (marks.Record, error) {
	rec, err := e.Status(target)
	if err != nil {
		return marks.Record{}, err
	}
	total := max(rec.TotalPages, 1)
	return e.Update(target, (rec.CurrentPage-1+total)%total)
}

// Goto pages directly to the given index, without wraparound.
func (e Engine) Goto(target string, page int) (marks.Record, error) {
	return e.Update(target, page)
}

// StripResult reports the artifacts of a successful strip.
type StripResult struct {
	ID         string
	BackupPath string
}

// Strip removes the session entirely: the metadata region, every fragment
// region sharing its id, and the blank-line debris left behind. The
// companion and backup files are kept.
func (e Engine) Strip(target string) (StripResult, error) {
	doc, err := texts.ReadDocument(target)
	if err != nil {
		return StripResult{}, err
	}
	rec, region, ok := e.marker.FindMeta(doc)
	if !ok {
		return StripResult{}, fmt.Errorf("%s: %w", target, ErrNotFound)
	}

	bak, err := texts.Backup(target)
	if err != nil {
		return StripResult{}, err
	}

	doc = doc[:region.Start] + doc[region.End:]
	doc = e.marker.RemoveSnips(doc, rec.ID)
	lines := normalizeBlankLines(texts.SplitLines(doc))

	if err := texts.WriteDocument(target, texts.JoinLines(lines)); err != nil {
		return StripResult{}, err
	}
	e.logger.Info("stripped",
		"target", target,
		"id", rec.ID,
	)
	return StripResult{
		ID:         rec.ID,
		BackupPath: bak,
	}, nil
}

// Status returns the embedded metadata record without touching the target.
func (e Engine) Status(target string) (marks.Record, error) {
	doc, err := texts.ReadDocument(target)
	if err != nil {
		return marks.Record{}, err
	}
	rec, _, ok := e.marker.FindMeta(doc)
	if !ok {
		return marks.Record{}, fmt.Errorf("%s: %w", target, ErrNotFound)
	}
	return rec, nil
}

// normalizeBlankLines trims leading blank lines and collapses every run of
// three or more blank lines to a single one.
func normalizeBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		if len(out) > 0 {
			n := run
			if n >= 3 {
				n = 1
			}
			for range n {
				out = append(out, "")
			}
		}
		run = 0
	}
	for _, line := range lines {
		if line == "" {
			run++
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return out
}
