package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/WhisperComments/NovelSnip/cmds"
	"github.com/WhisperComments/NovelSnip/logs"
	"github.com/WhisperComments/NovelSnip/marks"
	"github.com/WhisperComments/NovelSnip/modes"
	"github.com/WhisperComments/NovelSnip/sessions"
	"github.com/WhisperComments/NovelSnip/snipconfigs"
	"github.com/WhisperComments/NovelSnip/texts"
	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"golang.org/x/term"
)

var ce = e5.Check.With(e5.WrapStacktrace)

type deps struct {
	engine   sessions.Engine
	pageSize int
	snippets int
}

// the operation selected on the command line, run after all flags are
// consumed
var action func(d deps) error

func init() {

	cmds.Define("inject", cmds.Func(func(novel string, target string) {
		action = func(d deps) error {
			lines, err := loadNovel(novel)
			if err != nil {
				return err
			}
			res, err := d.engine.Inject(lines, target, d.pageSize, d.snippets)
			if err != nil {
				return err
			}
			fmt.Printf("backup created at %s\n", res.BackupPath)
			fmt.Printf("companion novel copy written to %s (required for paging)\n", res.CompanionPath)
			fmt.Printf("injected novel (id=%s) into %s. pages=%d, page_size=%d, snippets=%d\n",
				res.ID, target, res.TotalPages, d.pageSize, d.snippets)
			return nil
		}
	}).Desc("embed a novel into a target document, one page at a time"))

	cmds.Define("next", cmds.Func(func(target string) {
		action = pagingAction(target, func(d deps) (marks.Record, error) {
			return d.engine.Next(target)
		})
	}).Desc("page forward, wrapping at the end"))

	cmds.Define("prev", cmds.Func(func(target string) {
		action = pagingAction(target, func(d deps) (marks.Record, error) {
			return d.engine.Prev(target)
		})
	}).Desc("page backward, wrapping at the start"))

	cmds.Define("goto", cmds.Func(func(target string, page int) {
		action = pagingAction(target, func(d deps) (marks.Record, error) {
			return d.engine.Goto(target, page)
		})
	}).Desc("go to a page by index"))

	cmds.Define("status", cmds.Func(func(target string) {
		action = func(d deps) error {
			rec, err := d.engine.Status(target)
			if err != nil {
				return err
			}
			fmt.Println("session status:")
			fmt.Printf("  id: %s\n", rec.ID)
			fmt.Printf("  lines: %d\n", rec.Lines)
			fmt.Printf("  page size: %d\n", rec.PageSize)
			fmt.Printf("  snippets: %d\n", rec.Snippets)
			fmt.Printf("  total pages: %d\n", rec.TotalPages)
			fmt.Printf("  current page: %d\n", rec.CurrentPage)
			fmt.Printf("  positions: %v\n", rec.Positions)
			return nil
		}
	}).Desc("show the embedded session record"))

	cmds.Define("strip", cmds.Func(func(target string) {
		action = func(d deps) error {
			res, err := d.engine.Strip(target)
			if err != nil {
				return err
			}
			fmt.Printf("backup created at %s\n", res.BackupPath)
			fmt.Printf("removed novel id=%s from %s\n", res.ID, target)
			return nil
		}
	}).Desc("remove the embedded novel and restore the document"))

}

func main() {
	if err := cmds.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if action == nil {
		cmds.GlobalExecutor.PrintUsage()
		os.Exit(0)
	}

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		engine sessions.Engine,
		newSpan logs.NewSpan,
		pageSize snipconfigs.PageSize,
		snippets snipconfigs.Snippets,
	) {
		ctx, _ := newSpan(context.Background(), "")
		err := action(deps{
			engine:   engine,
			pageSize: int(pageSize),
			snippets: int(snippets),
		})
		if err != nil {
			err = logs.WrapSpan(ctx, err)
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	})
}

func pagingAction(target string, op func(d deps) (marks.Record, error)) func(d deps) error {
	return func(d deps) error {
		rec, err := op(d)
		if err != nil {
			return err
		}
		fmt.Printf("updated %s to page %d of %d (id=%s)\n",
			target, rec.CurrentPage, rec.TotalPages, rec.ID)
		return nil
	}
}

// loadNovel reads the novel source, or stdin when path is "-".
func loadNovel(path string) ([]string, error) {
	if path == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("refusing to read the novel from a terminal; pipe it in or pass a file")
		}
		data, err := io.ReadAll(os.Stdin)
		ce(err)
		return texts.DecodeLines(data)
	}
	return texts.LoadLines(path)
}
