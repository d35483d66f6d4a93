package snipconfigs

import (
	"github.com/WhisperComments/NovelSnip/cmds"
	"github.com/WhisperComments/NovelSnip/configs"
	"github.com/WhisperComments/NovelSnip/vars"
)

// PageSize is the number of novel lines embedded per page.
type PageSize int

var _ configs.Configurable = PageSize(0)

func (p PageSize) ConfigExpr() string {
	return "PageSize"
}

var pageSizeFlag = cmds.Var[int]("-page-size")

func (Module) PageSize(
	loader configs.Loader,
) PageSize {
	return PageSize(vars.FirstNonZero(
		*pageSizeFlag,
		configs.First[int](loader, "page_size"),
		40,
	))
}
