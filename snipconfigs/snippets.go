package snipconfigs

import (
	"github.com/WhisperComments/NovelSnip/cmds"
	"github.com/WhisperComments/NovelSnip/configs"
	"github.com/WhisperComments/NovelSnip/vars"
)

// Snippets is the number of dispersed fragment regions per page.
type Snippets int

var _ configs.Configurable = Snippets(0)

func (s Snippets) ConfigExpr() string {
	return "Snippets"
}

var snippetsFlag = cmds.Var[int]("-snippets")

func (Module) Snippets(
	loader configs.Loader,
) Snippets {
	return Snippets(vars.FirstNonZero(
		*snippetsFlag,
		configs.First[int](loader, "snippets"),
		6,
	))
}
