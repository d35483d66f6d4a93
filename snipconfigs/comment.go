package snipconfigs

import (
	"github.com/WhisperComments/NovelSnip/cmds"
	"github.com/WhisperComments/NovelSnip/configs"
	"github.com/WhisperComments/NovelSnip/vars"
)

// CommentPrefix is the comment marker used for every embedded line, chosen
// to match the host document's comment syntax.
type CommentPrefix string

var _ configs.Configurable = CommentPrefix("")

func (c CommentPrefix) ConfigExpr() string {
	return "CommentPrefix"
}

var commentFlag = cmds.Var[string]("-comment")

func (Module) CommentPrefix(
	loader configs.Loader,
) CommentPrefix {
	return CommentPrefix(vars.FirstNonZero(
		*commentFlag,
		configs.First[string](loader, "comment"),
		"#",
	))
}
