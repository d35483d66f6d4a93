package sessions

import (
	"github.com/WhisperComments/NovelSnip/logs"
	"github.com/WhisperComments/NovelSnip/marks"
	"github.com/WhisperComments/NovelSnip/snipconfigs"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs snipconfigs.Module
}

func (Module) Engine(
	logger logs.Logger,
	comment snipconfigs.CommentPrefix,
) Engine {
	return NewEngine(logger, marks.NewMarker(string(comment)))
}
