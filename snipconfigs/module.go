package snipconfigs

import (
	"github.com/WhisperComments/NovelSnip/logs"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
