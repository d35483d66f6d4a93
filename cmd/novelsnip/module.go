package main

import (
	"github.com/WhisperComments/NovelSnip/sessions"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Sessions sessions.Module
}
