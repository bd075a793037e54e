package app

import (
	"github.com/vk/blockflow/internal/blocks"
	"github.com/vk/blockflow/internal/registry"
)

// coreModules is the default block library an App registers when the caller
// passes no modules of its own.
var coreModules = []registry.Module{
	blocks.Builtin{},
}
