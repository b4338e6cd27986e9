package buildctx

import "errors"

var ErrAssembly = errors.New("build context assembly failed")
