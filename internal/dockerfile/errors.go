package dockerfile

import "errors"

var ErrRender = errors.New("build file rendering failed")
