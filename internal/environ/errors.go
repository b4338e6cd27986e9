package environ

import "errors"

var ErrConnection = errors.New("invalid connection settings")
