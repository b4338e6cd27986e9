package imageuri

import "errors"

var ErrInvalidReference = errors.New("invalid image reference")
