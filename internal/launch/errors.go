package launch

import "errors"

var (
	ErrLaunch = errors.New("launch failed")
	ErrConfig = errors.New("invalid launch configuration")
)
