package catalog

import "errors"

var ErrUnavailable = errors.New("room catalog unavailable")
