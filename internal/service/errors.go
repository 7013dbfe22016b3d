package service

import "errors"

var ErrGameNotFound = errors.New("game not found")
