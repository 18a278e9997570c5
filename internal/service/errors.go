package service

import "errors"

// ErrInvalidRoadService is returned for road services missing required data.
var ErrInvalidRoadService = errors.New("invalid road service")
