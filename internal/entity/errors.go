package entity

import "errors"

var (
	// ErrUnknownPricingType means a configuration or request names a pricing type the catalog does not hold.
	ErrUnknownPricingType = errors.New("unknown pricing type")

	// ErrWrongSubsystem is returned when a pricing type is configured somewhere else (road service).
	ErrWrongSubsystem = errors.New("pricing type is configured through a different subsystem")

	ErrUnknownStrategy = errors.New("unknown resolution strategy")

	// ErrStrategyMismatch means the stored pricing no longer agrees with the catalog.
	ErrStrategyMismatch = errors.New("stored pricing does not match catalog strategy")

	ErrRoadServiceNotFound = errors.New("road service not found")
)
