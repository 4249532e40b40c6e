package storage

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPartNotInStock   = errors.New("part is not in stock")
	ErrPartNotInRepair  = errors.New("part is not attached to this repair")
	ErrRegisterDisabled = errors.New("cash register is disabled")
	ErrConflict         = errors.New("conflict")
)
