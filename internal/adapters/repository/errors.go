package repository

import "errors"

// Sentinel kinds for contest store errors.
var (
	ErrDuplicateName  = errors.New("a pick with that name already exists")
	ErrContestClosed  = errors.New("contest is closed: winner already announced")
	ErrUnknownNominee = errors.New("unknown nominee")
	ErrEmptyName      = errors.New("participant name must not be empty")
	ErrInvalidOdds    = errors.New("odds must be a finite number in [0, 1]")
	ErrNotFound       = errors.New("not found")
)
