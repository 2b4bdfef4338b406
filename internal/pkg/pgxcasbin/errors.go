package pgxcasbin

import "errors"

var (
	// ErrReadOnly is returned by every write method. Policies are owned by the
	// identity service; this process only reads them.
	ErrReadOnly = errors.New("pgxcasbin: adapter is read-only")
	// ErrInvalidFilterType indicates LoadFilteredPolicy got something other than Filter.
	ErrInvalidFilterType = errors.New("pgxcasbin: invalid filter type")
	// ErrTooManyValues indicates a filter with more values than rule columns.
	ErrTooManyValues = errors.New("pgxcasbin: filter has more values than rule columns")
	ErrSelect        = errors.New("pgxcasbin: failed to select rules")
	ErrScanRow       = errors.New("pgxcasbin: failed to scan rule")
	ErrListen        = errors.New("pgxcasbin: failed to listen channel")
	ErrNotify        = errors.New("pgxcasbin: failed to notify channel")
)
