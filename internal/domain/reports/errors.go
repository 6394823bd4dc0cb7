package reports

import "errors"

var (
	ErrInvalidGroupBy = errors.New("groupBy must be profile, project, client, category or day")
	ErrRangeOrder     = errors.New("range end precedes start")
)
