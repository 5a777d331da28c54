package anomaly

import "errors"

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidDate          = errors.New("invalid detection date")
	ErrInvalidBandRule      = errors.New("invalid band rule")
	ErrInvalidFactor        = errors.New("invalid severity factor")
	ErrInvalidAnomalyCode   = errors.New("invalid anomaly code")
)
