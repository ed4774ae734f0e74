package domain

import "errors"

// ErrDatasetNotLoaded is returned when a query runs before the one-time
// dataset load has completed. Startup treats it as fatal.
var ErrDatasetNotLoaded = errors.New("dataset not loaded")
