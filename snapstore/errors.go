package snapstore

import "fmt"

// SizeExceededError reports a Replace whose estimated payload exceeds the
// configured ceiling. The store is unchanged.
type SizeExceededError struct {
	DataSize    int64 // estimated size of the rejected snapshot
	MaxDataSize int64 // configured ceiling
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("snapstore: snapshot size %d exceeds max %d", e.DataSize, e.MaxDataSize)
}

// SizeEstimateError reports a Replace whose payload could not be measured
// (e.g. a record the codec cannot serialize). The store is unchanged.
type SizeEstimateError struct {
	Cause error
}

func (e *SizeEstimateError) Error() string {
	return fmt.Sprintf("snapstore: cannot estimate snapshot size: %v", e.Cause)
}

func (e *SizeEstimateError) Unwrap() error { return e.Cause }
