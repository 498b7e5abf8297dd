package errors

import "errors"

// ErrOptimisticLock reports that the row changed under the caller;
// refresh and retry.
var ErrOptimisticLock = errors.New("record was modified by another operation, refresh and retry")
