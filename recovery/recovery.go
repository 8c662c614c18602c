// Package recovery provides panic-recovery helpers, used by the
// scheduler so that a panicking procedure invoker turns
// into a ProcedureFailed response instead of taking down the host's tick
// goroutine.
package recovery

import (
	"runtime/debug"

	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/rpcerr"
)

// SafeExecute runs fn with panic recovery. A panic is logged and turned
// into a *rpcerr.Error of kind ProcedureFailed.
func SafeExecute(logger logging.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("panic_recovered", "operation", operation, "panic", r, "stack", string(debug.Stack()))
			}
			err = rpcerr.New(rpcerr.ProcedureFailed, "panic in %s: %v", operation, r)
		}
	}()
	return fn()
}

// SafeExecuteWithResult is SafeExecute for a function that also returns a
// value.
func SafeExecuteWithResult[T any](logger logging.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("panic_recovered", "operation", operation, "panic", r, "stack", string(debug.Stack()))
			}
			err = rpcerr.New(rpcerr.ProcedureFailed, "panic in %s: %v", operation, r)
		}
	}()
	return fn()
}

// SafeGo runs fn in a new goroutine with panic recovery; onPanic, if
// non-nil, is called with the recovered value.
func SafeGo(logger logging.Logger, operation string, fn func(), onPanic func(recovered any)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.Error("goroutine_panic_recovered", "operation", operation, "panic", r, "stack", string(debug.Stack()))
				}
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
