package concurrency

import (
	"log/slog"
	"runtime/debug"
)

// SafeGo runs fn in a goroutine and recovers panics so a failing
// background task (alert delivery, sweeps) cannot take the process down.
func SafeGo(fn func(), onPanic func(any)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Recovered panic in background task", "panic", r, "stack", string(debug.Stack()))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
