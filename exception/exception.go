package exception

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/monitoring"
)

func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name, false)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the node cannot live without.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer recoverPanic(name, true)
		fn()
	}()
}

func recoverPanic(name string, exit bool) {
	r := recover()
	if r == nil {
		return
	}
	monitoring.IncreasePanicCount()
	logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v\n%s", name, r, debug.Stack()))
	if exit {
		os.Exit(1)
	}
}
