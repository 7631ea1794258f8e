// Package natives provides the concrete native modules a host program wires
// into a VM via RegisterModule, grounded on original_source/src/native/
// native.c's module registry and backed by real third-party packages drawn
// from the retrieval pack wherever one fits, per SPEC_FULL.md §5.
package natives

import (
	"os"
	"time"

	"loxgo/internal/lang"
)

// System backs the `system` module: process exit, wall-clock/monotonic
// time, and sleep, grounded on native.c's system.h entries (`exit`, `time`,
// `clock`, `sleep`). No third-party package in the retrieval pack covers
// process control or clocks, so this stays on stdlib time/os.
func System() *lang.NativeModule {
	start := time.Now()
	return &lang.NativeModule{
		Name: "system",
		Fns: []lang.NativeFnEntry{
			{Name: "exit", Fn: sysExit},
			{Name: "time", Fn: sysTime},
			{Name: "clock", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				return lang.NumberVal(time.Since(start).Seconds()), nil
			}},
			{Name: "sleep", Fn: sysSleep},
		},
	}
}

func sysExit(argCount int, args []lang.Value) (lang.Value, error) {
	code := 0
	if argCount == 1 && args[0].IsNumber() {
		code = int(args[0].Number)
	}
	os.Exit(code)
	return lang.NilVal(), nil
}

func sysTime(argCount int, args []lang.Value) (lang.Value, error) {
	return lang.NumberVal(float64(time.Now().Unix())), nil
}

func sysSleep(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsNumber() {
		return lang.Value{}, errArgs("sleep(seconds)")
	}
	time.Sleep(time.Duration(args[0].Number * float64(time.Second)))
	return lang.NilVal(), nil
}
