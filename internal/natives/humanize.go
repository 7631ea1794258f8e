package natives

import (
	"time"

	"github.com/dustin/go-humanize"

	"loxgo/internal/lang"
)

// Humanize backs the `humanize` module: byte-count and duration
// formatting, grounded on chazu-maggie/go.mod's
// github.com/dustin/go-humanize dependency.
func Humanize() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "humanize",
		Fns: []lang.NativeFnEntry{
			{Name: "bytes", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				if argCount != 1 || !args[0].IsNumber() {
					return lang.Value{}, errArgs("bytes(n)")
				}
				return lang.ObjVal(lang.Intern(humanize.Bytes(uint64(args[0].Number)))), nil
			}},
			{Name: "duration", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				if argCount != 1 || !args[0].IsNumber() {
					return lang.Value{}, errArgs("duration(seconds)")
				}
				d := time.Duration(args[0].Number * float64(time.Second))
				return lang.ObjVal(lang.Intern(humanize.RelTime(time.Now(), time.Now().Add(d), "", ""))), nil
			}},
		},
	}
}
