package natives

import (
	"github.com/gofrs/uuid"

	"loxgo/internal/lang"
)

// UUID backs the `uuid` module: a single `v4` generator, grounded on
// deepnoodle-ai-risor/go.mod's github.com/gofrs/uuid dependency.
func UUID() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "uuid",
		Fns: []lang.NativeFnEntry{
			{Name: "v4", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				id, err := uuid.NewV4()
				if err != nil {
					return lang.Value{}, err
				}
				return lang.ObjVal(lang.Intern(id.String())), nil
			}},
		},
	}
}
