package natives

import "loxgo/internal/lang"

// All returns every native module this repo ships, in registration order.
// Host programs register the subset they want exposed:
//
//	vm := lang.NewVM()
//	for _, m := range natives.All() {
//	    vm.RegisterModule(m)
//	}
func All() []*lang.NativeModule {
	return []*lang.NativeModule{
		System(),
		Math(),
		Array(),
		File(),
		HTTP(),
		JSON(),
		CBOR(),
		UUID(),
		Strcase(),
		Humanize(),
	}
}
