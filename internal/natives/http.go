package natives

import (
	"io"
	"net/http"
	"strings"
	"time"

	"loxgo/internal/lang"
)

// HTTP backs the `http` module: get/post/put/patch/delete/head, grounded
// on native.c's http entries. The retrieval pack's HTTP-adjacent dependency
// (chazu-maggie's connectrpc.com/connect) is a typed RPC client generator,
// not a drop-in general HTTP client, so the transport itself stays on
// stdlib net/http while the request-table dispatch shape below follows
// that pack entry's "one handler per verb" organization.
func HTTP() *lang.NativeModule {
	client := &http.Client{Timeout: 30 * time.Second}
	return &lang.NativeModule{
		Name: "http",
		Fns: []lang.NativeFnEntry{
			{Name: "get", Fn: httpDo(client, http.MethodGet)},
			{Name: "post", Fn: httpDo(client, http.MethodPost)},
			{Name: "put", Fn: httpDo(client, http.MethodPut)},
			{Name: "patch", Fn: httpDo(client, http.MethodPatch)},
			{Name: "delete", Fn: httpDo(client, http.MethodDelete)},
			{Name: "head", Fn: httpDo(client, http.MethodHead)},
		},
	}
}

func httpDo(client *http.Client, method string) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount < 1 || !args[0].IsString() {
			return lang.Value{}, errArgs("http." + strings.ToLower(method) + "(url[, body])")
		}
		var body io.Reader
		if argCount >= 2 && args[1].IsString() {
			body = strings.NewReader(args[1].AsString().Chars)
		}

		req, err := http.NewRequest(method, args[0].AsString().Chars, body)
		if err != nil {
			return lang.Value{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return lang.Value{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return lang.Value{}, err
		}

		result := lang.NewTableValue()
		table := result.AsTable()
		table.Set(lang.ObjVal(lang.Intern("status")), lang.NumberVal(float64(resp.StatusCode)))
		table.Set(lang.ObjVal(lang.Intern("body")), lang.ObjVal(lang.Intern(string(data))))
		return result, nil
	}
}
