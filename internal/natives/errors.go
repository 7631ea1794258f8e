package natives

import "fmt"

func errArgs(usage string) error {
	return fmt.Errorf("expected arguments matching %s", usage)
}
