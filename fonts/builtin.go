package fonts

import (
	"github.com/go-fonts/liberation/liberationsansbold"
	"github.com/go-fonts/liberation/liberationsansregular"
)

// Builtin parses the faces compiled into the binary: Liberation Sans regular and bold.
func Builtin() ([]*Font, error) {
	out := make([]*Font, 0, 2)
	for _, data := range [][]byte{liberationsansregular.TTF, liberationsansbold.TTF} {
		f, err := Parse(data)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
