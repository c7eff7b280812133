package check

import (
	"fmt"

	"github.com/yuv-protocol/yuv-node/errkind"
)

func fail(kind errkind.Kind, format string, args ...interface{}) *errkind.Error {
	return errkind.New(kind, fmt.Sprintf(format, args...))
}
