package check

import (
	"github.com/btcsuite/btclog"
	"github.com/yuv-protocol/yuv-node/build"
)

// Subsystem defines the logging code for this subsystem.
const Subsystem = "CHK"

var log btclog.Logger

func init() {
	UseLogger(build.NewSubLogger(Subsystem, nil))
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
