package schnorr

import (
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/schnorr/replay"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	replay.Logger = Logger
}
