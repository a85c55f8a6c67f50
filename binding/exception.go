package binding

import (
	"github.com/wippyai/script-containers/errors"
)

// Messages raised to scripts.
const (
	MsgItemInfoInvalid     = "item info is invalid!"
	MsgKeyValueInfoInvalid = "key/value info is invalid!"
	MsgInvalidIndex        = "invalid index"
	MsgInvalidIndexArg     = "invalid index argument"
	MsgInvalidKeyArg       = "invalid key argument"
	MsgInvalidRawIndex     = "the argument is an invalid index"
	MsgArgumentCount       = "invalid arguments length"
)

// Exception is the script-visible form of a failed call.
type Exception struct {
	Cause   error
	Message string
}

func (e *Exception) Error() string {
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Cause
}

// raise maps a core error to the message the class shows for it.
func raise(c *Class, op string, err error) *Exception {
	if ex, ok := err.(*Exception); ok {
		return ex
	}
	msg := err.Error()
	switch errors.KindOf(err) {
	case errors.KindDescriptorInvalid:
		msg = c.InfoMessage
	case errors.KindArgumentCount:
		msg = MsgArgumentCount
	case errors.KindIndexOutOfRange:
		msg = c.IndexMessage
		if m, ok := c.IndexMessages[op]; ok {
			msg = m
		}
	case errors.KindKeyNotFound:
		msg = MsgInvalidKeyArg
	}
	return &Exception{Message: msg, Cause: err}
}
