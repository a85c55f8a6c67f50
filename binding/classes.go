package binding

import (
	"github.com/wippyai/script-containers/bridge"
	"github.com/wippyai/script-containers/internal/coerce"
)

// index converts a script value to an int32 index the way script engines
// do: numbers truncate, numeric strings parse, anything else is 0.
func index(v any) int32 {
	return coerce.LenientInt32(v)
}

// fixedIndex accepts only integral int32 values. Anything else is -1,
// which no fixed array accepts.
func fixedIndex(v any) int32 {
	i, ok := coerce.Signed(v, 32)
	if !ok {
		return -1
	}
	return int32(i)
}

// ArrayClass operates on *bridge.Array.
var ArrayClass = &Class{
	Name:         "Array",
	InfoMessage:  MsgItemInfoInvalid,
	IndexMessage: MsgInvalidIndex,
	Methods: map[string]Method{
		"Num": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.Array).Num(), nil
		}},
		"Add": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Array).Add(args...)
		}},
		"Get": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Array).Get(index(args[0]))
		}},
		"Set": {MinArgs: 2, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Array).Set(index(args[0]), args[1])
		}},
		"Contains": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Array).Contains(args[0])
		}},
		"FindIndex": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Array).FindIndex(args[0])
		}},
		"RemoveAt": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Array).RemoveAt(index(args[0]))
		}},
		"IsValidIndex": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Array).IsValidIndex(index(args[0])), nil
		}},
		"Empty": {Fn: func(self any, _ []any) (any, error) {
			return nil, self.(*bridge.Array).Empty()
		}},
	},
}

// SetClass operates on *bridge.Set.
var SetClass = &Class{
	Name:         "Set",
	InfoMessage:  MsgItemInfoInvalid,
	IndexMessage: MsgInvalidIndexArg,
	Methods: map[string]Method{
		"Num": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.Set).Num(), nil
		}},
		"Add": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Set).Add(args[0])
		}},
		"Get": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Set).Get(index(args[0]))
		}},
		"Contains": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Set).Contains(args[0])
		}},
		"FindIndex": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Set).FindIndex(args[0])
		}},
		"RemoveAt": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Set).RemoveAt(index(args[0]))
		}},
		"IsValidIndex": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Set).IsValidIndex(index(args[0])), nil
		}},
		"GetMaxIndex": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.Set).GetMaxIndex(), nil
		}},
		"Empty": {Fn: func(self any, _ []any) (any, error) {
			return nil, self.(*bridge.Set).Empty()
		}},
	},
}

// MapClass operates on *bridge.Map.
var MapClass = &Class{
	Name:          "Map",
	InfoMessage:   MsgKeyValueInfoInvalid,
	IndexMessage:  MsgInvalidIndex,
	IndexMessages: map[string]string{"GetKey": MsgInvalidRawIndex},
	Methods: map[string]Method{
		"Num": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.Map).Num(), nil
		}},
		"Add": {MinArgs: 2, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Map).Add(args[0], args[1])
		}},
		"Set": {MinArgs: 2, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Map).Set(args[0], args[1])
		}},
		"Get": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			v, _, err := self.(*bridge.Map).Get(args[0])
			return v, err
		}},
		"Remove": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.Map).Remove(args[0])
		}},
		"IsValidIndex": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Map).IsValidIndex(index(args[0])), nil
		}},
		"GetMaxIndex": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.Map).GetMaxIndex(), nil
		}},
		"GetKey": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.Map).GetKey(index(args[0]))
		}},
		"Empty": {Fn: func(self any, _ []any) (any, error) {
			return nil, self.(*bridge.Map).Empty()
		}},
	},
}

// FixedArrayClass operates on *bridge.FixedArray.
var FixedArrayClass = &Class{
	Name:         "FixedArray",
	InfoMessage:  MsgItemInfoInvalid,
	IndexMessage: MsgInvalidIndex,
	Methods: map[string]Method{
		"Num": {Fn: func(self any, _ []any) (any, error) {
			return self.(*bridge.FixedArray).Num()
		}},
		"Get": {MinArgs: 1, Fn: func(self any, args []any) (any, error) {
			return self.(*bridge.FixedArray).Get(fixedIndex(args[0]))
		}},
		"Set": {MinArgs: 2, Fn: func(self any, args []any) (any, error) {
			return nil, self.(*bridge.FixedArray).Set(fixedIndex(args[0]), args[1])
		}},
	},
}
