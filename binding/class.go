package binding

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/script-containers/errors"
)

// Method is one named operation of a class.
type Method struct {
	// Fn runs the operation. args holds at least MinArgs values.
	Fn      func(self any, args []any) (any, error)
	MinArgs int
}

// Class is the operation table of one container shape.
type Class struct {
	Methods map[string]Method
	// IndexMessages overrides IndexMessage for individual operations.
	IndexMessages map[string]string
	Name          string
	InfoMessage   string
	IndexMessage  string
}

// MethodNames returns the operation names in sorted order.
func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Object binds a class to one container.
type Object struct {
	class *Class
	self  any
}

// NewObject binds class to self. self must be the type the class
// methods expect.
func NewObject(class *Class, self any) *Object {
	return &Object{class: class, self: self}
}

// Class returns the operation table.
func (o *Object) Class() *Class { return o.class }

// Target returns the bound container.
func (o *Object) Target() any { return o.self }

// Call runs operation name. Failures are returned as *Exception.
func (o *Object) Call(name string, args ...any) (any, error) {
	m, ok := o.class.Methods[name]
	if !ok {
		return nil, &Exception{
			Message: o.class.Name + " has no method " + name,
			Cause:   errors.NotFound(errors.PhaseBinding, "method", name),
		}
	}
	if len(args) < m.MinArgs {
		err := errors.ArgumentCount(errors.PhaseBinding, name, m.MinArgs, len(args))
		return nil, o.fail(name, err)
	}
	result, err := m.Fn(o.self, args)
	if err != nil {
		return nil, o.fail(name, err)
	}
	return result, nil
}

func (o *Object) fail(name string, err error) *Exception {
	ex := raise(o.class, name, err)
	Logger().Debug("script exception",
		zap.String("class", o.class.Name),
		zap.String("method", name),
		zap.String("message", ex.Message),
		zap.Error(err))
	return ex
}
