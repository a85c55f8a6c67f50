package bridge

import (
	"go.uber.org/zap"

	containers "github.com/wippyai/script-containers"
	"github.com/wippyai/script-containers/descriptor"
	"github.com/wippyai/script-containers/errors"
)

func checkValid(phase errors.Phase, descs ...descriptor.Descriptor) error {
	for _, d := range descs {
		if d == nil {
			return errors.DescriptorInvalid(phase, "<nil>")
		}
		if !d.IsValid() {
			return errors.DescriptorInvalid(phase, d.Name())
		}
	}
	return nil
}

// reject logs a refused call and returns err unchanged.
func reject(phase errors.Phase, op string, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("container", string(phase)),
		zap.String("op", op),
		zap.Error(err))
	Logger().Debug("call rejected", fields...)
	return err
}

// scratch is a transient element used to probe or convert an argument.
// release must run on every exit path.
type scratch struct {
	mem  containers.Arena
	desc descriptor.Descriptor
	addr uint32
}

// newScratch allocates an element and converts value into it. On failure
// nothing is left allocated.
func newScratch(mem containers.Arena, d descriptor.Descriptor, value any, strict bool) (*scratch, error) {
	addr, err := mem.Alloc(d.Size(), d.Align())
	if err != nil {
		return nil, err
	}
	s := &scratch{mem: mem, desc: d, addr: addr}
	if err := d.Initialize(mem, addr); err != nil {
		mem.Free(addr, d.Size(), d.Align())
		return nil, err
	}
	if err := d.FromScript(mem, value, addr, strict); err != nil {
		s.release()
		return nil, err
	}
	return s, nil
}

func (s *scratch) release() {
	if s == nil || s.addr == 0 {
		return
	}
	_ = s.desc.Destroy(s.mem, s.addr)
	s.mem.Free(s.addr, s.desc.Size(), s.desc.Align())
	s.addr = 0
}

// constructFrom initializes the element at dst and copies src into it.
// A failed copy leaves dst destroyed.
func constructFrom(mem containers.Arena, d descriptor.Descriptor, dst, src uint32) error {
	if err := d.Initialize(mem, dst); err != nil {
		return err
	}
	if err := d.Copy(mem, dst, src); err != nil {
		_ = d.Destroy(mem, dst)
		return err
	}
	return nil
}
