package memory

import (
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/script-containers/errors"
)

// GuestModuleName is the module name used by InstantiateGuest.
const GuestModuleName = "containers-memory"

// GuestModule encodes a module that declares and exports one memory of
// pages initial pages, named "memory". maxPages 0 leaves it unbounded.
func GuestModule(pages, maxPages uint32) []byte {
	limits := []byte{0x00}
	if maxPages > 0 {
		limits[0] = 0x01
	}
	limits = binary.AppendUvarint(limits, uint64(pages))
	if maxPages > 0 {
		limits = binary.AppendUvarint(limits, uint64(maxPages))
	}

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, 0x05)
	mod = binary.AppendUvarint(mod, uint64(len(limits)+1))
	mod = append(mod, 0x01)
	mod = append(mod, limits...)

	export := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}
	mod = append(mod, 0x07)
	mod = binary.AppendUvarint(mod, uint64(len(export)))
	return append(mod, export...)
}

// InstantiateGuest instantiates GuestModule in rt and wraps its memory.
// Closing the returned module releases the memory.
func InstantiateGuest(ctx context.Context, rt wazero.Runtime, pages, maxPages uint32) (*Wazero, api.Module, error) {
	cfg := wazero.NewModuleConfig().WithName(GuestModuleName)
	mod, err := rt.InstantiateWithConfig(ctx, GuestModule(pages, maxPages), cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidInput, err,
			"failed to instantiate guest memory")
	}
	mem := NewWazero(mod.ExportedMemory("memory"))
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, nil, errors.NotFound(errors.PhaseMemory, "export", "memory")
	}
	return mem, mod, nil
}
