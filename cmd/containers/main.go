package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/script-containers/binding"
	"github.com/wippyai/script-containers/bridge"
	"github.com/wippyai/script-containers/layout"
	"github.com/wippyai/script-containers/memory"
	"github.com/wippyai/script-containers/native"
)

type config struct {
	shape            string
	elem             string
	key              string
	value            string
	policy           string
	backend          string
	dim              int
	pages            uint
	maxPages         uint
	destroyBeforeSet bool
}

func main() {
	var (
		cfg         config
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.StringVar(&cfg.shape, "shape", "array", "Container shape: array, set, map, fixed")
	flag.StringVar(&cfg.elem, "elem", "s32", "Element type for array, set and fixed")
	flag.StringVar(&cfg.key, "key", "string", "Key type for map")
	flag.StringVar(&cfg.value, "value", "s32", "Value type for map")
	flag.IntVar(&cfg.dim, "dim", 4, "Length of a fixed array")
	flag.StringVar(&cfg.policy, "policy", "compact", "Map pair layout: compact, legacy")
	flag.StringVar(&cfg.backend, "backend", "linear", "Memory backend: linear, wazero")
	flag.UintVar(&cfg.pages, "pages", 1, "Initial memory pages")
	flag.UintVar(&cfg.maxPages, "max-pages", 0, "Maximum memory pages (0 = unlimited)")
	flag.BoolVar(&cfg.destroyBeforeSet, "destroy-before-set", false, "Destroy array elements before Set overwrites them")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()
	memory.SetLogger(logger)
	native.SetLogger(logger)
	bridge.SetLogger(logger)
	binding.SetLogger(logger)

	env, err := open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer env.close()

	if *interactive {
		if err := runInteractive(env); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	if err := runScript(os.Stdin, os.Stdout, env.obj, prompt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// environment is one bound container and everything backing it.
type environment struct {
	obj     *binding.Object
	surface *binding.Surface
	cfg     config
	closers []func()
}

func (e *environment) close() {
	if e.surface != nil {
		if err := e.surface.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func open(ctx context.Context, cfg config) (*environment, error) {
	env := &environment{cfg: cfg}

	policy, err := layout.ParsePairPolicy(cfg.policy)
	if err != nil {
		return nil, err
	}

	var mem memory.Growable
	switch cfg.backend {
	case "linear":
		mem = memory.NewLinear(uint32(cfg.pages), uint32(cfg.maxPages))
	case "wazero":
		rt := wazero.NewRuntime(ctx)
		env.closers = append(env.closers, func() { rt.Close(ctx) })
		guest, mod, err := memory.InstantiateGuest(ctx, rt, uint32(cfg.pages), uint32(cfg.maxPages))
		if err != nil {
			env.close()
			return nil, err
		}
		env.closers = append(env.closers, func() { mod.Close(ctx) })
		mem = guest
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.backend)
	}

	heap, err := memory.NewHeap(mem, memory.HeapOptions{
		Base:     memory.DefaultHeapOptions().Base,
		MaxPages: uint32(cfg.maxPages),
	})
	if err != nil {
		env.close()
		return nil, err
	}

	opts := binding.DefaultOptions()
	opts.Native.PairPolicy = policy
	opts.Bridge.DestroyBeforeSet = cfg.destroyBeforeSet
	env.surface = binding.NewSurface(heap, opts)

	env.obj, err = bind(env.surface, cfg)
	if err != nil {
		env.close()
		return nil, err
	}
	return env, nil
}

func bind(s *binding.Surface, cfg config) (*binding.Object, error) {
	switch cfg.shape {
	case "array":
		return s.NewArray(cfg.elem)
	case "set":
		return s.NewSet(cfg.elem)
	case "map":
		return s.NewMap(cfg.key, cfg.value)
	case "fixed":
		return s.NewFixedArray(cfg.elem, int32(cfg.dim))
	default:
		return nil, fmt.Errorf("unknown shape %q", cfg.shape)
	}
}

// describe names the bound container, e.g. "map<string, s32>".
func (c config) describe() string {
	switch c.shape {
	case "map":
		return fmt.Sprintf("map<%s, %s>", c.key, c.value)
	case "fixed":
		return fmt.Sprintf("fixed<%s; %d>", c.elem, c.dim)
	default:
		return fmt.Sprintf("%s<%s>", c.shape, c.elem)
	}
}
