// Package codegen lowers typed IR into an LLVM module and emits a
// relocatable object file. One Generator owns one module, one target
// machine and one builder cursor for the lifetime of a compilation unit;
// declarations can be re-lowered individually without disturbing the
// rest of the module.
package codegen

import (
	"fmt"
	"os"
	"sync"

	"tinygo.org/x/go-llvm"

	"lumen/internal/ir"
	"lumen/internal/target"
	"lumen/internal/types"
)

// Options configures one compilation unit.
type Options struct {
	ModuleName string
	Triple     target.Triple
	OutputPath string
	// Debug disables aggressive codegen optimization.
	Debug    bool
	CPU      string
	Features string
}

// Generator drives the native backend for one module.
type Generator struct {
	opts  Options
	types *types.Interner

	ctx     llvm.Context
	mod     llvm.Module
	tm      llvm.TargetMachine
	td      llvm.TargetData
	builder llvm.Builder

	ptrBits  int
	handlers map[ir.Op]handler // see lower.go
}

var registerTargets sync.Once

// initBackend performs the process-wide, idempotent registration of
// targets, machine code generators and assembly printers/parsers. Safe
// to call before every Generator construction.
func initBackend() {
	registerTargets.Do(func() {
		llvm.InitializeAllTargetInfos()
		llvm.InitializeAllTargets()
		llvm.InitializeAllTargetMCs()
		llvm.InitializeAllAsmParsers()
		llvm.InitializeAllAsmPrinters()
	})
}

// New resolves the target triple, constructs the target machine, module
// and builder, and returns a ready Generator. On any failure after
// partial acquisition the already-acquired native resources are released
// before the error propagates.
func New(tin *types.Interner, opts Options) (*Generator, error) {
	initBackend()

	tripleStr, err := opts.Triple.String()
	if err != nil {
		return nil, err
	}
	tgt, err := llvm.GetTargetFromTriple(tripleStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTarget, tripleStr, err)
	}

	level := llvm.CodeGenLevelAggressive
	if opts.Debug {
		level = llvm.CodeGenLevelNone
	}

	g := &Generator{opts: opts, types: tin}
	g.ctx = llvm.NewContext()
	g.mod = g.ctx.NewModule(opts.ModuleName)
	g.mod.SetTarget(tripleStr)
	g.tm = tgt.CreateTargetMachine(tripleStr, opts.CPU, opts.Features,
		level, llvm.RelocPIC, llvm.CodeModelDefault)
	g.td = g.tm.CreateTargetData()
	g.mod.SetDataLayout(g.td.String())
	g.builder = g.ctx.NewBuilder()
	g.ptrBits = g.td.PointerSize() * 8
	g.handlers = defaultHandlers()
	return g, nil
}

// Module exposes the underlying module for inspection.
func (g *Generator) Module() llvm.Module {
	return g.mod
}

// IRText returns the module's textual form.
func (g *Generator) IRText() string {
	return g.mod.String()
}

// Finalize optionally dumps the module, verifies it, and emits the
// object file to the configured output path. A verification failure is a
// defect in this package, never in the user's program, and suppresses
// emission.
func (g *Generator) Finalize(verboseDump bool) error {
	if verboseDump {
		g.mod.Dump()
	}
	if err := llvm.VerifyModule(g.mod, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	buf, err := g.tm.EmitToMemoryBuffer(g.mod, llvm.ObjectFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmit, err)
	}
	defer buf.Dispose()
	if err := os.WriteFile(g.opts.OutputPath, buf.Bytes(), 0o644); err != nil { //nolint:gosec // object files are world-readable
		return fmt.Errorf("%w: writing %q: %v", ErrEmit, g.opts.OutputPath, err)
	}
	return nil
}

// Dispose releases the builder, target data, target machine and module,
// in that order, then the owning context. Call exactly once.
func (g *Generator) Dispose() {
	g.builder.Dispose()
	g.td.Dispose()
	g.tm.Dispose()
	g.mod.Dispose()
	g.ctx.Dispose()
}
