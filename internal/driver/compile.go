// Package driver orchestrates a compilation: it loads textual IR,
// lowers declaration by declaration with per-declaration failure
// isolation, and finalizes the backend module into an object file. An
// on-disk cache lets a fully unchanged build skip the backend entirely.
package driver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"lumen/internal/codegen"
	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/irtext"
	"lumen/internal/source"
	"lumen/internal/target"
	"lumen/internal/types"
)

// Request configures one compilation.
type Request struct {
	Paths      []string
	ModuleName string
	Triple     target.Triple
	OutputPath string
	Debug      bool

	// EmitLLVM additionally writes the module's textual IR next to the
	// object file.
	EmitLLVM bool
	// VerboseLLVM dumps the module to stderr before verification.
	VerboseLLVM bool

	MaxDiagnostics int
	Cache          *BuildCache // nil disables incremental skipping
}

// Result reports what a compilation did.
type Result struct {
	FileSet    *source.FileSet
	Program    *ir.Program
	Bag        *diag.Bag
	OutputPath string

	// UpToDate means the cache proved nothing changed and the backend
	// was never started.
	UpToDate bool
	Lowered  int
	Failed   int
}

// Compile runs the whole pipeline. Per-declaration lowering faults end
// up as diagnostics in the result's bag; the returned error is reserved
// for faults that abort the compilation as a whole (setup, verification,
// emission, I/O).
func Compile(req *Request) (*Result, error) {
	if req == nil || len(req.Paths) == 0 {
		return nil, errors.New("no input files")
	}
	maxDiags := req.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 100
	}

	res := &Result{
		FileSet:    source.NewFileSet(),
		Bag:        diag.NewBag(maxDiags),
		OutputPath: req.OutputPath,
	}

	tin := types.NewInterner()
	res.Program = ir.NewProgram(tin)
	for _, path := range req.Paths {
		id, err := res.FileSet.Load(path)
		if err != nil {
			return res, fmt.Errorf("failed to read %s: %w", path, err)
		}
		irtext.ParseInto(res.FileSet.Get(id), res.Program, res.Bag)
	}
	if res.Bag.HasErrors() {
		return res, nil
	}
	if err := ir.Validate(res.Program); err != nil {
		return res, fmt.Errorf("produced IR violates backend contract: %w", err)
	}

	tripleStr, err := req.Triple.String()
	if err != nil {
		return res, err
	}
	names, hashes, err := hashDecls(res.Program)
	if err != nil {
		return res, err
	}
	if payload, ok, err := req.Cache.Get(req.OutputPath); err == nil && ok {
		if payload.Matches(tripleStr, req.Debug, names, hashes, req.OutputPath) {
			res.UpToDate = true
			return res, nil
		}
	}

	gen, err := codegen.New(tin, codegen.Options{
		ModuleName: req.ModuleName,
		Triple:     req.Triple,
		OutputPath: req.OutputPath,
		Debug:      req.Debug,
	})
	if err != nil {
		return res, err
	}
	defer gen.Dispose()

	for _, d := range res.Program.Decls {
		if !d.IsFunctionBody() {
			continue
		}
		if err := gen.LowerDecl(d); err != nil {
			var failure *codegen.Failure
			if errors.As(err, &failure) {
				res.Failed++
				res.Bag.Add(failure.Diagnostic())
				continue
			}
			return res, err
		}
		res.Lowered++
	}
	if res.Failed > 0 {
		return res, nil
	}

	if err := gen.Finalize(req.VerboseLLVM); err != nil {
		return res, err
	}
	if req.EmitLLVM {
		llPath := strings.TrimSuffix(req.OutputPath, ".o") + ".ll"
		if err := os.WriteFile(llPath, []byte(gen.IRText()), 0o644); err != nil { //nolint:gosec // readable artifact
			return res, fmt.Errorf("failed to write %s: %w", llPath, err)
		}
	}

	if req.Cache != nil {
		if err := storeCacheEntry(req.Cache, req.OutputPath, tripleStr, req.Debug, names, hashes); err != nil {
			// Cache write problems must not fail a build that already
			// produced its object file.
			fmt.Fprintf(os.Stderr, "warning: build cache update failed: %v\n", err)
		}
	}
	return res, nil
}

// hashDecls computes the canonical-form hash of every declaration, in
// program order, hashing bodies concurrently.
func hashDecls(p *ir.Program) ([]string, []Digest, error) {
	names := make([]string, len(p.Decls))
	hashes := make([]Digest, len(p.Decls))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, d := range p.Decls {
		i, d := i, d
		g.Go(func() error {
			var b strings.Builder
			if err := ir.DumpDecl(&b, p.Types, d); err != nil {
				return err
			}
			names[i] = d.Name
			hashes[i] = sha256.Sum256([]byte(b.String()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return names, hashes, nil
}

func storeCacheEntry(cache *BuildCache, outputPath, triple string, debug bool, names []string, hashes []Digest) error {
	obj, err := os.ReadFile(outputPath) // #nosec G304 -- configured output path
	if err != nil {
		return err
	}
	return cache.Put(outputPath, &BuildPayload{
		Schema:     cacheSchemaVersion,
		Triple:     triple,
		Debug:      debug,
		DeclNames:  names,
		DeclHashes: hashes,
		ObjectHash: sha256.Sum256(obj),
	})
}
