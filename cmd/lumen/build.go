package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/diagfmt"
	"lumen/internal/driver"
	"lumen/internal/project"
	"lumen/internal/target"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.lir ...]",
	Short: "Build lumen IR files into an object file",
	Long: "Build compiles textual IR into a relocatable object file.\n" +
		"Without arguments, inputs and settings come from the nearest lumen.toml.",
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "object file path")
	buildCmd.Flags().String("target", "", "target triple (arch[-os[-abi]] or 'native')")
	buildCmd.Flags().Bool("release", false, "optimize aggressively")
	buildCmd.Flags().Bool("emit-llvm", false, "write the module's LLVM IR next to the object file")
	buildCmd.Flags().Bool("verbose-llvm", false, "dump the module to stderr before verification")
	buildCmd.Flags().Bool("no-cache", false, "ignore and do not update the build cache")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	targetValue, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	release, err := cmd.Flags().GetBool("release")
	if err != nil {
		return err
	}
	emitLLVM, err := cmd.Flags().GetBool("emit-llvm")
	if err != nil {
		return err
	}
	verboseLLVM, err := cmd.Flags().GetBool("verbose-llvm")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	manifest, manifestFound, err := project.Load(".")
	if err != nil {
		return err
	}

	moduleName := "lumen_module"
	if manifestFound {
		moduleName = manifest.Config.Package.Name
		if targetValue == "" {
			targetValue = manifest.Config.Build.Target
		}
		if !release && manifest.Config.Build.Profile == "release" {
			release = true
		}
		if output == "" {
			output = manifest.Config.Build.Output
		}
	}

	paths := args
	if len(paths) == 0 {
		if !manifestFound {
			return fmt.Errorf("no input files and no %s found", project.ManifestName)
		}
		paths, err = filepath.Glob(filepath.Join(manifest.Root, "*.lir"))
		if err != nil {
			return err
		}
		sort.Strings(paths)
		if len(paths) == 0 {
			return fmt.Errorf("no .lir files under %s", manifest.Root)
		}
	}
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(paths[0]), filepath.Ext(paths[0]))
		output = base + ".o"
	}

	triple, err := target.Parse(targetValue)
	if err != nil {
		return err
	}

	var cache *driver.BuildCache
	if !noCache {
		cache, err = driver.OpenBuildCache("lumen")
		if err != nil {
			// A broken cache dir degrades to a full build.
			fmt.Fprintf(os.Stderr, "warning: build cache unavailable: %v\n", err)
		}
	}

	res, err := driver.Compile(&driver.Request{
		Paths:          paths,
		ModuleName:     moduleName,
		Triple:         triple,
		OutputPath:     output,
		Debug:          !release,
		EmitLLVM:       emitLLVM,
		VerboseLLVM:    verboseLLVM,
		MaxDiagnostics: maxDiags,
		Cache:          cache,
	})
	if res != nil && res.Bag.Len() > 0 {
		res.Bag.Sort()
		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:   useColor(cmd),
			Context: true,
		})
	}
	if err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("build failed with %d error(s)", res.Bag.ErrorCount())
	}
	if res.UpToDate {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", res.OutputPath)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d function(s))\n", res.OutputPath, res.Lowered)
	return nil
}
