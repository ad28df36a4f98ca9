package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/psr-lang/psr/cmd/psr/internal/config"
	"github.com/psr-lang/psr/cmd/psr/internal/ui"
	"github.com/psr-lang/psr/internal/cache"
	"github.com/psr-lang/psr/pkg/psr"
)

func newBuildCommand() *cobra.Command {
	var output string
	var noCache bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Compile PSR sources to TypeScript",
		Long:  `Compiles every PSR source under the configured source directory into the output directory.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runBuild(root, output, noCache, strict)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides psr.yaml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the compile cache")
	cmd.Flags().BoolVar(&strict, "strict", false, "Stop each file at the first error")

	return cmd
}

// builder compiles one project tree, consulting the compile cache.
type builder struct {
	cfg   *config.Config
	root  string
	out   string
	cache *cache.Cache
	strict bool
}

func newBuilder(root, output string, noCache, strict bool) (*builder, error) {
	cfg, err := config.Load(root)
	if err != nil {
		log.Printf("⚠️  Failed to load %s: %v (using defaults)", config.FileName, err)
		cfg = config.DefaultConfig()
	}
	if output == "" {
		output = filepath.Join(root, cfg.OutDir)
	}
	b := &builder{cfg: cfg, root: root, out: output, strict: strict || cfg.Compiler.Strict}
	if cfg.CacheEnabled() && !noCache {
		cacheCfg := cache.DefaultConfig()
		if cfg.Cache.Dir != "" {
			cacheCfg.Dir = cfg.Cache.Dir
		}
		if cfg.Cache.MaxSizeMB > 0 {
			cacheCfg.MaxSize = int64(cfg.Cache.MaxSizeMB) << 20
		}
		c, err := cache.New(cacheCfg)
		if err != nil {
			log.Printf("⚠️  Compile cache unavailable: %v", err)
		} else {
			b.cache = c
		}
	}
	return b, nil
}

func runBuild(root, output string, noCache, strict bool) error {
	log.Println("🚀 Building PSR sources...")
	start := time.Now()

	b, err := newBuilder(root, output, noCache, strict)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.out, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	sources, err := b.collectSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Printf("⚠️  No PSR sources under %s", filepath.Join(b.root, b.cfg.SrcDir))
		return nil
	}

	compiled, cached, failed := 0, 0, 0
	for _, src := range sources {
		outcome, err := b.compileFile(src)
		if err != nil {
			return err
		}
		switch outcome {
		case outcomeCompiled:
			compiled++
		case outcomeCached:
			cached++
		case outcomeFailed:
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("build failed: %d of %d files had errors", failed, len(sources))
	}
	log.Printf("✅ Built %d files (%d from cache) in %v", compiled+cached, cached, time.Since(start).Round(time.Millisecond))
	return nil
}

type outcome int

const (
	outcomeCompiled outcome = iota
	outcomeCached
	outcomeFailed
)

// compileFile compiles one source file into the output tree, reporting
// diagnostics as it goes.
func (b *builder) compileFile(src string) (outcome, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		return outcomeFailed, fmt.Errorf("read %s: %w", src, err)
	}

	rel, err := filepath.Rel(filepath.Join(b.root, b.cfg.SrcDir), src)
	if err != nil {
		rel = filepath.Base(src)
	}
	dest := filepath.Join(b.out, outName(rel))

	var key string
	if b.cache != nil {
		key = cache.Key(rel, content, b.cfg.Compiler.Indent, fmt.Sprint(b.strict))
		if data, ok := b.cache.Get(key); ok {
			if err := writeOutput(dest, data); err != nil {
				return outcomeFailed, err
			}
			return outcomeCached, nil
		}
	}

	opts := []psr.Option{psr.WithIndent(b.cfg.Compiler.Indent)}
	if b.cfg.Compiler.MaxDepth > 0 {
		opts = append(opts, psr.WithMaxDepth(b.cfg.Compiler.MaxDepth))
	}
	if b.strict {
		opts = append(opts, psr.WithStrict())
	}
	result := psr.Transform(string(content), opts...)
	ui.PrintDiagnostics(rel, result.Diagnostics)
	if !result.Ok() {
		return outcomeFailed, nil
	}

	if err := writeOutput(dest, []byte(result.Code)); err != nil {
		return outcomeFailed, err
	}
	if b.cache != nil {
		if err := b.cache.Put(key, rel, []byte(result.Code)); err != nil {
			log.Printf("⚠️  Cache write failed for %s: %v", rel, err)
		}
	}
	return outcomeCompiled, nil
}

func (b *builder) collectSources() ([]string, error) {
	srcRoot := filepath.Join(b.root, b.cfg.SrcDir)
	var out []string
	err := filepath.WalkDir(srcRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range b.cfg.Compiler.Extensions {
			if strings.HasSuffix(path, ext) {
				out = append(out, path)
				break
			}
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return out, err
}

// outName maps a source file name to its compiled name.
func outName(rel string) string {
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + ".ts"
}

func writeOutput(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Type-check free validation of PSR sources",
		Long:  `Parses and analyzes sources, reporting diagnostics without writing output.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				result := psr.Transform(string(content))
				ui.PrintDiagnostics(path, result.Diagnostics)
				if !result.Ok() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files had errors", failed, len(args))
			}
			log.Printf("✅ %d files clean", len(args))
			return nil
		},
	}
}
