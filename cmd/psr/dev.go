package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/psr-lang/psr/pkg/live"
)

func newDevCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "dev [dir]",
		Short: "Start the development server",
		Long:  `Watches PSR sources, recompiles on change and live-reloads connected browsers.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runDev(root, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (overrides psr.yaml)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to bind (overrides psr.yaml)")

	return cmd
}

type devServer struct {
	builder *builder
	watcher *fsnotify.Watcher
	hub     *live.Hub
}

func runDev(root, host string, port int) error {
	b, err := newBuilder(root, "", false, false)
	if err != nil {
		return err
	}
	if host == "" {
		host = b.cfg.Dev.Host
	}
	if port == 0 {
		port = b.cfg.Dev.Port
	}

	log.Println("🚀 Starting PSR dev server...")
	if _, err := os.Stat(filepath.Join(root, b.cfg.SrcDir)); err != nil {
		return fmt.Errorf("source directory %s not found", filepath.Join(root, b.cfg.SrcDir))
	}
	if err := os.MkdirAll(b.out, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	s := &devServer{builder: b, watcher: watcher, hub: live.NewHub()}
	if err := s.watchTree(filepath.Join(root, b.cfg.SrcDir)); err != nil {
		return err
	}

	// full build before serving
	if err := s.rebuildAll(); err != nil {
		log.Printf("⚠️  Initial build: %v", err)
	}

	go s.watchFiles(time.Duration(b.cfg.Dev.Debounce) * time.Millisecond)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir(b.out)))

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("🌐 Serving %s on http://%s (live reload on /ws)", b.out, addr)
	return http.ListenAndServe(addr, mux)
}

func (s *devServer) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return s.watcher.Add(path)
		}
		return nil
	})
}

// watchFiles debounces change bursts before recompiling, the editor save
// storm otherwise triggers several builds per keystroke.
func (s *devServer) watchFiles(debounceFor time.Duration) {
	debounce := time.NewTimer(0)
	<-debounce.C

	var pending []fsnotify.Event
	var mu sync.Mutex

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.isRelevantFile(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.watcher.Add(event.Name)
					continue
				}
			}
			mu.Lock()
			pending = append(pending, event)
			mu.Unlock()
			debounce.Reset(debounceFor)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			mu.Lock()
			events := pending
			pending = nil
			mu.Unlock()
			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

func (s *devServer) isRelevantFile(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return true
	}
	for _, ext := range s.builder.cfg.Compiler.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	seen := map[string]bool{}
	failed := false
	for _, event := range events {
		if seen[event.Name] || event.Op.Has(fsnotify.Remove) {
			continue
		}
		seen[event.Name] = true
		log.Printf("🔄 %s changed, recompiling...", event.Name)
		out, err := s.builder.compileFile(event.Name)
		if err != nil {
			log.Printf("⚠️  %v", err)
			failed = true
			continue
		}
		if out == outcomeFailed {
			failed = true
			s.hub.BuildError(event.Name, "compile failed, see terminal")
		}
	}
	if !failed && len(seen) > 0 {
		s.hub.Reload()
		log.Printf("⚡ Reloaded %d clients", s.hub.ClientCount())
	}
}

func (s *devServer) rebuildAll() error {
	sources, err := s.builder.collectSources()
	if err != nil {
		return err
	}
	failed := 0
	for _, src := range sources {
		out, err := s.builder.compileFile(src)
		if err != nil {
			return err
		}
		if out == outcomeFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files had errors", failed, len(sources))
	}
	log.Printf("✅ Compiled %d files", len(sources))
	return nil
}
