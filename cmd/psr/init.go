package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/psr-lang/psr/cmd/psr/internal/config"
	"github.com/psr-lang/psr/cmd/psr/internal/ui"
)

func newInitCommand() *cobra.Command {
	var template string
	var yes bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffold a new PSR project",
		Long:  `Creates a project directory with psr.yaml and a starter source tree.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runInit(name, template, yes)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Project template (blank, counter, todo)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the wizard and use defaults")

	return cmd
}

func runInit(name, template string, yes bool) error {
	proj := ui.ProjectConfig{Name: name, Template: template, Port: 5173, Cache: true}
	if !yes {
		cfg, done, err := ui.RunWizard(name)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		proj = cfg
		if template != "" {
			proj.Template = template
		}
	}
	if err := ui.ValidateProjectName(proj.Name); err != nil {
		return err
	}
	if proj.Template == "" {
		proj.Template = "blank"
	}

	if _, err := os.Stat(proj.Name); err == nil {
		return fmt.Errorf("directory %s already exists", proj.Name)
	}
	srcDir := filepath.Join(proj.Name, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return err
	}

	cacheOn := proj.Cache
	cfg := config.DefaultConfig()
	cfg.Dev.Port = proj.Port
	cfg.Compiler.Strict = proj.Strict
	cfg.Cache.Enabled = &cacheOn
	if err := config.Save(cfg, proj.Name); err != nil {
		return err
	}

	source, ok := starterSources[proj.Template]
	if !ok {
		return fmt.Errorf("unknown template %q", proj.Template)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "main.psr"), []byte(source), 0644); err != nil {
		return err
	}

	log.Printf("✅ Created %s (%s template)", proj.Name, proj.Template)
	log.Printf("   cd %s && psr dev", proj.Name)
	return nil
}

var starterSources = map[string]string{
	"blank": `component App() {
  return <div class="app">Hello PSR</div>;
}
`,
	"counter": `component Counter() {
  const [count, setCount] = createSignal(0);
  return (
    <div class="counter">
      <span>{count()}</span>
      <button onClick={() => setCount(count() + 1)}>+</button>
    </div>
  );
}
`,
	"todo": `component TodoList() {
  const [items, setItems] = createSignal<string[]>([]);
  const [draft, setDraft] = createSignal('');
  return (
    <div class="todos">
      <input value={draft()} onInput={(e) => setDraft(e.target.value)} />
      <button onClick={() => setItems([...items(), draft()])}>Add</button>
      <ul>{items().map((item) => <li>{item}</li>)}</ul>
    </div>
  );
}
`,
}
