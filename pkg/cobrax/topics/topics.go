// Package topics adds file-based help topics to a cobra command tree.
// Topics are markdown or text files read from an fs.FS, usually an
// embedded directory, and shown by `<tool> help <topic>`.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/spf13/cobra"
)

// Topic is a single help page.
type Topic struct {
	Name    string
	Format  string // file extension, ".md" or ".txt"
	Content string
}

// Options configures a Manager.
type Options struct {
	// Extensions accepted as topics. Defaults to .txt and .md.
	Extensions []string

	// Renderer formats topic content. Defaults to PlainRenderer.
	Renderer Renderer
}

// Manager holds the loaded topics.
type Manager struct {
	topics   map[string]Topic
	renderer Renderer
}

// Load reads every topic file in the root of fsys.
func Load(fsys fs.FS, opts Options) (*Manager, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".txt", ".md"}
	}
	m := &Manager{topics: make(map[string]Topic), renderer: opts.Renderer}
	if m.renderer == nil {
		m.renderer = PlainRenderer{}
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read help topics")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if !contains(exts, ext) {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read help topic %s", entry.Name())
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		m.topics[name] = Topic{Name: name, Format: ext, Content: string(data)}
	}
	return m, nil
}

// Get looks a topic up by name. Flag-style names (--dry-run) also match
// an "option-" topic.
func (m *Manager) Get(name string) (Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics["option-"+name]
	return t, ok
}

// Names returns the sorted topic names.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes the formatted topic to w.
func (m *Manager) Render(w io.Writer, t Topic) {
	_, _ = fmt.Fprint(w, m.renderer.Render(t.Content, t.Format))
}

// List writes the topic index to w.
func (m *Manager) List(w io.Writer, tool string) {
	names := m.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "No help topics available.")
		return
	}

	var general, options []string
	for _, name := range names {
		if opt, ok := strings.CutPrefix(name, "option-"); ok {
			options = append(options, opt)
		} else {
			general = append(general, name)
		}
	}

	_, _ = fmt.Fprintln(w, "Available help topics:")
	if len(general) > 0 {
		_, _ = fmt.Fprintln(w, "\nGeneral topics:")
		for _, name := range general {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		_, _ = fmt.Fprintln(w, "\nOption topics:")
		for _, name := range options {
			_, _ = fmt.Fprintf(w, "  --%s\n", name)
		}
	}
	_, _ = fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", tool)
}

// Install replaces root's help command with one that also knows topics.
func (m *Manager) Install(root *cobra.Command) {
	original := root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic in the application.
Simply type ` + root.Name() + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + root.Name() + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				original(root, args)
				return
			}
			if args[0] == "topics" {
				m.List(cmd.OutOrStdout(), root.Name())
				return
			}
			if t, ok := m.Get(args[0]); ok {
				m.Render(cmd.OutOrStdout(), t)
				return
			}
			target, _, err := root.Find(args)
			if err != nil || target == nil {
				original(root, args)
				return
			}
			original(target, args)
		},
	}

	root.SetHelpCommand(helpCmd)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
