package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gamegrove/internal/server"
	"gamegrove/internal/userpath"
	"gamegrove/internal/workspace"
	"gamegrove/pkg/config"
	"gamegrove/pkg/fsys"
	"gamegrove/pkg/listing"
	"gamegrove/pkg/template"
)

var (
	configPath string
	logLevel   string

	current *app

	listDefault bool
	listOrder   string

	createParent   string
	createCategory string
)

var rootCmd = &cobra.Command{
	Use:           "gamegrove",
	Short:         "Game grove project manager",
	Long:          `Browse a workspace of game projects and start new ones from 2D or 3D templates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		a, err := newApp(configPath, logLevel)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default gamegrove configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := config.WriteDefaultConfig(fsys.OS(), path); err != nil {
			return err
		}
		fmt.Printf("✅ Configuration ready at %s\n", path)
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "List, create and open game projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List project folders",
	Long: `List the folders in the workspace root.

Examples:
  gamegrove project list
  gamegrove project list --order modified
  gamegrove project list --default`,
	RunE: func(cmd *cobra.Command, args []string) error {
		order := current.cfg.SortOrder()
		if listOrder != "" {
			parsed, err := listing.ParseSortOrder(listOrder)
			if err != nil {
				return err
			}
			order = parsed
		}

		root := current.manager.WorkspaceRoot()
		list := current.manager.ListWorkspace
		if listDefault {
			root = current.manager.DefaultRoot()
			list = current.manager.ListDefault
		}

		entries, err := list(order)
		if err != nil {
			return errors.New(workspace.Message(err))
		}

		if len(entries) == 0 {
			fmt.Printf("No projects in %s\n", root)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMODIFIED\tPATH")
		for _, e := range entries {
			modified := "-"
			if e.LastModified > 0 {
				modified = time.Unix(e.LastModified, 0).Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, modified, e.Path)
		}
		return w.Flush()
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project from a template",
	Long: `Create a new project folder and copy the template for the category into it.

Examples:
  gamegrove project create myGame --category 2d
  gamegrove project create space --category 3d --parent ~/src`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := createParent
		if parent == "" {
			parent = current.manager.WorkspaceRoot()
		}
		parent, err := userpath.Resolve(parent)
		if err != nil {
			return err
		}

		path, err := current.manager.CreateProject(parent, args[0], createCategory)
		if err != nil {
			return errors.New(workspace.Message(err))
		}

		fmt.Printf("✅ Created %s project at %s\n", createCategory, path)
		fmt.Printf("Open it with: gamegrove project open %s\n", path)
		return nil
	},
}

var projectOpenCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a project in the configured editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := projectPath(args[0])
		if err != nil {
			return err
		}
		if err := current.manager.OpenInEditor(cmd.Context(), path); err != nil {
			return errors.New(workspace.Message(err))
		}
		fmt.Printf("📝 Opened %s\n", path)
		return nil
	},
}

var projectPlayCmd = &cobra.Command{
	Use:   "play <path>",
	Short: "Open a project's index.html in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := projectPath(args[0])
		if err != nil {
			return err
		}
		if err := current.manager.OpenInBrowser(cmd.Context(), path); err != nil {
			return errors.New(workspace.Message(err))
		}
		fmt.Printf("🎮 Playing %s\n", path)
		return nil
	},
}

// projectPath resolves a project name or path; bare names are looked up in
// the workspace root.
func projectPath(arg string) (string, error) {
	if filepath.IsAbs(arg) {
		return arg, nil
	}
	if filepath.Base(arg) == arg {
		if candidate := filepath.Join(current.manager.WorkspaceRoot(), arg); fsys.DirExists(fsys.OS(), candidate) {
			return candidate, nil
		}
	}
	return filepath.Abs(arg)
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect game templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show where each template category resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("📦 Game Templates:")
		fmt.Println("────────────────────────────────────────────────")
		for _, info := range current.manager.Templates() {
			if info.Err != nil {
				fmt.Printf("  %-4s ❌ not found\n", info.Category)
				continue
			}
			fmt.Printf("  %-4s %s\n", info.Category, info.Path)
		}
		fmt.Println("────────────────────────────────────────────────")

		fmt.Println("Search roots:")
		for _, root := range current.locator.Roots() {
			fmt.Printf("  %-13s %s\n", root.Kind, root.Dir)
		}
		return nil
	},
}

var templateLocateCmd = &cobra.Command{
	Use:   "locate <category>",
	Short: "Print the template directory for a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := template.ParseCategory(args[0])
		if err != nil {
			return err
		}
		path, err := current.locator.Locate(c)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local JSON API used by the desktop frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = current.cfg.Server.Listen
		}

		srv := server.NewHTTPServer(addr, current.manager, current.cfg.SortOrder())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		fmt.Printf("🌲 Serving on http://%s\n", addr)
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			return srv.Stop()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.gamegrove/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	projectListCmd.Flags().BoolVar(&listDefault, "default", false, "List ~/src instead of the workspace root")
	projectListCmd.Flags().StringVar(&listOrder, "order", "", "Sort order (name, modified)")

	projectCreateCmd.Flags().StringVarP(&createCategory, "category", "c", "2d", "Template category (2d, 3d)")
	projectCreateCmd.Flags().StringVarP(&createParent, "parent", "p", "", "Parent folder (default workspace root)")

	serveCmd.Flags().String("listen", "", "Listen address (default from config)")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectOpenCmd)
	projectCmd.AddCommand(projectPlayCmd)

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateLocateCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(serveCmd)

	start := time.Now()
	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if current != nil {
		recordCommand(cmd, start, err)
		current.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
