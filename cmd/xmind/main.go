// Package main provides the CLI entry point for xmind-go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xmind-go/pkg/xmind"
	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

var (
	configPath string
	verbose    bool

	demoMode   string
	outputPath string
	bookName   string
	zipParts   bool
	outline    bool
	imagePaths []string

	pretty bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xmind",
		Short: "Build and inspect xmind mind-map archives",
		Long: `xmind-go builds mind-map workbooks (sheets of topic trees with labels,
markers, notes, images and hyperlinks) and saves them as xmind archives.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (.json or .hcl); defaults to $"+config.EnvConfigPath)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a sample workbook and save it",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVar(&demoMode, "mode", "file-2", "Demo to run: file, file-2, memory")
	demoCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output directory (default: the output:base setting)")
	demoCmd.Flags().StringVar(&bookName, "name", "test.xmind", "Workbook (archive) name")
	demoCmd.Flags().BoolVar(&zipParts, "zip", true, "Pack the written parts into one archive")
	demoCmd.Flags().BoolVar(&outline, "outline", false, "Also export an xlsx outline")
	demoCmd.Flags().StringSliceVar(&imagePaths, "image", nil, "Image files to attach (file-2 demo)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [archive.xmind | outline.xlsx]",
		Short: "Print the structure of an archive or outline as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(demoCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.Default()
}

func runDemo(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := xmind.NewConfiguration(reg)
	switch demoMode {
	case "memory":
		cfg.WithInMemoryWriter()
		if outline {
			cfg.WithOutline()
		}
	case "file", "file-2":
		cfg.WithFileWriter(xmind.FileOptions{BasePath: outputPath, Zip: &zipParts, Outline: outline})
	default:
		return fmt.Errorf("invalid mode: %s (must be file, file-2, or memory)", demoMode)
	}

	book, err := cfg.CreateWorkbook(bookName)
	if err != nil {
		return err
	}
	if demoMode == "file-2" {
		if err := populate(book); err != nil {
			return err
		}
	} else {
		book.PrimarySheet().RootTopic().SetTitle("RootTopic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := <-book.SaveAsync(ctx); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	if mem := book.InMemoryWriter(); mem != nil {
		content, _ := mem.Bytes(writer.LabelContent)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d artifacts in memory, content %d bytes\n", book.Name(), len(mem.Written()), len(content))
		return nil
	}
	for _, rec := range book.Records() {
		slog.Debug("artifact", "label", rec.Label, "path", rec.Path, "files", len(rec.Files))
	}
	base := outputPath
	if base == "" {
		base = reg.String(config.KeyOutputBase)
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(base, book.Name()))
	return nil
}

// populate builds the richer sample tree.
func populate(book *xmind.Workbook) error {
	root := book.PrimarySheet().RootTopic()
	root.SetTitle("RootTopic")

	child := book.CreateTopic("ChildTopic")
	if err := root.Add(child); err != nil {
		return err
	}
	child.SetFolded(true)
	child.SetHyperlink("http://google.com")
	child.AddLabel("notes")
	child.AddMarker("priority-1")
	child.AddMarker("task-half")
	if err := child.AddNotes([]xmind.Note{
		{Key: "Laptop", Value: "asdasdasd"},
		{Key: "Desktop", Value: "adczxvbtryn"},
		{Key: "Tablet", Value: "gggggggggggggggggg"},
	}); err != nil {
		return err
	}

	folded := book.CreateTopic("Folded")
	if err := child.Add(folded); err != nil {
		return err
	}

	targets := []*xmind.Topic{root, child}
	for i, p := range imagePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		name := fmt.Sprintf("mm%d%s", i+1, strings.ToLower(filepath.Ext(p)))
		if err := targets[i%len(targets)].AddImage(data, name); err != nil {
			return err
		}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	var (
		result any
		err    error
	)
	if strings.EqualFold(filepath.Ext(inputPath), ".xlsx") {
		result, err = xmind.InspectOutline(inputPath)
	} else {
		var reg *config.Registry
		if reg, err = loadRegistry(); err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		result, err = xmind.Inspect(inputPath, reg)
	}
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
