package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"dictionary_classifier/classifier"
	"dictionary_classifier/records"
)

var rootCmd = &cobra.Command{
	Use:   "dictclassify",
	Short: "Dictionary-based text classification",
	Long: "Tag statements with every dictionary label whose keywords appear in the text.\n" +
		"Keywords containing whitespace match as phrases, single words match on word boundaries.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP classification service",
	RunE:  runServe,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Add a labels column to a CSV with a Statement column",
	RunE:  runClassify,
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the starter dictionaries as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(classifier.Default(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default $PORT or 8050)")
	serveCmd.Flags().String("dir", "dictionaries", "directory of <name>.json/.yaml dictionaries")

	classifyCmd.Flags().StringP("dictionary", "d", "", "dictionary file (.json or .yaml); built-in default if empty")
	classifyCmd.Flags().StringP("input", "i", "", "input CSV with a Statement column")
	classifyCmd.Flags().StringP("output", "o", outputFileName, "output CSV")
	classifyCmd.Flags().IntP("workers", "w", 0, "classification workers (0 = GOMAXPROCS)")
	_ = classifyCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(defaultsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8050"
	}
	dir, _ := cmd.Flags().GetString("dir")

	// Initialize dictionary cache with file watcher
	var err error
	dictionaryCache, err = NewDictionaryCache(dir)
	if err != nil {
		return fmt.Errorf("failed to initialize dictionary cache: %w", err)
	}
	defer dictionaryCache.Close()

	// Start file watcher in background
	go dictionaryCache.WatchFiles()

	e := newServer()

	log.Printf("Dictionary classifier started on port %s", port)
	log.Printf("Watching dictionaries directory: %s", dir)
	log.Printf("Auto-reload enabled for dictionary files")

	return e.Start(":" + port)
}

// newServer wires middleware and routes around dictionaryCache
func newServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	e.POST("/classify", handleClassify)
	e.GET("/classify", handleClassify)
	e.POST("/classify/csv", handleClassifyCSV)
	e.GET("/health", handleHealth)

	e.GET("/dictionaries/:name", handleGetDictionary)
	e.PUT("/dictionaries/:name", handlePutDictionary)

	// Admin endpoints for manual reload
	e.POST("/admin/reload/:name", handleReloadDictionary)
	e.POST("/admin/reload-all", handleReloadAll)
	e.GET("/admin/cache-info", handleCacheInfo)

	return e
}

func runClassify(cmd *cobra.Command, args []string) error {
	dictPath, _ := cmd.Flags().GetString("dictionary")
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")

	d := classifier.Default()
	if dictPath != "" {
		var err error
		d, err = loadDictionaryFile(dictPath)
		if err != nil {
			return err
		}
	}

	compiled, err := classifier.Compile(d)
	if err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("could not read CSV: %w", err)
	}
	defer in.Close()

	table, err := records.ReadCSV(in)
	if err != nil {
		return err
	}

	labels, err := compiled.ClassifyAll(context.Background(), table.Statements(), workers)
	if err != nil {
		return err
	}
	if err := table.SetLabels(labels); err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("could not create output: %w", err)
	}
	if err := table.WriteCSV(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	log.Printf("Classified %d rows into %s", len(table.Rows), output)
	for _, s := range d.Stats() {
		log.Printf("- %s: %d keywords", s.Label, s.Keywords)
	}
	return nil
}
