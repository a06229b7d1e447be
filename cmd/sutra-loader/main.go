// Package main is the entry point for the sutra-loader command, which builds
// or rebuilds the scripture vector index and verse catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs/maxprocs"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	sutraquery "github.com/ISHANT57/Gita-Chatbot/internal/sutraquery"
	"github.com/ISHANT57/Gita-Chatbot/pkg/app"
	cliflag "github.com/ISHANT57/Gita-Chatbot/pkg/app/cliflag"
	llmopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/llm"
	logopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/logger"
	qdrantopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/qdrant"
	ragopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/rag"
)

const commandDesc = `Sutra Loader

Loads the scripture corpus (Bhagavad Gita, Ramayana, Mahabharata) from the
data directory, chunks and embeds the verses, and writes them to the vector
store and verse catalog.

By default the load is skipped when the vector store is already populated.
Use --force to drop and rebuild the index from scratch.`

// loaderOptions contains the configuration options for the loader.
type loaderOptions struct {
	LogOptions       *logopts.Options         `json:"log" mapstructure:"log"`
	QdrantOptions    *qdrantopts.Options      `json:"qdrant" mapstructure:"qdrant"`
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	RAGOptions       *ragopts.Options         `json:"rag" mapstructure:"rag"`

	// Force drops the existing collection and rebuilds it.
	Force bool `json:"force" mapstructure:"force"`
}

func newLoaderOptions() *loaderOptions {
	return &loaderOptions{
		LogOptions:       logopts.NewOptions(),
		QdrantOptions:    qdrantopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		RAGOptions:       ragopts.NewOptions(),
	}
}

// Flags returns flags for the loader grouped by section name.
func (o *loaderOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.QdrantOptions.AddFlags(fss.FlagSet("qdrant"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"))
	o.RAGOptions.AddFlags(fss.FlagSet("rag"))

	fs := fss.FlagSet("loader")
	fs.BoolVar(&o.Force, "force", o.Force, "Drop the existing collection and rebuild the index.")

	return fss
}

// Complete completes all the required options.
func (o *loaderOptions) Complete() error {
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.RAGOptions.Complete(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	return o.QdrantOptions.Complete()
}

// Validate checks whether the loader options are valid.
func (o *loaderOptions) Validate() error {
	errs := []error{}

	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.QdrantOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

func main() {
	opts := newLoaderOptions()
	app.NewApp(
		app.WithName("sutra-loader"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return run(opts)
		}),
	).Run()
}

func run(opts *loaderOptions) error {
	if err := opts.LogOptions.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := &sutraquery.Config{
		LogOptions:       opts.LogOptions,
		QdrantOptions:    opts.QdrantOptions,
		EmbeddingOptions: opts.EmbeddingOptions,
		RAGOptions:       opts.RAGOptions,
	}

	indexer, closers, err := cfg.NewIndexer(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	start := time.Now()
	report, err := indexer.Load(ctx, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	printReport(report, time.Since(start))
	return nil
}

func printReport(report *model.LoadReport, elapsed time.Duration) {
	if report.Skipped {
		fmt.Println("Vector store is already populated, nothing to do (use --force to rebuild).")
		return
	}

	fmt.Printf("Corpus loaded in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Batch:  %s\n", report.BatchID)
	fmt.Printf("  Verses: %d\n", report.Verses)
	fmt.Printf("  Chunks: %d\n", report.Chunks)

	sources := make([]string, 0, len(report.PerSource))
	for source := range report.PerSource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		fmt.Printf("    %-16s %d\n", source, report.PerSource[source])
	}

	if len(report.FailedFiles) > 0 {
		fmt.Printf("  Failed files: %v\n", report.FailedFiles)
	}
}
