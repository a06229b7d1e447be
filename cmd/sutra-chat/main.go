// Package main is the entry point for the sutra-chat command, an interactive
// terminal client for asking questions about the scriptures.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "go.uber.org/automaxprocs/maxprocs"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/textutil"
	sutraquery "github.com/ISHANT57/Gita-Chatbot/internal/sutraquery"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/biz"
	"github.com/ISHANT57/Gita-Chatbot/pkg/app"
	cliflag "github.com/ISHANT57/Gita-Chatbot/pkg/app/cliflag"
	cacheopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/cache"
	llmopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/llm"
	logopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/logger"
	qdrantopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/qdrant"
	ragopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/rag"
)

const commandDesc = `Sutra Chat

An interactive terminal client for the SutraQuery knowledge base. Questions
are answered from the Bhagavad Gita, the Ramayana and the Mahabharata, with
chapter and verse citations.

Type a question and press Enter. Use "verse <chapter> <verse>" to look up a
single verse. Type "quit" or "exit" to leave.`

// chatOptions contains the configuration options for the chat client.
type chatOptions struct {
	LogOptions       *logopts.Options         `json:"log" mapstructure:"log"`
	QdrantOptions    *qdrantopts.Options      `json:"qdrant" mapstructure:"qdrant"`
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	ChatProvider     *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`
	RAGOptions       *ragopts.Options         `json:"rag" mapstructure:"rag"`
	CacheOptions     *cacheopts.Options       `json:"cache" mapstructure:"cache"`

	// Source restricts retrieval to one corpus (bhagavad_gita, ramayana, mahabharata).
	Source string `json:"source" mapstructure:"source"`
}

func newChatOptions() *chatOptions {
	logOpts := logopts.NewOptions()
	// REPL 输出与日志分离
	logOpts.Level = "WARN"

	cache := cacheopts.NewOptions()
	cache.Enabled = false

	return &chatOptions{
		LogOptions:       logOpts,
		QdrantOptions:    qdrantopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatProvider:     llmopts.NewChatOptions(),
		RAGOptions:       ragopts.NewOptions(),
		CacheOptions:     cache,
	}
}

// Flags returns flags for the chat client grouped by section name.
func (o *chatOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.QdrantOptions.AddFlags(fss.FlagSet("qdrant"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"))
	o.ChatProvider.AddFlags(fss.FlagSet("chat"))
	o.RAGOptions.AddFlags(fss.FlagSet("rag"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))

	fs := fss.FlagSet("chat-client")
	fs.StringVar(&o.Source, "source", o.Source, "Restrict retrieval to one corpus (bhagavad_gita, ramayana, mahabharata).")

	return fss
}

// Complete completes all the required options.
func (o *chatOptions) Complete() error {
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatProvider.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.RAGOptions.Complete(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return o.QdrantOptions.Complete()
}

// Validate checks whether the chat options are valid.
func (o *chatOptions) Validate() error {
	errs := []error{}

	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.QdrantOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatProvider.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

func main() {
	opts := newChatOptions()
	app.NewApp(
		app.WithName("sutra-chat"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return run(opts)
		}),
	).Run()
}

func run(opts *chatOptions) error {
	if err := opts.LogOptions.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := &sutraquery.Config{
		LogOptions:       opts.LogOptions,
		QdrantOptions:    opts.QdrantOptions,
		EmbeddingOptions: opts.EmbeddingOptions,
		ChatOptions:      opts.ChatProvider,
		RAGOptions:       opts.RAGOptions,
		CacheOptions:     opts.CacheOptions,
	}

	service, closers, err := cfg.NewService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	return repl(ctx, service, opts.Source)
}

func repl(ctx context.Context, service biz.Service, source string) error {
	fmt.Println("Welcome to Sutra Chat. Ask about the Bhagavad Gita, Ramayana or Mahabharata.")
	fmt.Println(`Type "quit" or "exit" to leave.`)
	if source != "" {
		fmt.Printf("Retrieval restricted to: %s\n", model.SourceTitle(source))
	}
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit":
			fmt.Println("Goodbye.")
			return nil
		}

		if rest, ok := strings.CutPrefix(strings.ToLower(question), "verse "); ok {
			lookupVerse(ctx, service, source, rest)
			continue
		}

		result, err := service.Query(ctx, question, source)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		printResult(result)
	}
}

// parseVerseArgs 解析 verse 命令参数,接受 "2 47"、"2.47"、"chapter 2 verse 47" 等写法。
func parseVerseArgs(s string) (chapter, verse int, ok bool) {
	fields := strings.Fields(s)
	if len(fields) == 2 {
		c, err1 := strconv.Atoi(fields[0])
		v, err2 := strconv.Atoi(fields[1])
		if err1 == nil && err2 == nil && c > 0 && v > 0 {
			return c, v, true
		}
	}
	return textutil.ExtractVerseReference(s)
}

func lookupVerse(ctx context.Context, service biz.Service, source, args string) {
	chapter, verseNum, ok := parseVerseArgs(args)
	if !ok {
		fmt.Println(`Usage: verse <chapter> <verse>  (e.g. "verse 2 47" or "verse 2.47")`)
		fmt.Println()
		return
	}

	v, err := service.SearchByVerse(ctx, source, chapter, verseNum)
	if err != nil {
		if errors.Is(err, biz.ErrVerseNotFound) {
			fmt.Printf("Verse %d.%d not found.\n\n", chapter, verseNum)
			return
		}
		fmt.Printf("Error: %v\n\n", err)
		return
	}

	fmt.Println()
	fmt.Printf("%s %d.%d\n", model.SourceTitle(v.Source), v.Chapter, v.Verse)
	if v.Sanskrit != "" {
		fmt.Println(v.Sanskrit)
	}
	fmt.Println(v.Text)
	if v.Meaning != "" {
		fmt.Println()
		fmt.Println(v.Meaning)
	}
	fmt.Println()
}

func printResult(result *model.QueryResult) {
	fmt.Println()
	fmt.Println(result.Answer)
	fmt.Println()

	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, src := range result.Sources {
			title := model.SourceTitle(src.Source)
			if src.Chapter > 0 && src.Verse > 0 {
				fmt.Printf("  - %s %d.%d (score %.2f)\n", title, src.Chapter, src.Verse, src.Score)
			} else {
				fmt.Printf("  - %s (score %.2f)\n", title, src.Score)
			}
		}
	}
	fmt.Printf("Confidence: %.2f", result.Confidence)
	if result.Cached {
		fmt.Print(" (cached)")
	}
	fmt.Println()
	fmt.Println()
}
