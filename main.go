package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
)

var (
	settingsPath      string
	apiKey            string
	titlePromptPath   string
	contentPromptPath string
	tokenFile         string
	dryRun            bool
	debugMode         bool
	renderEngine      string
)

var rootCmd = &cobra.Command{
	Use:   "blog-publisher",
	Short: "Generate one blog post with AI and publish it to Blogger",
	Long: `Picks a category, generates a title and a long-form post with a text-generation
model, converts the markdown to Blogger HTML and publishes it. One post per run.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)

		cfg, err := LoadConfig(buildOverrides(), os.Getenv)
		if err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "loading configuration failed", slog.Any("Error", err))
			return
		}
		if err := cfg.Validate(!dryRun); err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "invalid configuration", slog.Any("Error", err))
			return
		}

		runner, err := buildRunner(ctx, cfg)
		if err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "setting up run failed", slog.Any("Error", err))
			return
		}
		runner.SetDryRun(dryRun)

		result := runner.Run(ctx)
		if dryRun && result.HTML != "" {
			fmt.Fprintln(cmd.OutOrStdout(), result.HTML)
		}
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [markdown-file]",
	Short: "Convert a markdown file (or stdin) to HTML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source []byte
		var err error
		if len(args) > 0 {
			source, err = os.ReadFile(args[0])
		} else {
			source, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading markdown: %w", err)
		}

		html, err := RenderMarkdown(string(source), renderEngine)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain or refresh Blogger credentials without publishing",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)

		cfg, err := LoadConfig(buildOverrides(), os.Getenv)
		if err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "loading configuration failed", slog.Any("Error", err))
			return
		}
		if err := cfg.ValidateAuth(); err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "invalid configuration", slog.Any("Error", err))
			return
		}

		manager := newCredentialManager(cfg)
		if _, err := manager.Acquire(ctx); err != nil {
			slogctx.FromCtx(ctx).ErrorContext(ctx, "failed to obtain valid Blogger credentials", slog.Any("Error", err))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to settings YAML file")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Path to the OAuth token file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "Text-generation API key")
	rootCmd.Flags().StringVar(&titlePromptPath, "title-prompt", "", "Path to custom title prompt template")
	rootCmd.Flags().StringVar(&contentPromptPath, "content-prompt", "", "Path to custom content prompt template")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate and print HTML without publishing")
	renderCmd.Flags().StringVar(&renderEngine, "engine", EngineBlogger, "Render engine: blogger or goldmark")

	rootCmd.AddCommand(renderCmd, authCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// commandContext returns a context cancelled on interrupt and carrying the logger
func commandContext(cmd *cobra.Command) context.Context {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	cobra.OnFinalize(stop)
	return withLogger(ctx, newLogger(cmd.OutOrStdout(), debugMode))
}

func buildOverrides() *ConfigOverrides {
	overrides := &ConfigOverrides{}
	if settingsPath != "" {
		overrides.SettingsPath = &settingsPath
	}
	if titlePromptPath != "" {
		overrides.TitlePromptPath = &titlePromptPath
	}
	if contentPromptPath != "" {
		overrides.ContentPromptPath = &contentPromptPath
	}
	if tokenFile != "" {
		overrides.TokenFile = &tokenFile
	}
	if apiKey != "" {
		overrides.APIKey = &apiKey
	}
	return overrides
}

func newCredentialManager(cfg *Config) *CredentialManager {
	oauthConfig := NewOAuthConfig(cfg.Settings.OAuth)
	return NewCredentialManager(
		NewFileTokenStore(cfg.Settings.TokenFile),
		&OAuthRefresher{Config: oauthConfig},
		&LocalServerAuthorizer{Config: oauthConfig, Host: cfg.Settings.OAuth.CallbackHost},
	)
}

func buildRunner(ctx context.Context, cfg *Config) (*Runner, error) {
	titleModel, contentModel, err := NewTextModels(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	generator := NewContentGenerator(cfg, titleModel, contentModel, rng)

	var archiver Archiver
	if cfg.Settings.ArchiveDirectory != "" {
		archiver = NewFileArchiver(cfg.Settings.ArchiveDirectory, cfg.ArchiveTemplate)
	}

	return NewRunner(cfg, newCredentialManager(cfg), generator, BloggerPublisherFactory(cfg.Settings.BlogID), archiver, rng), nil
}
