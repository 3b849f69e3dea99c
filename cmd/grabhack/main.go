// Package main is the grabhack CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swapnilxi/grab-hack/internal/cli"
	"github.com/swapnilxi/grab-hack/internal/decision"
	"github.com/swapnilxi/grab-hack/internal/extract"
	"github.com/swapnilxi/grab-hack/internal/ingest"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/server"
	"github.com/swapnilxi/grab-hack/internal/storage"
	"github.com/swapnilxi/grab-hack/internal/watcher"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	debug      bool
	output     string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "grabhack",
		Short: "Payments knowledge assistant with fraud, triage and healing decisions",
		Long: `grabhack answers questions over an ingested payments corpus and asks a
language model for typed decisions (triage, fraud, healing) about transactions.

Config is read from --config, else ./config.yaml, else
~/.config/grabhack/config.yaml, else built-in defaults. A .env file in the
working directory is loaded before environment overrides are applied.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServeCommand(opts),
		newIngestCommand(opts),
		newAskCommand(opts),
		newDecideCommand(opts),
		newValidateCommand(opts),
		newChatCommand(opts),
		newStatusCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.open(ctx); err != nil {
				return err
			}

			ing := a.ingestor()
			srv := server.NewServer(a.answerer(), ing, a.decider(), a.store, a.cfg, a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(shutdownCtx)
			})
			if a.cfg.Ingest.Watch {
				g.Go(func() error { return a.watch(gctx, ing, a.cfg.Ingest.Root) })
			}
			return g.Wait()
		},
	}
}

func newIngestCommand(opts *options) *cobra.Command {
	var (
		watch   bool
		reset   bool
		workers int
	)
	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Embed and store every supported file under dir (default: ingest.root)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			root := a.cfg.Ingest.Root
			if len(args) > 0 {
				root = args[0]
			}
			if !watch {
				if _, err := os.Stat(root); err != nil {
					return fmt.Errorf("ingest root: %w", err)
				}
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			if reset {
				if err := a.store.Reset(ctx); err != nil {
					return fmt.Errorf("reset store: %w", err)
				}
				a.logger.Info("store reset", zap.String("backend", a.cfg.Store.Backend))
			}

			var ingOpts []ingest.Option
			if workers > 0 {
				ingOpts = append(ingOpts, ingest.WithWorkers(workers))
			}
			ing := a.ingestor(ingOpts...)
			source := ingest.DirectorySource(root, a.cfg.Ingest.Extensions, extract.NewExtractor(), a.logger)
			stats := ing.Ingest(ctx, source)
			if err := cli.WriteIngestStats(cmd.OutOrStdout(), stats.Response(), a.format); err != nil {
				return err
			}
			if watch {
				return a.watch(ctx, ing, root)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep watching dir and ingest new or changed files")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete every stored chunk before ingesting")
	cmd.Flags().IntVar(&workers, "workers", 0, "documents embedded concurrently (default: ingest.workers)")
	return cmd
}

func newAskCommand(opts *options) *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the ingested corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.AskRequest{Question: strings.Join(args, " ")}
			if err := req.Validate(); err != nil {
				return err
			}
			format, err := cli.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			if serverURL != "" {
				var resp models.AskResponse
				if err := postJSON(cmd.Context(), serverURL+"/api/v1/ask", req, &resp); err != nil {
					return fmt.Errorf("ask failed: %w", err)
				}
				return cli.WriteAnswer(cmd.OutOrStdout(), resp, format)
			}

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			ans := a.answerer().Answer(cmd.Context(), req.Question)
			return cli.WriteAnswer(cmd.OutOrStdout(), ans.Response(), a.format)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (empty = use the local store)")
	return cmd
}

func newDecideCommand(opts *options) *cobra.Command {
	var (
		domainName  string
		summary     string
		payload     string
		payloadFile string
		override    bool
	)
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Ask the model for a triage, fraud or healing decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := decision.Lookup(domainName)
			if !ok {
				return fmt.Errorf("unknown decision domain: %q", domainName)
			}
			if payloadFile != "" {
				data, err := os.ReadFile(payloadFile)
				if err != nil {
					return fmt.Errorf("read payload file: %w", err)
				}
				payload = string(data)
			}
			fields, err := parsePayload(payload)
			if err != nil {
				return err
			}
			req := models.DecisionRequest{Summary: summary, Payload: fields}
			if err := req.Validate(); err != nil {
				return err
			}

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.openModels(cmd.Context()); err != nil {
				return err
			}
			dec := a.decider().Decide(cmd.Context(), d, req.Summary, req.Payload)
			resp := dec.Response()
			if d.Name == decision.Fraud.Name || d.Name == decision.Triage.Name {
				gate, msg := decision.Gate(decision.Session{FraudOverride: override}, dec)
				resp.Gate = string(gate)
				resp.Message = msg
			}
			return cli.WriteDecision(cmd.OutOrStdout(), resp, a.format)
		},
	}
	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "decision domain: triage, fraud or healing")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "transaction summary")
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "transaction data as a JSON object")
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "read the JSON payload from a file")
	cmd.Flags().BoolVar(&override, "override", false, "continue past a fraud verdict")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newValidateCommand(opts *options) *cobra.Command {
	var domainName string
	cmd := &cobra.Command{
		Use:   "validate [raw]",
		Short: "Validate raw model output against a decision domain (reads stdin without args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := decision.Lookup(domainName)
			if !ok {
				return fmt.Errorf("unknown decision domain: %q", domainName)
			}
			format, err := cli.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			raw := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			}
			return cli.WriteDecision(cmd.OutOrStdout(), decision.Validate(raw, d).Response(), format)
		},
	}
	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "decision domain: triage, fraud or healing")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newChatCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive payment session; answer 'yes' to override a fraud block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sess := decision.NewSession()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := scanner.Text()
				if t := strings.TrimSpace(line); t == "exit" || t == "quit" {
					break
				}
				var reply string
				sess, reply = sess.Next(line)
				fmt.Fprintln(out, reply)
			}
			return scanner.Err()
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store and model status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			if serverURL != "" {
				var st models.StatusResponse
				if err := getJSON(cmd.Context(), serverURL+"/api/v1/status", &st); err != nil {
					return fmt.Errorf("status failed: %w", err)
				}
				return cli.WriteStatus(cmd.OutOrStdout(), st, format)
			}

			a, err := opts.newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			st, err := storage.Status(cmd.Context(), a.store, a.cfg)
			if err != nil {
				return err
			}
			return cli.WriteStatus(cmd.OutOrStdout(), st, format)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (empty = use the local store)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grabhack version %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// watch ingests files under root as they are created or changed until ctx ends.
func (a *app) watch(ctx context.Context, ing *ingest.Ingestor, root string) error {
	exts := a.cfg.Ingest.Extensions
	extractor := extract.NewExtractor()
	w := watcher.New(root,
		func(path string) bool { return ingest.MatchExtension(path, exts) },
		func(ctx context.Context, path string) {
			text, err := extractor.Extract(path)
			if err != nil {
				a.logger.Warn("failed to extract file", zap.String("path", path), zap.Error(err))
				return
			}
			outcome := ing.IngestOne(ctx, ingest.Document{ID: filepath.ToSlash(path), Text: text})
			a.logger.Info("watched file processed", zap.String("path", path), zap.Stringer("outcome", outcome))
		},
		watcher.WithLogger(a.logger),
	)
	return w.Run(ctx)
}

// parsePayload decodes a JSON object. Empty input yields a nil payload.
func parsePayload(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, fmt.Errorf("invalid payload: must be a JSON object: %w", err)
	}
	return fields, nil
}
