package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"lumaregistrar/config"
	"lumaregistrar/internal/app"
	"lumaregistrar/internal/services"
)

var flagStore = &cli.StringFlag{
	Name:  "store",
	Usage: "Record store override: postgres or memory",
}

var flagEvent = &cli.StringFlag{
	Name:    "event",
	Aliases: []string{"e"},
	Usage:   "Event API id (defaults to DEFAULT_EVENT_ID)",
}

var flagFile = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Usage:    "Entry list file, or - for stdin",
	Required: true,
}

var flagFormat = &cli.StringFlag{
	Name:  "format",
	Usage: "Entry list format: json or csv (inferred from the file extension when empty)",
}

func main() {
	cliApp := &cli.App{
		Name:  "registrar",
		Usage: "Register attendees to Luma events using Gmail-delivered verification codes",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Register every entry of a list, one at a time",
				Flags:  []cli.Flag{flagFile, flagFormat, flagEvent, flagStore},
				Action: runCommand,
			},
			{
				Name:   "list",
				Usage:  "Print stored registration records",
				Flags:  []cli.Flag{flagStore, &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"}},
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a registration record",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{flagStore},
				Action:    deleteCommand,
			},
			{
				Name:  "gmail",
				Usage: "One-time Gmail OAuth setup",
				Subcommands: []*cli.Command{
					{
						Name:   "auth-url",
						Usage:  "Print the consent URL",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "state", Value: "registrar-cli"}},
						Action: gmailAuthURLCommand,
					},
					{
						Name:   "exchange",
						Usage:  "Exchange an authorization code for a refresh token",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "code", Required: true}},
						Action: gmailExchangeCommand,
					},
				},
			},
			{
				Name:  "token",
				Usage: "Operator tokens for the HTTP API",
				Subcommands: []*cli.Command{
					{
						Name:  "issue",
						Usage: "Mint a bearer token signed with JWT_SECRET",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "subject", Value: "operator"},
							&cli.DurationFlag{Name: "expiry", Usage: "Token lifetime (defaults to JWT_EXPIRY)"},
						},
						Action: tokenIssueCommand,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// build loads configuration, applies the --store override and wires the application.
func build(cCtx *cli.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cCtx.IsSet(flagStore.Name) {
		cfg.Store = cCtx.String(flagStore.Name)
	}
	logger := config.NewLoggerTo(os.Stderr, cfg.Environment, os.Getenv("LOG_LEVEL"))
	return app.New(cCtx.Context, cfg, logger)
}

func runCommand(cCtx *cli.Context) error {
	in, format, err := openEntries(cCtx.String(flagFile.Name), cCtx.String(flagFormat.Name))
	if err != nil {
		return err
	}
	defer in.Close()
	entries, err := services.ParseEntries(in, format)
	if err != nil {
		return err
	}

	a, err := build(cCtx)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.Service.ProcessMany(cCtx.Context, entries, cCtx.String(flagEvent.Name), func(email, phase string) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", email, phase)
	})
	fmt.Fprintf(os.Stderr, "run %s: %d completed, %d failed\n", result.RunID, len(result.Successful), len(result.Failed))
	if err := writeJSON(cCtx.App.Writer, result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return cli.Exit("", 2)
	}
	return nil
}

func listCommand(cCtx *cli.Context) error {
	a, err := build(cCtx)
	if err != nil {
		return err
	}
	defer a.Close()

	regs, err := a.Service.List(cCtx.Context)
	if err != nil {
		return err
	}
	if cCtx.Bool("json") {
		return writeJSON(cCtx.App.Writer, regs)
	}
	tw := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tEVENT\tSTATUS\tCREATED\tERROR")
	for _, r := range regs {
		var errMsg string
		if r.ErrorMessage != nil {
			errMsg = *r.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Email, r.EventID, r.Status, r.CreatedAt.Format("2006-01-02 15:04:05"), errMsg)
	}
	return tw.Flush()
}

func deleteCommand(cCtx *cli.Context) error {
	id := cCtx.Args().First()
	if id == "" {
		return errors.New("registration id is required")
	}
	a, err := build(cCtx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Service.Delete(cCtx.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "deleted %s\n", id)
	return nil
}

func gmailAuthURLCommand(cCtx *cli.Context) error {
	a, err := buildWithMemoryStore(cCtx)
	if err != nil {
		return err
	}
	if a.Authorizer == nil {
		return errors.New("GMAIL_CLIENT_ID is not set")
	}
	fmt.Fprintln(cCtx.App.Writer, a.Authorizer.AuthURL(cCtx.String("state")))
	return nil
}

func gmailExchangeCommand(cCtx *cli.Context) error {
	a, err := buildWithMemoryStore(cCtx)
	if err != nil {
		return err
	}
	if a.Authorizer == nil {
		return errors.New("GMAIL_CLIENT_ID is not set")
	}
	refresh, err := a.Authorizer.Exchange(cCtx.Context, cCtx.String("code"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "GMAIL_REFRESH_TOKEN=%s\n", refresh)
	return nil
}

func tokenIssueCommand(cCtx *cli.Context) error {
	a, err := buildWithMemoryStore(cCtx)
	if err != nil {
		return err
	}
	if a.Issuer == nil {
		return errors.New("JWT_SECRET is not set")
	}
	expiry := a.Config.JWTExpiry
	if cCtx.IsSet("expiry") {
		expiry = cCtx.Duration("expiry")
	}
	token, err := a.Issuer.Issue(cCtx.String("subject"), expiry)
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, token)
	return nil
}

// buildWithMemoryStore wires the application for commands that never touch records.
func buildWithMemoryStore(cCtx *cli.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Store = app.StoreMemory
	logger := config.NewLoggerTo(io.Discard, cfg.Environment, "error")
	return app.New(cCtx.Context, cfg, logger)
}

func openEntries(path, format string) (io.ReadCloser, string, error) {
	if format == "" {
		format = services.EntryFormatJSON
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			format = services.EntryFormatCSV
		}
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), format, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open entry list: %w", err)
	}
	return f, format, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
