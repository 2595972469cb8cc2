// Command foodlens analyzes meal photos against a FoodLens server from the
// terminal.
//
// Usage:
//
//	foodlens register --email you@example.com --password ...
//	foodlens login --email you@example.com --password ...
//	foodlens analyze lunch.jpg
//	foodlens history --limit 20
//	foodlens summary --days 7 --tz Europe/Berlin
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/client"
	"github.com/0xkrishu/meal-snap-ai-guide/pkg/logging"
)

const usage = `usage: foodlens <command> [flags]

commands:
  analyze <image>   analyze a meal photo
  history           list saved analyses
  summary           daily nutrition totals
  login             sign in and store the session token
  register          create an account and store the session token
`

func main() {
	for _, file := range []string{".env", ".env.local"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	logging.Setup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "analyze":
		err = analyzeCmd(ctx, args)
	case "history":
		err = historyCmd(ctx, args)
	case "summary":
		err = summaryCmd(ctx, args)
	case "login":
		err = authCmd(ctx, "login", args)
	case "register":
		err = authCmd(ctx, "register", args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) (server, token *string) {
	server = fs.StringP("server", "s", envOr("FOODLENS_SERVER", "http://localhost:8080"), "FoodLens server URL")
	token = fs.StringP("token", "t", os.Getenv("FOODLENS_TOKEN"), "session token (default: the one saved by login)")
	return server, token
}

func newClient(server, token string) *client.Client {
	if token == "" {
		var err error
		if token, err = loadToken(); err != nil {
			slog.Debug("No saved session token", "error", err)
		}
	}
	slog.Debug("Using server", "url", server, "signed_in", token != "")
	return client.New(server, token)
}

func analyzeCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	server, token := commonFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: foodlens analyze <image>")
	}
	path := fs.Arg(0)

	c := newClient(*server, *token)
	fmt.Fprintf(os.Stderr, "Analyzing %s...\n", filepath.Base(path))

	result, err := c.AnalyzeFile(ctx, path)
	if err != nil {
		return fmt.Errorf("%s (%v)", client.FriendlyMessage(err), err)
	}

	renderAnalysis(os.Stdout, result)
	return nil
}

func historyCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	server, token := commonFlags(fs)
	limit := fs.IntP("limit", "n", 0, "maximum rows (default: server default)")
	fs.Parse(args)

	records, err := newClient(*server, *token).History(ctx, *limit)
	if err != nil {
		return err
	}

	renderHistory(os.Stdout, records)
	return nil
}

func summaryCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	server, token := commonFlags(fs)
	days := fs.IntP("days", "d", 0, "days to include, today counted (default: server default)")
	tz := fs.String("tz", os.Getenv("TZ"), "IANA time zone for day boundaries (default: UTC)")
	fs.Parse(args)

	summary, err := newClient(*server, *token).Summary(ctx, *days, *tz)
	if err != nil {
		return err
	}

	renderSummary(os.Stdout, summary)
	return nil
}

func authCmd(ctx context.Context, mode string, args []string) error {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	server, _ := commonFlags(fs)
	email := fs.StringP("email", "u", os.Getenv("FOODLENS_EMAIL"), "account email")
	password := fs.StringP("password", "p", os.Getenv("FOODLENS_PASSWORD"), "account password")
	name := fs.String("name", "", "display name (register only)")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return errors.New("--email and --password are required")
	}

	c := client.New(*server, "")
	var (
		session *client.Session
		err     error
	)
	if mode == "register" {
		session, err = c.Register(ctx, *email, *password, *name)
	} else {
		session, err = c.Login(ctx, *email, *password)
	}
	if err != nil {
		return err
	}

	if err := saveToken(session.Token); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", session.User.Email)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "foodlens", "token"), nil
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}
