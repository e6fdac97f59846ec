package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mkrupp/campuslink/internal/infra/config"
	infractx "github.com/mkrupp/campuslink/internal/infra/context"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/svc/campus"
)

const (
	appName = "campuslink"
	svcName = "campusctl"
)

type Config struct {
	config.EnvConfig `yaml:"-"`

	Log    logging.LoggerConfig `envPrefix:"LOG_" yaml:"log"`
	Campus campus.Config        `yaml:",inline"`

	// SessionFile stores the token of the logged-in user between invocations
	SessionFile string `env:"SESSION_FILE" default:"var/storage/session" yaml:"sessionFile"`
}

func main() {
	global := flag.NewFlagSet(svcName, flag.ContinueOnError)
	global.Usage = func() { printUsage(os.Stderr) }

	configFile := global.String("config", os.Getenv("CAMPUSLINK_CONFIG"), "YAML config file")
	format := global.String("o", formatText, "output format: text, yaml or json")

	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	args := global.Args()
	if len(args) == 0 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if args[0] == "help" {
		printUsage(os.Stdout)

		return
	}

	var (
		cfg Config
		ctx = infractx.WithNewTraceID(context.Background())

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix, config.WithFile(*configFile)); err != nil {
		fail(fmt.Errorf("parse config: %w", err))
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fail(fmt.Errorf("configure logging: %w", err))
	}

	out, err := newPrinter(*format, os.Stdout)
	if err != nil {
		fail(err)
	}

	if err := run(ctx, cfg, out, args); err != nil {
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)

	if errors.Is(err, errUsage) {
		os.Exit(2)
	}

	os.Exit(1)
}

func run(ctx context.Context, cfg Config, out *printer, args []string) (err error) {
	log := logging.GetLogger("cmd.campusctl").With("command", args[0])

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "command failed", "error", err)

			return
		}

		log.DebugContext(ctx, "command done")
	}()

	store, err := campus.Open(ctx, cfg.Campus)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		err = errors.Join(err, store.Close())
	}()

	c := &cli{
		campus:  store,
		out:     out,
		session: sessionFile(cfg.SessionFile),
		dbPath:  cfg.Campus.Database.Path,
	}

	return c.dispatch(ctx, args)
}

func printUsage(w io.Writer) {
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w, "Usage: campusctl [-config file] [-o text|yaml|json] <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init                              Create the database and its tables")
	fmt.Fprintln(w, "  register <username>               Create an account")
	fmt.Fprintln(w, "  login <username>                  Log in and remember the session")
	fmt.Fprintln(w, "  logout                            Forget the session")
	fmt.Fprintln(w, "  whoami                            Show the logged-in user")
	fmt.Fprintln(w, "  task add <name> [-desc d] [-due YYYY-MM-DD]")
	fmt.Fprintln(w, "  task list                         List your tasks")
	fmt.Fprintln(w, "  task done <id>                    Mark a task as completed")
	fmt.Fprintln(w, "  task rm <id>                      Delete a task")
	fmt.Fprintln(w, "  post add <title> <content>        Publish a post")
	fmt.Fprintln(w, "  post list                         Show the bulletin board, newest first")
	fmt.Fprintln(w, "  post rm <id>                      Delete one of your posts")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CAMPUSLINK_PASSWORD                    Password for register/login (or -password)")
	fmt.Fprintln(w, "  CAMPUSLINK_CONFIG                      YAML config file (or -config)")
	fmt.Fprintln(w, "  CAMPUSLINK_CAMPUSCTL_DATABASE_PATH     SQLite file (default: var/storage/campuslink.db)")
	fmt.Fprintln(w, "  CAMPUSLINK_CAMPUSCTL_SESSION_FILE      Session token file (default: var/storage/session)")
	fmt.Fprintln(w, "  CAMPUSLINK_CAMPUSCTL_LOG_LEVEL         debug, info, warn or error")
	fmt.Fprintln(w)
}
