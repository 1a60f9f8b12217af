package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/tasks"
	"github.com/agisilaos/annofab-cli/internal/config"
	"github.com/agisilaos/annofab-cli/internal/confirm"
	"github.com/agisilaos/annofab-cli/internal/logging"
	"github.com/rs/zerolog/log"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitAuth     = 3
	exitNotFound = 4
	exitConflict = 5
)

type GlobalOptions struct {
	Yes         bool
	EndpointURL string
	LogDir      string
	DisableLog  bool
	Debug       bool
}

type Context struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	Global  GlobalOptions
	Config  config.Config
	Getenv  func(string) string
	Now     func() time.Time
	Confirm *confirm.Policy

	EndpointURL string
	Credentials config.Credentials
	Client      *api.Client

	closeLog func() error
}

func Execute(args []string, stdout, stderr io.Writer) int {
	ctx := &Context{
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  os.Stdin,
		Getenv: os.Getenv,
		Now:    time.Now,
	}
	return run(ctx, args)
}

func run(ctx *Context, args []string) int {
	root := newRootCmd(ctx)
	root.SetArgs(normalizeArgs(args))
	root.SetOut(ctx.Stdout)
	root.SetErr(ctx.Stderr)
	err := root.ExecuteContext(context.Background())
	if ctx.closeLog != nil {
		_ = ctx.closeLog()
	}
	if err != nil {
		writeError(ctx, err)
	}
	return toExitCode(err)
}

// setup runs before every command: config, logging, confirmation policy.
func setup(ctx *Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	ctx.Config = cfg
	logDir := ctx.Global.LogDir
	if logDir == "" {
		logDir = cfg.LogDir
	}
	closeLog, err := logging.Setup(logging.Options{
		LogDir:  logDir,
		Disable: ctx.Global.DisableLog,
		Debug:   ctx.Global.Debug,
		Stderr:  ctx.Stderr,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	ctx.closeLog = closeLog
	ctx.Confirm = confirm.NewPolicy(ctx.Global.Yes, ctx.Stdin, ctx.Stderr)
	ctx.EndpointURL = config.ResolveEndpointURL(ctx.Global.EndpointURL, ctx.Getenv, cfg)
	return nil
}

func ensureClient(ctx *Context) error {
	if ctx.Client != nil {
		return nil
	}
	creds, err := config.ResolveCredentials(ctx.EndpointURL, ctx.Getenv)
	if err != nil {
		if errors.Is(err, config.ErrNoCredentials) {
			return &CodeError{Code: exitAuth, Err: err}
		}
		return err
	}
	ctx.Credentials = creds
	ctx.Client = newClient(ctx)
	log.Debug().Str("endpoint_url", ctx.Client.BaseURL).Str("credentials", creds.Source).Msg("client ready")
	return nil
}

func newClient(ctx *Context) *api.Client {
	return api.NewClient(ctx.EndpointURL, ctx.Credentials.UserID, ctx.Credentials.Password, time.Duration(ctx.Config.TimeoutSeconds)*time.Second)
}

// workerClient returns a fresh client handle for one work item. It reuses the
// token obtained by ctx.Client so workers do not log in again.
func workerClient(ctx *Context) *api.Client {
	return newClient(ctx).WithToken(ctx.Client.Token())
}

type CodeError struct {
	Code int
	Err  error
}

func (e *CodeError) Error() string {
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &CodeError{Code: exitUsage, Err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

// AuthorizationError aborts a command whose caller lacks the project role it
// needs.
type AuthorizationError struct {
	ProjectID string
	Required  []api.ProjectMemberRole
	Actual    api.ProjectMemberRole
}

func (e *AuthorizationError) Error() string {
	required := make([]string, 0, len(e.Required))
	for _, r := range e.Required {
		required = append(required, string(r))
	}
	if e.Actual == "" {
		return fmt.Sprintf("not a member of project %s (requires %s)", e.ProjectID, strings.Join(required, " or "))
	}
	return fmt.Sprintf("project %s: role %s is not allowed (requires %s)", e.ProjectID, e.Actual, strings.Join(required, " or "))
}

func toExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return exitAuth
	}
	var validationErr *tasks.ValidationError
	if errors.As(err, &validationErr) {
		return exitUsage
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(apiErr, api.ErrUnauthorized):
			return exitAuth
		case errors.Is(apiErr, api.ErrNotFound):
			return exitNotFound
		case errors.Is(apiErr, api.ErrConflict):
			return exitConflict
		default:
			return exitError
		}
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return exitAuth
	}
	return exitError
}

func writeError(ctx *Context, err error) {
	if err == nil {
		return
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.RequestID != "" {
		fmt.Fprintf(ctx.Stderr, "error: %s (request_id=%s)\n", err, apiErr.RequestID)
		return
	}
	fmt.Fprintf(ctx.Stderr, "error: %s\n", err)
}
