package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zostay/go-sendmail/delivery"
	"github.com/zostay/go-sendmail/delivery/sendmail"
	"github.com/zostay/go-sendmail/message"
	"github.com/zostay/go-sendmail/message/header"
)

type options struct {
	configPath  string
	location    string
	arguments   string
	shell       bool
	timeout     time.Duration
	dryRun      bool
	metricsFile string
	logJSON     bool
}

// NewRootCmd builds the sendmail-deliver command.
func NewRootCmd() *cobra.Command {
	o := &options{}

	c := &cobra.Command{
		Use:   "sendmail-deliver [message-file]",
		Short: "Deliver an RFC 5322 message through a local sendmail binary",
		Long: `Reads a message from the named file, or from standard input when no file or
"-" is given, works out the envelope sender and recipients from its header,
and pipes it to the configured sendmail-compatible MTA.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          o.run,
	}

	fs := c.Flags()
	fs.StringVar(&o.configPath, "config", "", "TOML file with a [sendmail] table")
	fs.StringVar(&o.location, "location", sendmail.DefaultLocation, "path to the sendmail binary")
	fs.StringVar(&o.arguments, "arguments", sendmail.DefaultArguments, "extra arguments placed before the envelope flags")
	fs.BoolVar(&o.shell, "shell", false, "run the command line through "+sendmail.DefaultShell)
	fs.DurationVar(&o.timeout, "timeout", 0, "kill the MTA if it has not finished after this long")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the command that would be run and exit")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "write delivery metrics to this file in Prometheus text format")
	fs.BoolVar(&o.logJSON, "log-json", false, "log as JSON instead of text")

	return c
}

// Execute runs the command with os.Args, stopping the delivery on SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

func (o *options) logger(w io.Writer) *slog.Logger {
	if o.logJSON {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// settings starts from the config file, if any, and applies the flags that
// were set explicitly.
func (o *options) settings(c *cobra.Command) (sendmail.Settings, error) {
	s := sendmail.DefaultSettings()
	if o.configPath != "" {
		var err error
		s, err = sendmail.LoadSettings(o.configPath)
		if err != nil {
			return s, err
		}
	}

	if c.Flags().Changed("location") {
		s.Location = o.location
	}
	if c.Flags().Changed("arguments") {
		s.Arguments = o.arguments
	}

	return s, nil
}

func (o *options) run(c *cobra.Command, args []string) error {
	logger := o.logger(c.ErrOrStderr())

	settings, err := o.settings(c)
	if err != nil {
		return err
	}

	smOpts := []sendmail.Option{sendmail.WithSettings(settings)}
	if o.shell {
		smOpts = append(smOpts, sendmail.WithRunner(&sendmail.ShellRunner{}))
	}

	var reg *prometheus.Registry
	if o.metricsFile != "" {
		reg = prometheus.NewRegistry()
		smOpts = append(smOpts, sendmail.WithMetrics(sendmail.NewMetrics(reg)))
	}

	sm, err := sendmail.New(smOpts...)
	if err != nil {
		return err
	}

	m, env, err := o.readEnvelope(c, args, logger)
	if err != nil {
		return err
	}

	if o.dryRun {
		cmd, err := sm.Command(env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.OutOrStdout(), cmd.String())
		return err
	}

	ctx := c.Context()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	err = sm.DeliverEnvelope(ctx, env)

	attrs := []any{
		"subject", subject(m.GetHeader()),
		"from", env.From,
		"recipients", len(env.To),
		"bytes", len(env.Body),
		"duration", time.Since(start),
		"result", sendmail.Result(err),
	}

	if reg != nil {
		if werr := prometheus.WriteToTextfile(o.metricsFile, reg); werr != nil {
			logger.Warn("cannot write metrics", "path", o.metricsFile, "error", werr)
		}
	}

	if err != nil {
		logger.Error("delivery failed", append(attrs, "error", err)...)
		return err
	}

	logger.Info("delivered", attrs...)
	return nil
}

// readEnvelope parses the message named by args, or standard input, and
// derives its envelope.
func (o *options) readEnvelope(c *cobra.Command, args []string, logger *slog.Logger) (*message.Opaque, *delivery.Envelope, error) {
	in := c.InOrStdin()
	name := "-"
	if len(args) > 0 && args[0] != "-" {
		name = args[0]
		f, err := os.Open(name)
		if err != nil {
			return nil, nil, err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	m, err := message.Parse(in)
	if m == nil {
		return nil, nil, fmt.Errorf("parsing message %s: %w", name, err)
	}
	if err != nil {
		logger.Warn("message header is damaged", "input", name, "error", err)
	}

	env, err := delivery.CheckParams(m)
	return m, env, err
}

// subject returns the decoded Subject for logging. A subject that cannot be
// decoded is logged raw.
func subject(h *header.Header) string {
	s, err := h.GetDecoded(header.Subject)
	if err != nil {
		s, _ = h.Get(header.Subject)
	}
	return s
}
