package sendmail

import (
	"bytes"
	"context"
	"strings"

	"github.com/zostay/go-sendmail/delivery"
)

// Sendmail is a delivery method that hands messages to a local MTA binary.
// Its settings are fixed when it is constructed, so one Sendmail may be used
// by many goroutines at once. Each delivery runs its own process.
type Sendmail struct {
	settings  Settings
	runner    Runner
	validator delivery.Validator
	metrics   *Metrics
}

// Option configures a Sendmail during New().
type Option func(*Sendmail)

// WithSettings replaces all the settings at once.
func WithSettings(s Settings) Option {
	return func(sm *Sendmail) { sm.settings = s }
}

// WithLocation sets the path to the MTA binary. The default is
// DefaultLocation.
func WithLocation(path string) Option {
	return func(sm *Sendmail) { sm.settings.Location = path }
}

// WithArguments replaces the extra arguments passed before the envelope
// flags. The default is DefaultArguments. Passing "" removes them.
func WithArguments(args string) Option {
	return func(sm *Sendmail) { sm.settings.Arguments = args }
}

// WithRunner sets how the MTA process is run. The default is an ExecRunner.
func WithRunner(r Runner) Option {
	return func(sm *Sendmail) { sm.runner = r }
}

// WithValidator replaces delivery.CheckParams as the way the envelope is
// derived from a message.
func WithValidator(v delivery.Validator) Option {
	return func(sm *Sendmail) { sm.validator = v }
}

// WithMetrics records every delivery in m. See NewMetrics().
func WithMetrics(m *Metrics) Option {
	return func(sm *Sendmail) { sm.metrics = m }
}

// New returns a Sendmail configured by the given options on top of
// DefaultSettings(). It fails with ErrNoLocation if the location ends up
// blank and with ErrBadArguments if the arguments cannot be split into words.
func New(opts ...Option) (*Sendmail, error) {
	sm := &Sendmail{
		settings:  DefaultSettings(),
		runner:    &ExecRunner{},
		validator: delivery.CheckParams,
	}

	for _, opt := range opts {
		opt(sm)
	}

	if strings.TrimSpace(sm.settings.Location) == "" {
		return nil, ErrNoLocation
	}

	if _, err := splitArguments(sm.settings.Arguments); err != nil {
		return nil, err
	}

	if sm.metrics != nil {
		sm.runner = sm.metrics.Instrument(sm.runner)
	}

	return sm, nil
}

// Settings returns a copy of the settings in use.
func (sm *Sendmail) Settings() Settings {
	return sm.settings
}

// Command returns the command that would be run to deliver env.
func (sm *Sendmail) Command(env *delivery.Envelope) (*Command, error) {
	return BuildCommand(sm.settings, env)
}

// Deliver derives the envelope from m, runs the MTA for it, and writes the
// message to the MTA with CRLF line endings. It blocks until the MTA exits.
//
// A *delivery.ValidationError is returned, and no process is started, when
// the message has no sender or no recipients. Otherwise the error, if any, is
// a *SpawnError, *WriteError, or *ExitError from the Runner.
func (sm *Sendmail) Deliver(ctx context.Context, m delivery.Message) error {
	env, err := sm.validator(m)
	if err != nil {
		return err
	}

	return sm.DeliverEnvelope(ctx, env)
}

// DeliverEnvelope delivers an envelope that has already been built. The
// envelope is checked with Validate() first.
func (sm *Sendmail) DeliverEnvelope(ctx context.Context, env *delivery.Envelope) error {
	if env == nil {
		return &delivery.ValidationError{Field: "from", Err: delivery.ErrNoSender}
	}

	if err := env.Validate(); err != nil {
		return err
	}

	cmd, err := sm.Command(env)
	if err != nil {
		return err
	}

	return sm.runner.Run(ctx, cmd, bytes.NewReader(NormalizeBody(env.Body)))
}
