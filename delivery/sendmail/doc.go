// Package sendmail delivers messages by handing them to a local
// sendmail-compatible mail transfer agent.
//
// To use this, find out where the sendmail binary is on your system. On most
// unix boxes it is /usr/sbin/sendmail, which is the default:
//
//	sm, err := sendmail.New()
//	if err != nil {
//	  panic(err)
//	}
//
//	err = sm.Deliver(ctx, msg)
//
// If your binary lives elsewhere or needs different flags:
//
//	sm, err := sendmail.New(
//	  sendmail.WithLocation("/opt/mta/sendmail"),
//	  sendmail.WithArguments("-t"),
//	)
//
// For every delivery the MTA is run as
//
//	<location> <arguments> -f <sender> -- <recipient>...
//
// with the message on its standard input, every line ending converted to
// CRLF. The "--" keeps a recipient that starts with a dash from being read as
// an option. By default the binary is executed directly with an argument
// vector, so no shell is involved. ShellRunner is available for setups that
// rely on shell processing of the arguments string; every envelope address is
// escaped before it reaches the shell.
//
// Deliver makes exactly one attempt and blocks until the MTA exits. A non-zero
// exit status is reported as an *ExitError. Nothing is logged and nothing is
// retried.
package sendmail
