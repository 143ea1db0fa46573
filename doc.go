// Package gosendmail delivers email by handing it to a local
// sendmail-compatible MTA, the way mail libraries have done on Unix systems
// for decades.
//
// The work is split by concern:
//
//   - message parses a raw message into a header and an opaque body, keeping
//     the original bytes so the message is written back out unchanged.
//   - message/header provides the fields a delivery cares about: the
//     addresses in From, Sender, Return-Path, To, Cc, and Bcc, plus dates and
//     encoded-word decoding.
//   - delivery works out the envelope (the SMTP-level sender and recipients)
//     from a message and checks it.
//   - delivery/sendmail builds the MTA command line for an envelope, runs the
//     MTA, and pipes the message to it with CRLF line endings.
//
// The sendmail-deliver command in cmd/ ties these together for use from the
// shell.
package gosendmail
