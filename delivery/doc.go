// Package delivery holds what every delivery method shares: the Message it
// accepts, the Envelope it routes by, and CheckParams, which derives and
// validates that envelope before anything is sent.
//
// Delivery methods live in sub-packages. See delivery/sendmail.
package delivery
