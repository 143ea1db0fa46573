package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")

	// ErrWrongAddressType is returned by address setting methods that accept
	// either a string or an addr.Address when something other than those
	// types is provided.
	ErrWrongAddressType = errors.New("incorrect address type during write")
)

// These are the standard headers defined in RFC 5322 that matter for
// routing a message.
const (
	Bcc        = "Bcc"
	Cc         = "Cc"
	Date       = "Date"
	From       = "From"
	MessageID  = "Message-id"
	ReplyTo    = "Reply-to"
	ReturnPath = "Return-path"
	Sender     = "Sender"
	Subject    = "Subject"
	To         = "To"
)

// UnixDateWithEarlyYear is a date format seen in the wild that the usual
// parsers have trouble with.
const UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"

// Header wraps a Base, which does the actual storage and low-level field
// manipulation. This provides several methods to make reading and
// manipulating the header more convenient.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField.
type Header struct {
	Base
}

// Clone returns a deep copy of the header object.
func (h *Header) Clone() *Header {
	fs := make([]*Field, len(h.fields))
	for i, f := range h.fields {
		c := *f
		fs[i] = &c
	}

	return &Header{
		Base: Base{
			lbr:    h.lbr,
			fields: fs,
		},
	}
}

// Get retrieves the string value of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return "", ErrNoSuchField
	}

	b := h.GetField(ixs[0]).Body()
	if len(ixs) > 1 {
		return b, ErrManyFields
	}

	return b, nil
}

// GetAll retrieves the bodies of every field with the given name, in header
// order. It returns nil and ErrNoSuchField if there are none.
func (h *Header) GetAll(name string) ([]string, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return nil, ErrNoSuchField
	}

	bs := make([]string, len(ixs))
	for i, ix := range ixs {
		bs[i] = h.GetField(ix).Body()
	}

	return bs, nil
}

// Set will replace all existing header fields with the given name with a single
// header field with the given name and body. If the field already exists on the
// header, then the first occurrence will be replaced with this value and any
// other values will be deleted. If the field does not exist, it will be
// appended to the end of the header.
func (h *Header) Set(name, body string) {
	ixs := h.GetIndexesNamed(name)

	if len(ixs) == 0 {
		h.InsertBeforeField(h.Len(), name, body)
		return
	}

	for i := len(ixs) - 1; i > 0; i-- {
		_ = h.DeleteField(ixs[i])
	}

	f := h.GetField(ixs[0])
	f.SetName(name)
	f.SetBody(body)
}

// Add appends a new field to the end of the header, leaving any existing
// fields of the same name alone.
func (h *Header) Add(name, body string) {
	h.InsertBeforeField(h.Len(), name, body)
}

// ParseTime is a function that provides the time parsing used by GetTime() and
// GetDate() to parse dates to be used on any field body. This will attempt to
// parse the date using the format specified by RFC 5322 first and fallback to
// parsing it in many other formats.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime gets the given date header field as a time.Time.
//
// It will return the zero value and ErrNoSuchField if the header does not
// exist. It will return the zero value and ErrManyFields if more than one
// field with the name is set on the header.
func (h *Header) GetTime(name string) (time.Time, error) {
	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	return ParseTime(body)
}

// SetTime will replace all existing header fields with the given name with a
// single header field with the given name and time. The time will be formatted
// via time.RFC1123Z.
func (h *Header) SetTime(name string, body time.Time) {
	h.Set(name, body.Format(time.RFC1123Z))
}

// GetDate returns the parsed Date header field.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate replaces the Date header field.
func (h *Header) SetDate(d time.Time) {
	h.SetTime(Date, d)
}

// GetSubject returns the raw Subject header field. Use GetDecoded(Subject) to
// decode any encoded-words.
func (h *Header) GetSubject() (string, error) {
	return h.Get(Subject)
}

// SetSubject replaces the Subject header field.
func (h *Header) SetSubject(s string) {
	h.Set(Subject, s)
}

// GetMessageID returns the Message ID found in the Message-id header, if any.
func (h *Header) GetMessageID() (string, error) {
	return h.Get(MessageID)
}

// SetMessageID sets the Message-ID header of the message header.
func (h *Header) SetMessageID(id string) {
	h.Set(MessageID, id)
}

// GetAddressList will return an addr.AddressList for the named field. This
// method works hard to avoid parse errors and tries to accept anything. As such
// a badly formatted address field might return a weird address value.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
// If the field is set more than once, the first one is parsed and returned
// with ErrManyFields.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	body, err := h.Get(name)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return nil, err
	}

	return ParseAddressList(body), err
}

// GetAllAddressLists returns one addr.AddressList for every field with the
// given name. Some messages in the wild repeat To or Cc, so this is what
// should be used when all recipients matter.
func (h *Header) GetAllAddressLists(name string) ([]addr.AddressList, error) {
	bs, err := h.GetAll(name)
	if err != nil {
		return nil, err
	}

	als := make([]addr.AddressList, len(bs))
	for i, b := range bs {
		als[i] = ParseAddressList(b)
	}

	return als, nil
}

// SetAddressList will replace all existing header fields with the given name
// with a single header containing the given addresses.
func (h *Header) SetAddressList(name string, body ...addr.Address) {
	h.Set(name, addr.AddressList(body).String())
}

// setAddress allows the setting of an address field either from a string or
// from an address or fails with an error.
func (h *Header) setAddress(n string, as []any) error {
	al := make(addr.AddressList, 0, len(as))
	for _, a := range as {
		switch v := a.(type) {
		case string:
			add, err := addr.ParseEmailAddress(v)
			if err != nil {
				return err
			}
			al = append(al, add)
		case addr.Address:
			al = append(al, v)
		default:
			return ErrWrongAddressType
		}
	}
	h.SetAddressList(n, al...)
	return nil
}

// GetTo returns the To address field as an addr.AddressList.
func (h *Header) GetTo() (addr.AddressList, error) {
	return h.GetAddressList(To)
}

// SetTo sets the To address field with either an addr.Address or a string.
//
// It will fail with an error returned if something other than those types is
// provided or if the given string fails to strictly parse.
func (h *Header) SetTo(a ...any) error {
	return h.setAddress(To, a)
}

// GetCc returns the Cc address field as an addr.AddressList.
func (h *Header) GetCc() (addr.AddressList, error) {
	return h.GetAddressList(Cc)
}

// SetCc sets the Cc address field with either an addr.Address or a string.
func (h *Header) SetCc(a ...any) error {
	return h.setAddress(Cc, a)
}

// GetBcc returns the Bcc address field as an addr.AddressList.
func (h *Header) GetBcc() (addr.AddressList, error) {
	return h.GetAddressList(Bcc)
}

// SetBcc sets the Bcc address field with either an addr.Address or a string.
func (h *Header) SetBcc(a ...any) error {
	return h.setAddress(Bcc, a)
}

// GetFrom returns the From address field as an addr.AddressList.
func (h *Header) GetFrom() (addr.AddressList, error) {
	return h.GetAddressList(From)
}

// SetFrom sets the From address field with either an addr.Address or a
// string.
func (h *Header) SetFrom(a ...any) error {
	return h.setAddress(From, a)
}

// GetReplyTo returns the Reply-to address field as an addr.AddressList.
func (h *Header) GetReplyTo() (addr.AddressList, error) {
	return h.GetAddressList(ReplyTo)
}

// SetReplyTo sets the Reply-to address field.
func (h *Header) SetReplyTo(a ...any) error {
	return h.setAddress(ReplyTo, a)
}

// GetSender returns the address list in the Sender header, if any.
func (h *Header) GetSender() (addr.AddressList, error) {
	return h.GetAddressList(Sender)
}

// SetSender sets the Sender address field.
func (h *Header) SetSender(a ...any) error {
	return h.setAddress(Sender, a)
}

// GetReturnPath returns the bare address of the Return-path trace field with
// the angle brackets removed. The null reverse-path "<>" is returned as an
// empty string with no error.
//
// If the field is repeated, as happens when a message has passed through more
// than one delivery, the first (most recent) one is returned along with
// ErrManyFields.
func (h *Header) GetReturnPath() (string, error) {
	body, err := h.Get(ReturnPath)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return "", err
	}

	p := strings.TrimSpace(body)
	p = strings.TrimPrefix(p, "<")
	p = strings.TrimSuffix(p, ">")
	return strings.TrimSpace(p), err
}

// SetReturnPath replaces the Return-path field with the given address,
// wrapped in angle brackets.
func (h *Header) SetReturnPath(a string) {
	h.Set(ReturnPath, "<"+a+">")
}
