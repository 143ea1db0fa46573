package header

import (
	"strings"

	"github.com/zostay/go-addr/pkg/addr"
)

// ParseAddressList provides the same address parsing functionality built into
// GetAddressList() and can be used to parse any field body. It will attempt a
// strict parse of the email address list. However, if that fails, an
// extremely lenient parsing will be attempted. It is so forgiving, it will
// return some kind of value for any input.
func ParseAddressList(body string) addr.AddressList {
	al, err := addr.ParseEmailAddressList(body)
	if err != nil {
		al = parseEmailAddressList(body)
	}

	return al
}

// AddrSpecs returns the bare addr-spec (local@domain) of every address in
// the list, dropping display names and comments. Entries with no address,
// such as an empty group, are skipped.
func AddrSpecs(al addr.AddressList) []string {
	specs := make([]string, 0, len(al))
	for _, a := range al {
		if s := strings.TrimSpace(a.Address()); s != "" {
			specs = append(specs, s)
		}
	}
	return specs
}

// extractComments splits the parenthesized comments out of an address,
// honoring nesting.
func extractComments(s string) (string, string) {
	var clean, comment strings.Builder
	nestLevel := 0
	for _, c := range s {
		switch {
		case c == '(':
			nestLevel++
			if nestLevel > 1 {
				comment.WriteRune(c)
			}
		case c == ')':
			nestLevel--
			switch {
			case nestLevel == 0:
			case nestLevel < 0:
				nestLevel = 0
				clean.WriteRune(c)
			default:
				comment.WriteRune(c)
			}
		case nestLevel > 0:
			comment.WriteRune(c)
		default:
			clean.WriteRune(c)
		}
	}

	return clean.String(), comment.String()
}

// parseEmailAddressList is a fallback method for email address parsing. The
// parser in github.com/zostay/go-addr is strict, which is great for data
// entry, but messages from the Internet still need to get delivered.
//
// Each comma-separated entry has its comments removed, then the last word is
// taken as the address (with any angle brackets stripped) and everything
// before it becomes the display name. Groups are not handled.
func parseEmailAddressList(v string) addr.AddressList {
	mbs := strings.Split(v, ",")
	as := make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		mb, com := extractComments(orig)

		mb = strings.TrimSpace(mb)
		com = strings.TrimSpace(com)

		parts := strings.Fields(mb)

		var dn, email string
		switch {
		case len(parts) == 0:
			continue
		case len(parts) > 1:
			dn = strings.Join(parts[:len(parts)-1], " ")
			email = parts[len(parts)-1]
		default:
			email = parts[0]
		}

		email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")
		if email == "" {
			continue
		}

		var addrSpec *addr.AddrSpec
		if i := strings.LastIndex(email, "@"); i > -1 {
			addrSpec = addr.NewAddrSpecParsed(email[:i], email[i+1:], email)
		} else {
			addrSpec = addr.NewAddrSpecParsed(email, "", email)
		}

		mailbox, err := addr.NewMailboxParsed(dn, addrSpec, com, orig)
		if err != nil {
			mailbox, _ = addr.NewMailboxParsed(dn, addrSpec, "", orig)
		}

		as = append(as, mailbox)
	}

	return as
}
