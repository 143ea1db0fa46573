package sendmail

// NormalizeCRLF returns a copy of b with every line ending (CRLF, a bare LF,
// or a bare CR) converted to CRLF, which is what MTAs expect on the wire.
func NormalizeCRLF(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/32)
	for i := 0; i < len(b); i++ {
		switch c := b[i]; c {
		case '\r':
			out = append(out, '\r', '\n')
			if i+1 < len(b) && b[i+1] == '\n' {
				i++
			}
		case '\n':
			out = append(out, '\r', '\n')
		default:
			out = append(out, c)
		}
	}
	return out
}

// NormalizeBody is NormalizeCRLF plus a final CRLF when the last line of a
// non-empty body has no line ending.
func NormalizeBody(b []byte) []byte {
	out := NormalizeCRLF(b)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\r', '\n')
	}
	return out
}
