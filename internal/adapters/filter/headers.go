package filter

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"strings"
)

var wordDecoder = &mime.WordDecoder{}

// decodeEncodedHeader decodes RFC 2047 encoded words, returning the input
// unchanged when it cannot be decoded
func decodeEncodedHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// displayName extracts the decoded display name of a From header
func displayName(from string) string {
	if from == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Name
	}
	// Unparseable header: take whatever precedes the angle address
	name, _, found := strings.Cut(from, "<")
	if !found {
		return ""
	}
	return strings.TrimSpace(decodeEncodedHeader(name))
}

// headerBlock splits a raw message into its header block and body. The
// separator is kept with the body.
func headerBlock(raw []byte) ([]byte, []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+2:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], raw[i+1:]
	}
	return raw, nil
}

// stripHeaders removes every occurrence of the named headers, continuation
// lines included
func stripHeaders(raw []byte, names []string) []byte {
	header, body := headerBlock(raw)

	var out bytes.Buffer
	out.Grow(len(raw))
	skipping := false
	for _, line := range bytes.SplitAfter(header, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if !skipping {
				out.Write(line)
			}
			continue
		}
		skipping = false
		if name, _, ok := bytes.Cut(line, []byte(":")); ok {
			for _, n := range names {
				if strings.EqualFold(strings.TrimSpace(string(name)), n) {
					skipping = true
					break
				}
			}
		}
		if !skipping {
			out.Write(line)
		}
	}
	out.Write(body)
	return out.Bytes()
}

// prependHeaders writes headers in order ahead of the message
func prependHeaders(raw []byte, headers [][2]string) []byte {
	var out bytes.Buffer
	out.Grow(len(raw) + 256)
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}
	out.Write(raw)
	return out.Bytes()
}
