package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{`"Jane Doe" <jane@example.com>`, "Jane Doe"},
		{`Jane Doe <jane@example.com>`, "Jane Doe"},
		{`jane@example.com`, ""},
		{`=?UTF-8?Q?Ren=C3=A9e_Dupont?= <renee@example.com>`, "Renée Dupont"},
		{`Broken Name <not an address`, "Broken Name"},
		{``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.from))
		})
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	assert.Equal(t, "Héllo", decodeEncodedHeader("=?UTF-8?B?SMOpbGxv?="))
	assert.Equal(t, "plain", decodeEncodedHeader("plain"))
	assert.Equal(t, "=?bogus?X?abc?=", decodeEncodedHeader("=?bogus?X?abc?="))
}

func TestHeaderBlock(t *testing.T) {
	header, body := headerBlock([]byte("A: 1\r\nB: 2\r\n\r\nbody"))
	assert.Equal(t, "A: 1\r\nB: 2\r\n", string(header))
	assert.Equal(t, "\r\nbody", string(body))

	header, body = headerBlock([]byte("A: 1\n\nbody"))
	assert.Equal(t, "A: 1\n", string(header))
	assert.Equal(t, "\nbody", string(body))

	header, body = headerBlock([]byte("A: 1\r\n"))
	assert.Equal(t, "A: 1\r\n", string(header))
	assert.Empty(t, body)
}

func TestStripHeaders(t *testing.T) {
	raw := "Received: from a\r\n" +
		"\tby b\r\n" +
		"X-Bot-Score: 10\r\n" +
		"X-BOT-REASONS: one;\r\n" +
		" two\r\n" +
		"Subject: hi\r\n" +
		"\r\n" +
		"X-Bot-Score: in the body stays\r\n"

	got := stripHeaders([]byte(raw), []string{"X-Bot-Score", "X-Bot-Reasons"})

	want := "Received: from a\r\n" +
		"\tby b\r\n" +
		"Subject: hi\r\n" +
		"\r\n" +
		"X-Bot-Score: in the body stays\r\n"
	assert.Equal(t, want, string(got))
}

func TestPrependHeaders(t *testing.T) {
	got := prependHeaders([]byte("Subject: hi\r\n\r\nbody"), [][2]string{
		{"X-A", "1"},
		{"X-B", "two words"},
	})
	assert.Equal(t, "X-A: 1\r\nX-B: two words\r\nSubject: hi\r\n\r\nbody", string(got))
}
