package request

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwelkin/hermes-submit/internal/headers"
)

// chunkReader hands out at most n bytes per Read, like a slow socket.
type chunkReader struct {
	data string
	n    int
	pos  int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	end := c.pos + c.n
	if end > len(c.data) {
		end = len(c.data)
	}
	n := copy(p, c.data[c.pos:end])
	c.pos += n
	return n, nil
}

func parse(t *testing.T, raw string) (*Request, error) {
	t.Helper()
	return FromReader(bufio.NewReader(&chunkReader{data: raw, n: 3}))
}

func TestRequestLine(t *testing.T) {
	req, err := parse(t, "get /Index.HTML HTTP/1.1\r\nHost: localhost\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, MethodGet, req.RequestLine.Method)
	assert.Equal(t, "/index.html", req.RequestLine.Path)
	assert.Equal(t, "HTTP/1.1", req.RequestLine.HTTPVersion)
	assert.Empty(t, req.Headers, "headers are only read for POST")
	assert.Nil(t, req.Body)
}

func TestRequestLineWithoutVersion(t *testing.T) {
	req, err := parse(t, "HEAD\t /a.txt\n")
	require.NoError(t, err)
	assert.Equal(t, MethodHead, req.RequestLine.Method)
	assert.Equal(t, "/a.txt", req.RequestLine.Path)
	assert.Empty(t, req.RequestLine.HTTPVersion)
}

func TestUnknownMethodKept(t *testing.T) {
	req, err := parse(t, "delete / HTTP/1.1\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", req.RequestLine.Method)
}

func TestPostBody(t *testing.T) {
	body := "picker=42&pin=1212"
	raw := "POST /submit HTTP/1.1\r\n" +
		"Host: localhost:8080\r\n" +
		"Content-Length: 18\r\n" +
		"\r\n" + body + "trailing"

	req, err := parse(t, raw)
	require.NoError(t, err)
	assert.Equal(t, MethodPost, req.RequestLine.Method)
	assert.Equal(t, "localhost:8080", req.Headers["Host"])
	assert.Equal(t, body, string(req.Body))
}

func TestPostWithoutContentLength(t *testing.T) {
	req, err := parse(t, "POST /submit HTTP/1.1\r\nHost: x\r\n\r\nignored")
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestPostContentLengthIsCaseSensitive(t *testing.T) {
	req, err := parse(t, "POST /submit HTTP/1.1\r\ncontent-length: 3\r\n\r\nabc")
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestPostZeroContentLength(t *testing.T) {
	req, err := parse(t, "POST /submit HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	require.NoError(t, err)
	assert.NotNil(t, req.Body)
	assert.Empty(t, req.Body)
}

func TestMalformedRequests(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"closed before anything", "", ErrEmptyRequest},
		{"blank line", "\r\n", ErrEmptyRequest},
		{"missing path", "GET\r\n", ErrInvalidRequestLine},
		{"non-numeric content length", "POST /submit HTTP/1.1\r\nContent-Length: ten\r\n\r\n", ErrInvalidContentLength},
		{"negative content length", "POST /submit HTTP/1.1\r\nContent-Length: -1\r\n\r\n", ErrInvalidContentLength},
		{"short body", "POST /submit HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc", io.ErrUnexpectedEOF},
		{"content length over limit", "POST /submit HTTP/1.1\r\nContent-Length: 1099511627776\r\n\r\nx", ErrInvalidContentLength},
		{"large content length short body", "POST /submit HTTP/1.1\r\nContent-Length: 65536\r\n\r\nx", io.ErrUnexpectedEOF},
		{"headers never end", "POST /submit HTTP/1.1\r\nHost: x\r\n", io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parse(t, tt.raw)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromReaderStopsAtBody(t *testing.T) {
	rd := bufio.NewReader(strings.NewReader("POST /submit HTTP/1.1\r\nContent-Length: 2\r\n\r\nokNEXT"))
	_, err := FromReader(rd)
	require.NoError(t, err)

	rest, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "NEXT", string(rest))
}

func TestLongLinesRejected(t *testing.T) {
	long := strings.Repeat("a", MaxLineBytes+1)

	_, err := parse(t, "GET /"+long+" HTTP/1.1\r\n\r\n")
	assert.ErrorIs(t, err, ErrInvalidRequestLine)

	// No newline at all: the reader gives up instead of buffering forever.
	_, err = parse(t, "GET /"+long)
	assert.ErrorIs(t, err, ErrInvalidRequestLine)

	_, err = parse(t, "POST /submit HTTP/1.1\r\nX-Pad: "+long+"\r\n\r\n")
	assert.ErrorIs(t, err, headers.ErrInvalidHeader)
}

func TestLineAtLimitAccepted(t *testing.T) {
	path := "/" + strings.Repeat("b", MaxLineBytes-len("GET  HTTP/1.1\r\n")-1)
	req, err := parse(t, "GET "+path+" HTTP/1.1\r\n")
	require.NoError(t, err)
	assert.Equal(t, path, req.RequestLine.Path)
}
