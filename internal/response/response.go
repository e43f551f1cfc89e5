package response

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/devwelkin/hermes-submit/internal/headers"
)

type StatusCode int

const (
	StatusOK             StatusCode = 200
	StatusSeeOther       StatusCode = 303
	StatusNotFound       StatusCode = 404
	StatusNotImplemented StatusCode = 501
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:             "OK",
	StatusSeeOther:       "See Other",
	StatusNotFound:       "File Not Found",
	StatusNotImplemented: "Not Implemented",
}

// DateFormat is the RFC 1123 layout with a fixed GMT zone.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

const protocol = "HTTP/1.1"

type writerState int

const (
	stateStatus writerState = iota
	stateHeaders
	stateBody
)

// Writer frames one response: status line, headers, then body, in that
// order. Output is buffered until Flush.
type Writer struct {
	w       *bufio.Writer
	state   writerState
	written bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     bufio.NewWriter(w),
		state: stateStatus,
	}
}

// WriteStatusLine starts the response. It must come before anything else.
func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != stateStatus {
		return errors.New("WriteStatusLine called in wrong state")
	}
	reason := reasonPhrases[statusCode]
	w.written = true
	if _, err := fmt.Fprintf(w.w, "%s %d %s\r\n", protocol, statusCode, reason); err != nil {
		return err
	}
	w.state = stateHeaders
	return nil
}

// WriteHeaders writes h and the blank line that ends the header block.
func (w *Writer) WriteHeaders(h headers.Headers) error {
	if w.state != stateHeaders {
		return errors.New("WriteHeaders called in wrong state")
	}

	for _, key := range h.Keys() {
		if _, err := fmt.Fprintf(w.w, "%s: %s\r\n", key, h[key]); err != nil {
			return err
		}
	}

	if _, err := w.w.WriteString("\r\n"); err != nil {
		return err
	}

	w.state = stateBody
	return nil
}

// WriteBody appends p to the body; the headers have to be out first.
func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != stateBody {
		return 0, errors.New("WriteBody called before headers")
	}
	return w.w.Write(p)
}

// Flush pushes everything buffered so far to the connection.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Written reports whether a status line has been started.
func (w *Writer) Written() bool {
	return w.written
}

// GetDefaultHeaders returns the headers every body-bearing response carries.
func GetDefaultHeaders(contentType string, contentLen int64) headers.Headers {
	return headers.Headers{
		"Date":           time.Now().UTC().Format(DateFormat),
		"Content-Type":   contentType,
		"Content-Length": strconv.FormatInt(contentLen, 10),
	}
}
