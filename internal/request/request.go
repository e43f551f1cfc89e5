package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devwelkin/hermes-submit/internal/headers"
)

var (
	ErrEmptyRequest         = errors.New("empty request line")
	ErrInvalidRequestLine   = errors.New("invalid request line format")
	ErrInvalidContentLength = errors.New("invalid content-length")
)

const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
	MethodPost = "POST"
)

// Limits on what one request may make the server buffer.
const (
	MaxLineBytes = 8 << 10
	MaxBodyBytes = 1 << 20
)

var errLineTooLong = fmt.Errorf("line longer than %d bytes", MaxLineBytes)

// ContentLengthHeader is matched exactly as written; header names are
// case-sensitive.
const ContentLengthHeader = "Content-Length"

const (
	stateRequestLine = iota
	stateHeaders
	stateBody
	stateDone
)

// Request is one parsed request. Headers and Body are only populated for
// POST; Body is nil unless a Content-Length header was supplied.
type Request struct {
	RequestLine RequestLine
	Headers     headers.Headers
	Body        []byte
	state       int
}

type RequestLine struct {
	Method      string // upper-cased
	Path        string // lower-cased
	HTTPVersion string // empty when the client sent none
}

// FromReader reads exactly one request from r. It never reads past the
// declared body.
func FromReader(r *bufio.Reader) (*Request, error) {
	req := &Request{
		state:   stateRequestLine,
		Headers: headers.NewHeaders(),
	}

	for req.state != stateDone {
		if err := req.step(r); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (r *Request) step(rd *bufio.Reader) error {
	switch r.state {
	case stateRequestLine:
		line, err := readLine(rd)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrEmptyRequest
			}
			if errors.Is(err, errLineTooLong) {
				return fmt.Errorf("%w: %w", ErrInvalidRequestLine, err)
			}
			return err
		}
		reqLine, err := parseRequestLine(line)
		if err != nil {
			return fmt.Errorf("failed to parse request line: %w", err)
		}
		r.RequestLine = *reqLine
		if reqLine.Method == MethodPost {
			r.state = stateHeaders
		} else {
			r.state = stateDone
		}
		return nil

	case stateHeaders:
		line, err := readLine(rd)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			if errors.Is(err, errLineTooLong) {
				return fmt.Errorf("%w: %w", headers.ErrInvalidHeader, err)
			}
			return err
		}
		if line == "" {
			r.state = stateBody
			return nil
		}
		return r.Headers.ParseLine([]byte(line))

	case stateBody:
		value, ok := r.Headers.Get(ContentLengthHeader)
		if !ok {
			r.state = stateDone
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > MaxBodyBytes {
			return fmt.Errorf("%w: %q", ErrInvalidContentLength, value)
		}
		// The buffer grows with the bytes that actually arrive, not with
		// what the client declared.
		body, err := io.ReadAll(io.LimitReader(rd, int64(n)))
		if err != nil {
			return err
		}
		if len(body) < n {
			return io.ErrUnexpectedEOF
		}
		r.Body = body
		r.state = stateDone
		return nil

	default:
		return errors.New("invalid parser state")
	}
}

// parseRequestLine splits on any run of whitespace: method, path and an
// optional protocol version.
func parseRequestLine(line string) (*RequestLine, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, ErrEmptyRequest
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: missing path in %q", ErrInvalidRequestLine, line)
	}

	reqLine := &RequestLine{
		Method: strings.ToUpper(parts[0]),
		Path:   strings.ToLower(parts[1]),
	}
	if len(parts) > 2 {
		reqLine.HTTPVersion = parts[2]
	}
	return reqLine, nil
}

// readLine returns the next line without its LF or CRLF terminator. A
// final unterminated line is returned as is; io.EOF only when nothing at
// all was left. Lines longer than MaxLineBytes, terminator included, fail
// with errLineTooLong.
func readLine(rd *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := rd.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxLineBytes {
			return "", errLineTooLong
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(string(line), "\r"), nil
		}
		return "", err
	}
	s := strings.TrimSuffix(string(line), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
