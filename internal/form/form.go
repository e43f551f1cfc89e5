// Package form handles POST submissions of the temperature form.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/headers"
	"github.com/devwelkin/hermes-submit/internal/request"
	"github.com/devwelkin/hermes-submit/internal/response"
	"github.com/devwelkin/hermes-submit/internal/submit"
)

var (
	ErrMalformedParam = errors.New("malformed form parameter")
	ErrMissingField   = errors.New("missing form field")
	ErrBadDate        = errors.New("bad date")
)

// Field names of the submission form.
const (
	FieldPicker    = "picker"
	FieldPin       = "pin"
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
)

// DateLayout is MM/DD/YYYY.
const DateLayout = "01/02/2006"

// Only the slash is escaped by the form page.
const escapedSlash = "%2F"

// Submission is the parsed form body.
type Submission struct {
	MemberID string
	PIN      string
	Start    time.Time
	End      time.Time
}

// ParseParams splits a key=value&key=value body. Later keys win.
func ParseParams(body []byte) (map[string]string, error) {
	params := make(map[string]string)
	if len(body) == 0 {
		return params, nil
	}
	for _, tok := range bytes.Split(body, []byte("&")) {
		key, value, ok := bytes.Cut(tok, []byte("="))
		if !ok || len(key) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedParam, tok)
		}
		params[string(key)] = string(value)
	}
	return params, nil
}

func ParseSubmission(body []byte) (Submission, error) {
	params, err := ParseParams(body)
	if err != nil {
		return Submission{}, err
	}

	var sub Submission
	if sub.MemberID, err = required(params, FieldPicker); err != nil {
		return Submission{}, err
	}
	if sub.PIN, err = required(params, FieldPin); err != nil {
		return Submission{}, err
	}
	if sub.Start, err = date(params, FieldStartDate); err != nil {
		return Submission{}, err
	}
	if sub.End, err = date(params, FieldEndDate); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func required(params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

func date(params map[string]string, key string) (time.Time, error) {
	raw, err := required(params, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(DateLayout, strings.ReplaceAll(raw, escapedSlash, "/"))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q: %v", ErrBadDate, key, raw, err)
	}
	return t, nil
}

type Responder struct {
	path      string
	location  string
	submitter submit.Submitter
	log       zerolog.Logger
}

// NewResponder answers POSTs to path, redirecting to location when the
// submitter reports success.
func NewResponder(path, location string, submitter submit.Submitter, log zerolog.Logger) *Responder {
	return &Responder{
		path:      path,
		location:  location,
		submitter: submitter,
		log:       log,
	}
}

// Handle runs one submission. Only a successful submission produces a
// response; every failure is logged and the client gets nothing but the
// closed connection.
func (r *Responder) Handle(w *response.Writer, req *request.Request) error {
	if req.RequestLine.Path != r.path {
		r.log.Debug().Str("path", req.RequestLine.Path).Msg("post to unhandled path ignored")
		return nil
	}

	sub, err := ParseSubmission(req.Body)
	if err != nil {
		r.log.Warn().Err(err).Msg("rejecting submission")
		return nil
	}

	passed := r.submitter.SubmitWithin(sub.MemberID, sub.PIN, sub.Start, sub.End)
	if !passed {
		r.log.Warn().
			Str("member", sub.MemberID).
			Time("start", sub.Start).
			Time("end", sub.End).
			Msg("submission failed")
		// TODO: no status code is sent on failure until the product side
		// decides what the form page should show.
		return nil
	}
	r.log.Info().
		Str("member", sub.MemberID).
		Time("start", sub.Start).
		Time("end", sub.End).
		Msg("submission passed")

	if err := w.WriteStatusLine(response.StatusSeeOther); err != nil {
		return err
	}
	if err := w.WriteHeaders(headers.Headers{"Location": r.location}); err != nil {
		return err
	}
	return w.Flush()
}
