// Package errpage answers 404 and 501 with fixed documents from the
// document root.
package errpage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/content"
	"github.com/devwelkin/hermes-submit/internal/docroot"
	"github.com/devwelkin/hermes-submit/internal/response"
)

type Responder struct {
	root         docroot.Root
	notFound     string
	notSupported string
	log          zerolog.Logger
}

func NewResponder(root docroot.Root, notFound, notSupported string, log zerolog.Logger) *Responder {
	return &Responder{
		root:         root,
		notFound:     notFound,
		notSupported: notSupported,
		log:          log,
	}
}

// NotFound sends the not-found document for a request of path.
func (r *Responder) NotFound(w *response.Writer, path string) error {
	r.log.Info().Str("path", path).Msg("file not found")
	return r.send(w, response.StatusNotFound, r.notFound)
}

// NotImplemented sends the unsupported-method document.
func (r *Responder) NotImplemented(w *response.Writer, method string) error {
	r.log.Info().Str("method", method).Msg("method not implemented")
	return r.send(w, response.StatusNotImplemented, r.notSupported)
}

func (r *Responder) send(w *response.Writer, code response.StatusCode, doc string) error {
	// A missing document is a setup fault; nothing is written for it.
	body, err := r.root.ReadFile(doc)
	if err != nil {
		return fmt.Errorf("loading %d document: %w", code, err)
	}

	if err := w.WriteStatusLine(code); err != nil {
		return err
	}
	if err := w.WriteHeaders(response.GetDefaultHeaders(content.TextHTML, int64(len(body)))); err != nil {
		return err
	}
	if _, err := w.WriteBody(body); err != nil {
		return err
	}
	return w.Flush()
}
