// Package static serves files from the document root for GET and HEAD.
package static

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/content"
	"github.com/devwelkin/hermes-submit/internal/docroot"
	"github.com/devwelkin/hermes-submit/internal/errpage"
	"github.com/devwelkin/hermes-submit/internal/request"
	"github.com/devwelkin/hermes-submit/internal/response"
)

type Responder struct {
	root   docroot.Root
	index  string
	errors *errpage.Responder
	log    zerolog.Logger
}

func NewResponder(root docroot.Root, index string, errs *errpage.Responder, log zerolog.Logger) *Responder {
	return &Responder{
		root:   root,
		index:  index,
		errors: errs,
		log:    log,
	}
}

// Serve answers a GET or HEAD for path. A path ending in "/" names the
// index document of that directory. HEAD gets the same headers as GET and
// no body.
func (r *Responder) Serve(w *response.Writer, method, path string) error {
	if strings.HasSuffix(path, "/") {
		path += r.index
	}

	f, info, err := r.root.Open(path)
	if err != nil {
		if errors.Is(err, docroot.ErrNotFound) {
			return r.errors.NotFound(w, path)
		}
		return err
	}
	defer f.Close()

	contentType := content.Type(path)

	if err := w.WriteStatusLine(response.StatusOK); err != nil {
		return err
	}
	if err := w.WriteHeaders(response.GetDefaultHeaders(contentType, info.Size())); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if method != request.MethodGet {
		return nil
	}

	// The size was taken before this read; a file changing in between is
	// not guarded against.
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if _, err := w.WriteBody(data); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	r.log.Debug().Str("path", path).Str("type", contentType).Int("bytes", len(data)).Msg("file returned")
	return nil
}
