package server

import (
	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/errpage"
	"github.com/devwelkin/hermes-submit/internal/form"
	"github.com/devwelkin/hermes-submit/internal/request"
	"github.com/devwelkin/hermes-submit/internal/response"
	"github.com/devwelkin/hermes-submit/internal/static"
)

// Dispatcher routes a request by method: GET and HEAD to the file
// responder, POST to the form responder, anything else to 501.
type Dispatcher struct {
	Files  *static.Responder
	Forms  *form.Responder
	Errors *errpage.Responder
	Log    zerolog.Logger
}

func (d *Dispatcher) Handle(w *response.Writer, req *request.Request) error {
	method, path := req.RequestLine.Method, req.RequestLine.Path
	d.Log.Debug().Str("method", method).Str("path", path).Msg("dispatching")

	switch method {
	case request.MethodGet, request.MethodHead:
		return d.Files.Serve(w, method, path)
	case request.MethodPost:
		return d.Forms.Handle(w, req)
	default:
		return d.Errors.NotImplemented(w, method)
	}
}
