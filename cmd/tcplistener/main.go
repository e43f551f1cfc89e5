// Command tcplistener accepts connections one at a time and logs the
// request each one carries. It never answers.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/request"
)

func main() {
	port := flag.Int("port", 42069, "TCP port to listen on")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Fatal().Err(err).Msg("accept")
		}
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("connection has accepted")

		dump(log, conn)
	}
}

func dump(log zerolog.Logger, conn net.Conn) {
	defer conn.Close()

	req, err := request.FromReader(bufio.NewReader(conn))
	if err != nil {
		log.Warn().Err(err).Msg("unparsable request")
		return
	}
	event := log.Info().
		Str("method", req.RequestLine.Method).
		Str("path", req.RequestLine.Path).
		Str("version", req.RequestLine.HTTPVersion).
		Int("body_bytes", len(req.Body))
	for _, k := range req.Headers.Keys() {
		event = event.Str("h."+k, req.Headers[k])
	}
	event.Msg("request")
}
