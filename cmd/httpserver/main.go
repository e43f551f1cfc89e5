package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/devwelkin/hermes-submit/internal/config"
	"github.com/devwelkin/hermes-submit/internal/docroot"
	"github.com/devwelkin/hermes-submit/internal/errpage"
	"github.com/devwelkin/hermes-submit/internal/form"
	"github.com/devwelkin/hermes-submit/internal/server"
	"github.com/devwelkin/hermes-submit/internal/static"
	"github.com/devwelkin/hermes-submit/internal/submit"
)

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr)

	root := docroot.New(cfg.Root)
	if err := root.Require(cfg.NotFoundFile, cfg.NotSupportedFile); err != nil {
		log.Fatal().Err(err).Str("root", root.Dir()).Msg("error documents missing")
	}
	if err := root.Require(cfg.IndexFile); err != nil {
		log.Warn().Err(err).Msg("index document missing, directory requests will get 404")
	}

	errs := errpage.NewResponder(root, cfg.NotFoundFile, cfg.NotSupportedFile, log)
	dispatcher := &server.Dispatcher{
		Files:  static.NewResponder(root, cfg.IndexFile, errs, log),
		Forms:  form.NewResponder(cfg.SubmitPath, cfg.SuccessLocation, submit.DryRun{Log: log}, log),
		Errors: errs,
		Log:    log,
	}

	srv, err := server.Serve(server.Options{
		Addr:          cfg.Addr(),
		Spawner:       server.NewSpawner(cfg.MaxConns),
		Logger:        log,
		LingerTimeout: cfg.LingerTimeout,
	}, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Int("port", cfg.Port).Msg("error starting server")
	}
	log.Info().
		Str("addr", srv.Addr().String()).
		Str("root", root.Dir()).
		Int("max_conns", cfg.MaxConns).
		Msg("listening for connections")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutting down, waiting for open connections")
	if err := srv.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing listener")
	}
	srv.Wait()
	log.Info().Msg("server gracefully stopped")
}
