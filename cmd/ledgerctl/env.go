package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/jhoicas/estoque-api/internal/bootstrap"
	"github.com/jhoicas/estoque-api/internal/infrastructure/storage"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// env servicios abiertos para un comando.
type env struct {
	cfg     *config.Config
	backend *storage.Backend
	svc     *bootstrap.Services
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: "development", Level: "warn", App: "ledgerctl"})
	backend, err := storage.Open(ctx, *cfg, log.Component("storage"))
	if err != nil {
		return nil, err
	}
	svc, err := bootstrap.Build(backend, cfg.Ledger, log.Component("ledger"))
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return &env{cfg: cfg, backend: backend, svc: svc}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "cerrar almacenamiento: %v\n", err)
	}
}

// printMarkdown escribe md en stdout, formateado con glamour salvo -raw.
func printMarkdown(md string) error {
	if *rawOutput {
		_, err := fmt.Fprint(os.Stdout, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
