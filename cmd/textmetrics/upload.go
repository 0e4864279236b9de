package main

import (
	"context"
	"errors"

	"github.com/tsawler/textmetrics/internal/config"
	"github.com/tsawler/textmetrics/internal/upload"
)

func uploadReport(ctx context.Context, cfg *config.Config, path string) (string, error) {
	if !cfg.Upload.Enabled() {
		return "", errors.New("no upload bucket configured")
	}
	u, err := upload.New(ctx, cfg.Upload)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, path)
}
