// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package portfolio

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Seed inserts b as default content unless default education rows already
// exist. It reports whether anything was inserted.
func Seed(ctx context.Context, repo ContentRepository, b *Bundle, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if b == nil {
		return false, oops.Code("CONTENT_SEED_FAILED").Errorf("bundle is required")
	}

	exists, err := repo.HasDefaults(ctx)
	if err != nil {
		return false, oops.Code("CONTENT_SEED_FAILED").Wrap(err)
	}
	if exists {
		logger.Debug("default content present, skip seed")
		return false, nil
	}

	if err := repo.InsertBundle(ctx, b); err != nil {
		return false, oops.Code("CONTENT_SEED_FAILED").With("version", b.Version).Wrap(err)
	}
	logger.Info("default content seeded", "version", b.Version, "rows", b.Rows())
	return true, nil
}
