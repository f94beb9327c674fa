package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Pre-run binary dumps via pg_dump, used only for full restore on
// catastrophic failure. Custom format keeps the dump compact and lets
// pg_restore run with --clean.

// Dump writes a custom-format dump of the database into dir and returns
// its path.
func Dump(ctx context.Context, dsn, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("pre_import_%s.dump", time.Now().UTC().Format("20060102_150405")))

	cmd := exec.CommandContext(ctx, "pg_dump", "--format=custom", "--file", path, dsn)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pg_dump failed: %w: %s", err, out)
	}

	log.Info().Str("path", path).Msg("Pre-run database dump written")
	return path, nil
}

// RestoreDump restores the database from a dump taken by Dump, dropping
// current objects first.
func RestoreDump(ctx context.Context, dsn, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("dump file not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pg_restore", "--clean", "--if-exists", "--no-owner", "--dbname", dsn, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pg_restore failed: %w: %s", err, out)
	}

	log.Warn().Str("path", path).Msg("Database restored from pre-run dump")
	return nil
}
