package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// walSuffix is appended to a database path to name its write-ahead log.
const walSuffix = "-wal"

// Snapshot copies each source database, with its write-ahead log when one
// exists, into dir. The copies run concurrently.
//
// The returned paths are in source order. Copies are prefixed with their
// position so sources sharing a base name do not collide.
// A missing source yields an error wrapping ErrNotFound.
func Snapshot(ctx context.Context, dir string, sources ...string) ([]string, error) {
	copies := make([]string, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		dst := filepath.Join(dir, fmt.Sprintf("%d-%s", i, filepath.Base(src)))
		copies[i] = dst

		g.Go(func() error {
			if err := copyFile(ctx, src, dst); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%w at %s", ErrNotFound, src)
				}
				return err
			}

			// The log holds committed transactions not yet checkpointed
			// into the main file.
			err := copyFile(ctx, src+walSuffix, dst+walSuffix)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to snapshot databases: %w", err)
	}

	return copies, nil
}

// copyFile copies src to a new file dst readable only by the current user.
func copyFile(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	in, err := os.Open(src) //nolint:gosec // path comes from the profile locator or the user
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600) //nolint:gosec // dst is inside our temp dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return out.Close()
}
