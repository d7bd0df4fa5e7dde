// Command catalog-check validates product catalog files before deployment
// and can write gzip-compressed copies for the catalog_file setting.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/catalog"
)

func main() {
	var compress bool

	flag.BoolVar(&compress, "gzip", false, "write <file>.gz next to every valid uncompressed file")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("usage: catalog-check [--gzip] FILE...")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, compress); err != nil {
		slog.Error("catalog check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog check completed successfully", slog.Int("files", len(files)))
}

// run validates every file concurrently. The first invalid file cancels the
// rest.
func run(ctx context.Context, files []string, compress bool) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := catalog.LoadFile(path)
			if err != nil {
				return errors.Wrapf(err, "check %s", path)
			}
			slog.Info("catalog valid", slog.String("path", path), slog.Int("products", c.Len()))

			if !compress || strings.HasSuffix(path, ".gz") {
				return nil
			}
			if err := gzipFile(path, path+".gz"); err != nil {
				return errors.Wrapf(err, "compress %s", path)
			}
			slog.Info("compressed catalog written", slog.String("path", path+".gz"))
			return nil
		})
	}
	return g.Wait()
}

func gzipFile(src, dst string) (rerr error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create")
	}
	defer func() {
		if err := out.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close")
		}
	}()

	zw := pgzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		return errors.Wrap(err, "copy")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}
