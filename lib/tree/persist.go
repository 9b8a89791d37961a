package tree

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

func splitBeneath(path string) (dir, file string) {
	dir, file = filepath.Split(filepath.Clean(path))
	if len(dir) == 0 {
		dir = "."
	}
	return dir, file
}

// saveFile truncates or creates path and streams the tree into it.
func saveFile(logger xlog.XLogger, path string, save func(w io.Writer) error) (err error) {
	dir, file := splitBeneath(path)
	f, err := safeopen.OpenFileBeneath(dir, file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		err = infra.WrapErrorStackWithMessage(err, "[tree] unable to open file to save: "+path)
		logger.ErrorStack(err, "save tree failed", zap.String("path", path))
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, infra.WrapErrorStackWithMessage(cerr, "[tree] unable to close saved file: "+path))
		}
		if err != nil {
			logger.ErrorStack(err, "save tree failed", zap.String("path", path))
		}
	}()
	return save(f)
}

// loadFile is a no-op when path is missing or unreadable. Decode
// errors are returned and the tree keeps its previous content.
func loadFile(logger xlog.XLogger, path string, load func(r io.Reader) error) (err error) {
	dir, file := splitBeneath(path)
	f, err := safeopen.OpenBeneath(dir, file)
	if err != nil {
		logger.Debug("skip loading tree, file unavailable",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	defer func() {
		_ = f.Close()
	}()
	if fi, serr := f.Stat(); serr == nil && fi.IsDir() {
		logger.Debug("skip loading tree, path is a directory", zap.String("path", path))
		return nil
	}

	if err = load(f); err != nil {
		logger.ErrorStack(err, "load tree failed", zap.String("path", path))
	}
	return err
}
