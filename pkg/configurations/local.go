package configurations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/utils"
)

// LocalRepository resolves coordinates against a sequence of
// local repositories using the maven directory layout.
// The first repository providing an artifact wins.
type LocalRepository struct {
	fs    vfs.FileSystem
	roots []string
}

var _ Resolver = (*LocalRepository)(nil)

func NewLocalRepository(roots []string, fss ...vfs.FileSystem) *LocalRepository {
	return &LocalRepository{
		fs:    utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
		roots: roots,
	}
}

func (l *LocalRepository) Resolve(ctx context.Context, slot string, coordinates []string) ([]string, error) {
	var result []string
	for _, c := range coordinates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := l.lookup(c)
		if err != nil {
			return nil, &UnresolvableDependencyError{Slot: slot, Coordinate: c, Err: err}
		}
		result = append(result, file)
	}
	return result, nil
}

func (l *LocalRepository) lookup(coordinate string) (string, error) {
	c, err := ParseCoordinate(coordinate)
	if err != nil {
		return "", err
	}
	for _, root := range l.roots {
		p := filepath.Join(root, filepath.FromSlash(c.Path()))
		fi, err := l.fs.Stat(p)
		if err != nil {
			if errors.Is(err, vfs.ErrNotExist) {
				continue
			}
			return "", err
		}
		if fi.IsDir() {
			return "", fmt.Errorf("%s is a directory", p)
		}
		log.Debug("found {{coordinate}} in {{repository}}", "coordinate", coordinate, "repository", root)
		return p, nil
	}
	return "", fmt.Errorf("artifact not found in %d repositories", len(l.roots))
}
