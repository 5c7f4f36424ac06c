package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	dataFileName string = "data.txt"

	// emptySegment names the directory of an empty device part. It can not
	// collide with a real part since '@' is never part of a port, node or
	// driver.
	emptySegment string = "@"
)

var ErrInvalidPoint = errors.New("invalid measurement point")

type Store interface {
	Append(ctx context.Context, mp domain.MeasurementPoint) error
}

// FileStore appends measurement points to flat text files below root, one
// directory tree per device and day:
//
//	<root>/<driver>/<node>/<port>/<year>/<month>/<day>/data.txt
//
// Empty device parts are stored in a directory named "@".
type FileStore struct {
	root string
	mu   sync.Mutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{
		root: root,
	}
}

func (fs *FileStore) Root() string {
	return fs.root
}

func (fs *FileStore) DirFor(mp domain.MeasurementPoint) string {
	ts := mp.Timestamp.UTC()

	return filepath.Join(
		fs.root,
		segment(mp.Device.Driver()),
		segment(mp.Device.Node()),
		segment(mp.Device.Port()),
		strconv.Itoa(ts.Year()),
		strconv.Itoa(int(ts.Month())),
		strconv.Itoa(ts.Day()),
	)
}

func segment(part string) string {
	if part == "" {
		return emptySegment
	}
	return part
}

func (fs *FileStore) PathFor(mp domain.MeasurementPoint) string {
	return filepath.Join(fs.DirFor(mp), dataFileName)
}

func (fs *FileStore) Append(ctx context.Context, mp domain.MeasurementPoint) error {
	if mp.Device.IsZero() || mp.Data.IsEmpty() {
		return ErrInvalidPoint
	}

	log := logging.GetFromContext(ctx)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := fs.DirFor(mp)
	log.Debug().Str("dir", dir).Msg("creating all parent directories")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dir, dataFileName)
	log.Debug().Str("path", path).Msg("opening data file")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}

	line := mp.Line()
	log.Trace().Str("line", line).Msg("appending line to data file")

	if _, err = f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to data file: %w", err)
	}

	return f.Close()
}
