// Package source supplies raw phone records to the catalog from files,
// Postgres, or a Redis-fronted combination of the two.
package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// DefaultFeedFiles are the scraped feed files a data directory is expected
// to contain.  Missing files are skipped, not fatal.
var DefaultFeedFiles = []string{
	"google_pixel_phones.json",
	"iphone_gsmarena_phones.json",
	"oneplus_phones.json",
	"samsung_major_series_phones.json",
}

// FileSource loads raw phone records from JSON feed files in a directory.
type FileSource struct {
	dir     string
	files   []string
	logger  logging.Logger
	watcher *fsnotify.Watcher
}

// NewFileSource constructs a FileSource over dir.  An empty files list uses
// DefaultFeedFiles.
func NewFileSource(dir string, files []string, logger logging.Logger) *FileSource {
	if len(files) == 0 {
		files = DefaultFeedFiles
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileSource{dir: dir, files: files, logger: logger.Named("filesource")}
}

// Load reads and concatenates every feed file.  A missing or malformed file
// is skipped with a log line so one broken feed cannot take out the rest.
func (s *FileSource) Load(ctx context.Context) ([]catalog.RawPhone, error) {
	var phones []catalog.RawPhone
	for _, name := range s.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Debug("feed file absent", logging.String("file", name))
				continue
			}
			s.logger.Warn("skipping unreadable feed file", logging.String("file", name), logging.Err(err))
			continue
		}

		var batch []catalog.RawPhone
		if err := json.Unmarshal(data, &batch); err != nil {
			s.logger.Warn("skipping malformed feed file", logging.String("file", name), logging.Err(err))
			continue
		}
		phones = append(phones, batch...)
		s.logger.Debug("feed file loaded", logging.String("file", name), logging.Int("phones", len(batch)))
	}
	return phones, nil
}

// Watch starts a filesystem watcher on the data directory and invokes
// onChange whenever a JSON feed file is written, created, removed, or
// renamed.  Call Close to stop watching.
func (s *FileSource) Watch(onChange func()) error {
	if s.watcher != nil {
		return errors.New(errors.CodeInternal, "file source is already watching")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "creating feed watcher")
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return errors.Wrap(err, errors.CodeInternal, "watching feed directory "+s.dir)
	}
	s.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.logger.Info("feed change detected",
					logging.String("file", filepath.Base(event.Name)),
					logging.String("op", event.Op.String()))
				onChange()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("feed watcher error", logging.Err(err))
			}
		}
	}()
	return nil
}

// Close stops the filesystem watcher, if one was started.
func (s *FileSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
