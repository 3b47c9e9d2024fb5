package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

// PGCRArchive keeps the raw carnage report bodies on disk, one zstd
// compressed file per instance id. Records are write-once, matching the
// write-once semantics of the persisted activity itself, so an instance
// already on disk is left alone. When archiving is disabled every Store
// is a no-op.
type PGCRArchive struct {
	enabled    bool
	dir        string
	compressor CompressorInterface
	logger     providers.Logger
}

func NewPGCRArchive(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (*PGCRArchive, error) {
	if !conf.Archive.Enabled {
		logger.Infof(providers.TypeApp, "PGCR archive disabled")
		return &PGCRArchive{compressor: compressor, logger: logger}, nil
	}
	if err := os.MkdirAll(conf.Archive.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create archive dir: %w", err)
	}
	logger.Infof(providers.TypeApp, "PGCR archive at %s", conf.Archive.Dir)
	return &PGCRArchive{
		enabled:    true,
		dir:        conf.Archive.Dir,
		compressor: compressor,
		logger:     logger,
	}, nil
}

func (a *PGCRArchive) path(instanceID string) string {
	return filepath.Join(a.dir, instanceID+".json.zst")
}

// Store writes one raw report. The write goes through a temp file and a
// rename so a crash never leaves a truncated archive entry behind.
func (a *PGCRArchive) Store(instanceID string, raw []byte) error {
	if !a.enabled {
		return nil
	}

	target := a.path(instanceID)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	data, err := a.compressor.Compress(raw)
	if err != nil {
		return err
	}

	tmp := target + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, target)
}

// Load reads one archived report back, primarily for offline inspection
// and tests.
func (a *PGCRArchive) Load(instanceID string) ([]byte, error) {
	if !a.enabled {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(a.path(instanceID))
	if err != nil {
		return nil, err
	}
	return a.compressor.Decompress(data)
}
