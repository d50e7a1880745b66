package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/outbound"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

const (
	snapshotFileMode = 0o644
	snapshotDirMode  = 0o755
	tempFilePattern  = ".auction-*.tmp"
)

// Format selects the snapshot encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Store keeps the lot snapshot in a single file and replaces it atomically on
// every save
type Store struct {
	path   string
	format Format
	logger zerolog.Logger
}

type StoreParams struct {
	Path   string
	Logger zerolog.Logger
}

var _ outbound.SnapshotStore = (*Store)(nil)

// NewStore creates a file store. Paths ending in .toml are written as TOML,
// everything else as JSON.
func NewStore(params StoreParams) (*Store, error) {
	if strings.TrimSpace(params.Path) == "" {
		return nil, errors.New("snapshot path is empty")
	}
	path, err := filepath.Abs(params.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}

	return &Store{
		path:   filepath.Clean(path),
		format: formatForPath(path),
		logger: params.Logger.With().Str("component", "file_store").Str("path", path).Logger(),
	}, nil
}

// Path returns the absolute snapshot location
func (s *Store) Path() string {
	return s.path
}

// Format returns the encoding chosen for the snapshot file
func (s *Store) Format() Format {
	return s.format
}

// Save encodes lots and atomically replaces the snapshot file
func (s *Store) Save(ctx context.Context, lots []lot.Lot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.encode(lots)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	s.logger.Debug().Int("lots", len(lots)).Int("bytes", len(data)).Msg("Snapshot written")
	return nil
}

// Load reads the snapshot. A missing or empty file yields no lots.
func (s *Store) Load(ctx context.Context) ([]lot.Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info().Msg("Snapshot file not found, starting empty")
			return []lot.Lot{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []lot.Lot{}, nil
	}

	records, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrCorruptData, filepath.Base(s.path), err)
	}

	lots := make([]lot.Lot, 0, len(records))
	for _, record := range records {
		l, err := fromSchema(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCorruptData, err)
		}
		lots = append(lots, l)
	}

	return lots, nil
}

func (s *Store) encode(lots []lot.Lot) ([]byte, error) {
	records := make([]lotSchema, 0, len(lots))
	for _, l := range lots {
		records = append(records, toSchema(l))
	}

	switch s.format {
	case FormatTOML:
		doc := tomlSchema{Lots: records}
		doc.applyDefaults()
		return toml.Marshal(doc)
	default:
		data, err := json.MarshalIndent(records, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func (s *Store) decode(data []byte) ([]lotSchema, error) {
	switch s.format {
	case FormatTOML:
		var doc tomlSchema
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if err := doc.validateVersion(); err != nil {
			return nil, err
		}
		return doc.Lots, nil
	default:
		var records []lotSchema
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
}

// writeAtomic writes data to a temp file next to the target and renames it
// over the target so readers never observe a partial snapshot
func (s *Store) writeAtomic(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), snapshotDirMode); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp snapshot file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp snapshot file: %w", err)
	}

	if err := tempFile.Chmod(snapshotFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp snapshot file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp snapshot file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	cleanup = false
	return nil
}

func formatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}
