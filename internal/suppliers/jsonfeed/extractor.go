package jsonfeed

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// maxLineSize bounds a single feed line.
const maxLineSize = 8 << 20

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// line is one record of a feed file.
type line struct {
	Key        string         `json:"key"`
	ModifiedAt *time.Time     `json:"modified_at,omitempty"`
	Payload    map[string]any `json:"payload"`
}

// Extractor reads a feed directory.
type Extractor struct {
	cfg *Config
}

// NewExtractor adapts ParseConfig to driven.ExtractorFactory.
func NewExtractor(desc domain.SupplierDescriptor) (driven.Extractor, error) {
	cfg, err := ParseConfig(desc)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// SupplierID returns the configured supplier ID.
func (e *Extractor) SupplierID() string {
	return e.cfg.SupplierID
}

// Capabilities returns the extractor capabilities. Feeds lists the kinds
// present in the directory, or only base if it cannot be read.
func (e *Extractor) Capabilities() driven.ExtractorCapabilities {
	kinds, err := e.kinds()
	if err != nil {
		kinds = []domain.RecordKind{domain.KindBase}
	}
	return driven.ExtractorCapabilities{
		SupportsIncremental: true,
		SupportsValidation:  true,
		Feeds:               kinds,
	}
}

// Validate checks the directory and its base feed exist.
func (e *Extractor) Validate(_ context.Context) error {
	_, err := e.kinds()
	return err
}

// Extract opens a stream over every feed file, base first.
func (e *Extractor) Extract(_ context.Context, opts driven.ExtractOptions) (driven.RecordStream, error) {
	kinds, err := e.kinds()
	if err != nil {
		return nil, err
	}
	return &stream{
		cfg:   e.cfg,
		kinds: kinds,
		since: opts.Since,
	}, nil
}

// Close is a no-op; streams close their own files.
func (e *Extractor) Close() error {
	return nil
}

// kinds lists the feed kinds in the directory, base first then sorted.
func (e *Extractor) kinds() ([]domain.RecordKind, error) {
	entries, err := os.ReadDir(e.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: supplier %s: reading feed directory: %w", domain.ErrConfig, e.cfg.SupplierID, err)
	}

	var side []string
	hasBase := false
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, FileExt) {
			continue
		}
		kind := strings.TrimSuffix(name, FileExt)
		if domain.RecordKind(kind).IsBase() {
			hasBase = true
			continue
		}
		side = append(side, kind)
	}
	if !hasBase {
		return nil, fmt.Errorf("%w: supplier %s: %s has no base%s", domain.ErrConfig, e.cfg.SupplierID, e.cfg.Dir, FileExt)
	}
	sort.Strings(side)

	kinds := make([]domain.RecordKind, 0, len(side)+1)
	kinds = append(kinds, domain.KindBase)
	for _, k := range side {
		kinds = append(kinds, domain.RecordKind(k))
	}
	return kinds, nil
}

// ==================== Stream ====================

// stream reads feed files one after another. Undecodable lines become
// records carrying Err. A stream whose reader failed keeps returning the
// same error.
type stream struct {
	cfg   *Config
	kinds []domain.RecordKind
	since *time.Time
	err   error

	current int
	file    *os.File
	scanner *bufio.Scanner
	lineNo  int
}

// Next returns up to PageSize records, or io.EOF when every file is read.
// A page never spans two files.
func (s *stream) Next(ctx context.Context) ([]domain.RawRecord, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.err != nil {
			return nil, s.err
		}
		if s.current >= len(s.kinds) {
			return nil, io.EOF
		}
		if s.scanner == nil {
			if err := s.open(); err != nil {
				return nil, err
			}
		}

		page, err := s.readPage()
		if err != nil {
			s.closeFile()
			s.err = err
			return nil, err
		}
		if len(page) > 0 {
			return page, nil
		}

		// File exhausted
		s.closeFile()
		s.current++
	}
}

func (s *stream) open() error {
	path := filepath.Join(s.cfg.Dir, string(s.kinds[s.current])+FileExt)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening feed %s: %w", path, err)
	}

	s.file = f
	s.scanner = bufio.NewScanner(f)
	s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.lineNo = 0
	logger.Debug("jsonfeed: %s: reading %s", s.cfg.SupplierID, path)
	return nil
}

func (s *stream) readPage() ([]domain.RawRecord, error) {
	kind := s.kinds[s.current]
	page := make([]domain.RawRecord, 0, s.cfg.PageSize)

	for len(page) < s.cfg.PageSize && s.scanner.Scan() {
		s.lineNo++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}

		var l line
		if err := json.Unmarshal([]byte(text), &l); err != nil {
			logger.Warn("jsonfeed: %s: %s%s line %d is not valid JSON", s.cfg.SupplierID, kind, FileExt, s.lineNo)
			page = append(page, domain.RawRecord{
				SupplierID: s.cfg.SupplierID,
				Kind:       kind,
				Endpoint:   string(kind) + FileExt,
				Err:        fmt.Errorf("%w: %s%s line %d: %w", domain.ErrValidation, kind, FileExt, s.lineNo, err),
			})
			continue
		}
		if l.ModifiedAt != nil && s.since != nil && l.ModifiedAt.Before(*s.since) {
			continue
		}

		rec := domain.RawRecord{
			SupplierID:     s.cfg.SupplierID,
			Kind:           kind,
			Endpoint:       string(kind) + FileExt,
			CorrelationKey: strings.TrimSpace(l.Key),
			Payload:        l.Payload,
		}
		if l.ModifiedAt != nil {
			rec.ModifiedAt = *l.ModifiedAt
		}
		page = append(page, rec)
	}

	if err := s.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: %s%s line %d: line too long", domain.ErrValidation, kind, FileExt, s.lineNo+1)
		}
		return nil, fmt.Errorf("reading %s%s: %w", kind, FileExt, err)
	}
	return page, nil
}

func (s *stream) closeFile() {
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = nil
	s.scanner = nil
}
