// Package backup exports a document collection to a compressed archive and
// restores it into any document store backend.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"freshsave/internal/core/apperror"
	"freshsave/internal/infrastructure/storage/docstore"
	"freshsave/pkg/logger"
)

// FormatVersion is written into every archive.
const FormatVersion = 1

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

const exportPageSize = 100

// Archive is the decoded content of a backup.
type Archive struct {
	Version    int            `json:"version"`
	Collection string         `json:"collection"`
	ExportedAt time.Time      `json:"exportedAt"`
	Documents  []ArchivedItem `json:"documents"`
}

// ArchivedItem is one stored document.
type ArchivedItem struct {
	ID   string          `json:"id"`
	Data docstore.Fields `json:"data"`
}

// ImportMode decides what happens when an archived ID already exists.
type ImportMode int

const (
	// SkipExisting keeps the stored document.
	SkipExisting ImportMode = iota
	// Overwrite replaces the stored document's fields.
	Overwrite
)

// Stats summarizes an import.
type Stats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Exporter writes archives.
type Exporter struct {
	store docstore.Store
	algo  CompressionAlgo
	now   func() time.Time
	log   *logger.Logger
}

// NewExporter creates an exporter. An empty algo means zstd.
func NewExporter(store docstore.Store, algo CompressionAlgo, log *logger.Logger) *Exporter {
	if algo == "" {
		algo = CompressionZstd
	}
	if log == nil {
		log = logger.Default()
	}
	return &Exporter{store: store, algo: algo, now: time.Now, log: log.WithComponent("backup")}
}

// Export writes every document of collectionID to w and returns how many
// were written.
func (e *Exporter) Export(ctx context.Context, collectionID string, w io.Writer) (int, error) {
	archive := Archive{
		Version:    FormatVersion,
		Collection: collectionID,
		ExportedAt: e.now().UTC(),
		Documents:  make([]ArchivedItem, 0),
	}

	for offset := 0; ; {
		page, err := e.store.ListDocuments(ctx, collectionID, docstore.Limit(exportPageSize), docstore.Offset(offset))
		if err != nil {
			return 0, err
		}
		for _, doc := range page.Documents {
			archive.Documents = append(archive.Documents, ArchivedItem{ID: doc.ID, Data: doc.Data})
		}
		offset += len(page.Documents)
		if len(page.Documents) == 0 || offset >= page.Total {
			break
		}
	}

	payload, err := json.Marshal(archive)
	if err != nil {
		return 0, fmt.Errorf("marshal archive: %w", err)
	}

	switch e.algo {
	case CompressionNone:
		_, err = w.Write(payload)
	case CompressionZstd:
		var enc *zstd.Encoder
		enc, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return 0, fmt.Errorf("create zstd encoder: %w", err)
		}
		if _, err = enc.Write(payload); err != nil {
			enc.Close()
			return 0, fmt.Errorf("write archive: %w", err)
		}
		err = enc.Close()
	default:
		return 0, fmt.Errorf("unsupported compression %q", e.algo)
	}
	if err != nil {
		return 0, fmt.Errorf("write archive: %w", err)
	}

	e.log.WithContext(ctx).Infow("collection exported",
		"collection", collectionID,
		"documents", len(archive.Documents),
		"compression", e.algo,
		"raw_bytes", len(payload),
	)
	return len(archive.Documents), nil
}

// Read decodes an archive, detecting zstd compression from the frame magic.
func Read(r io.Reader) (*Archive, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var archive Archive
	d := json.NewDecoder(src)
	d.UseNumber()
	if err := d.Decode(&archive); err != nil {
		return nil, apperror.NewInvalidInput("backup archive is not readable").WithCause(err)
	}
	if archive.Version != FormatVersion {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unsupported backup version %d", archive.Version))
	}
	return &archive, nil
}

// Importer restores archives.
type Importer struct {
	store docstore.Store
	log   *logger.Logger
}

// NewImporter creates an importer.
func NewImporter(store docstore.Store, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Default()
	}
	return &Importer{store: store, log: log.WithComponent("backup")}
}

// Import restores the archive read from r into collectionID. An empty
// collectionID restores into the collection the archive was taken from.
func (i *Importer) Import(ctx context.Context, collectionID string, r io.Reader, mode ImportMode) (Stats, error) {
	archive, err := Read(r)
	if err != nil {
		return Stats{}, err
	}
	if collectionID == "" {
		collectionID = archive.Collection
	}

	var stats Stats
	for _, doc := range archive.Documents {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		_, err := i.store.CreateDocument(ctx, collectionID, doc.ID, doc.Data)
		switch {
		case err == nil:
			stats.Created++
		case isConflict(err) && mode == Overwrite:
			if _, err := i.store.UpdateDocument(ctx, collectionID, doc.ID, doc.Data); err != nil {
				return stats, err
			}
			stats.Updated++
		case isConflict(err):
			stats.Skipped++
		default:
			return stats, err
		}
	}

	i.log.WithContext(ctx).Infow("collection imported",
		"collection", collectionID,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

func isConflict(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == apperror.CodeConflict
}
