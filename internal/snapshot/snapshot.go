// Package snapshot exports final exchange and agent reports as
// zstd-compressed JSON (.json.zst) and reads them back.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/rickgao/ticket-exchange/internal/model"
	"github.com/rickgao/ticket-exchange/internal/version"
)

// FormatVersion is bumped when the document layout changes.
const FormatVersion = 1

// Kind identifies which report a document carries.
type Kind string

const (
	KindExchange Kind = "exchange"
	KindAgent    Kind = "agent"
)

// ErrUnsupportedVersion is returned for documents from a newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Header describes a document.
type Header struct {
	Format     int       `json:"format"`
	Kind       Kind      `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
	AppVersion string    `json:"app_version"`
}

// Document is the on-disk snapshot. Exactly one report is set.
type Document struct {
	Header   Header                `json:"header"`
	Exchange *model.ExchangeReport `json:"exchange,omitempty"`
	Agent    *model.AgentReport    `json:"agent,omitempty"`
}

// WriteExchange writes an exchange report to path.
func WriteExchange(path string, r model.ExchangeReport) error {
	return write(path, Document{Header: newHeader(KindExchange), Exchange: &r})
}

// WriteAgent writes an agent report to path.
func WriteAgent(path string, r model.AgentReport) error {
	return write(path, Document{Header: newHeader(KindAgent), Agent: &r})
}

func newHeader(kind Kind) Header {
	return Header{
		Format:     FormatVersion,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
		AppVersion: version.String(),
	}
}

// write encodes doc into a temp file next to path and renames it into
// place, so readers never see a partial snapshot.
func write(path string, doc Document) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if err := json.NewEncoder(bw).Encode(doc); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read decodes a snapshot written by WriteExchange or WriteAgent.
func Read(path string) (Document, error) {
	var doc Document

	f, err := os.Open(path)
	if err != nil {
		return doc, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return doc, err
	}
	defer dec.Close()

	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Header.Format > FormatVersion {
		return doc, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Header.Format)
	}
	return doc, nil
}
