package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// PayloadVersion is the only catalog file version understood by this build.
const PayloadVersion = "v1"

// Catalog file names inside a catalog directory.
const (
	CardsFile  = "skill_cards.json"
	StagesFile = "stages.json"
	PItemsFile = "p_items.json"
	PIdolsFile = "p_idols.json"
)

// Payload is the envelope of a catalog file.
type Payload[T any] struct {
	Version string `json:"version"`
	Source  string `json:"source"`
	Items   []T    `json:"items"`
}

func (p *Payload[T]) validate(name string) error {
	if p.Version != PayloadVersion {
		return fmt.Errorf("%s: unsupported version %q", name, p.Version)
	}
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("%s: source is required", name)
	}
	return nil
}

// ReadRecords reads every catalog file present in fsys. Missing files are
// treated as empty.
func ReadRecords(fsys fs.FS) (Records, error) {
	var records Records
	cards, err := readPayload[CardRecord](fsys, CardsFile)
	if err != nil {
		return records, err
	}
	stages, err := readPayload[StageRecord](fsys, StagesFile)
	if err != nil {
		return records, err
	}
	items, err := readPayload[PItemRecord](fsys, PItemsFile)
	if err != nil {
		return records, err
	}
	idols, err := readPayload[PIdolRecord](fsys, PIdolsFile)
	if err != nil {
		return records, err
	}
	records.Cards = cards
	records.Stages = stages
	records.PItems = items
	records.PIdols = idols
	return records, nil
}

// LoadFS reads and parses a catalog from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	records, err := ReadRecords(fsys)
	if err != nil {
		return nil, invalidCatalog("read catalog", err)
	}
	return New(records)
}

// LoadDir reads and parses a catalog directory.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

func readPayload[T any](fsys fs.FS, name string) ([]T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var payload Payload[T]
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if err := payload.validate(name); err != nil {
		return nil, err
	}
	return payload.Items, nil
}
