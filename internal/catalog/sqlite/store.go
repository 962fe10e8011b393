// Package sqlite provides a SQLite-backed catalog store. Effect text is
// stored verbatim and parsed when the catalog is loaded.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/stagesim/internal/catalog"
	"github.com/louisbranch/stagesim/internal/catalog/sqlite/migrations"
	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
	"github.com/louisbranch/stagesim/internal/platform/storage/sqlitemigrate"
)

// Store persists catalog records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Import describes one recorded catalog import.
type Import struct {
	Source     string
	Version    string
	Cards      int
	Stages     int
	PItems     int
	PIdols     int
	ImportedAt time.Time
}

// Open opens a SQLite catalog store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path, migrations.FS, "")
	if err != nil {
		return nil, err
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put upserts every record in one transaction and records the import.
func (s *Store) Put(ctx context.Context, source string, records catalog.Records) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errors.New("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range records.Cards {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO skill_cards (
    id, name, rarity, type, plan, source_type, p_idol_id, unlock_plv,
    upgraded, is_unique, force_initial_hand, usage_limit, conditions, cost, effects
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    rarity = excluded.rarity,
    type = excluded.type,
    plan = excluded.plan,
    source_type = excluded.source_type,
    p_idol_id = excluded.p_idol_id,
    unlock_plv = excluded.unlock_plv,
    upgraded = excluded.upgraded,
    is_unique = excluded.is_unique,
    force_initial_hand = excluded.force_initial_hand,
    usage_limit = excluded.usage_limit,
    conditions = excluded.conditions,
    cost = excluded.cost,
    effects = excluded.effects`,
			c.ID, c.Name, c.Rarity, c.Type, c.Plan, c.SourceType, c.PIdolID, c.UnlockPlv,
			c.Upgraded, c.Unique, c.ForceInitialHand, c.Limit, c.Conditions, c.Cost, c.Effects,
		); err != nil {
			return fmt.Errorf("put skill card %d: %w", c.ID, err)
		}
	}
	for _, st := range records.Stages {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO stages (id, name, type, plan, criteria, turn_counts, first_turns, effects)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    type = excluded.type,
    plan = excluded.plan,
    criteria = excluded.criteria,
    turn_counts = excluded.turn_counts,
    first_turns = excluded.first_turns,
    effects = excluded.effects`,
			st.ID, st.Name, st.Type, st.Plan, st.Criteria, st.TurnCounts, st.FirstTurns, st.Effects,
		); err != nil {
			return fmt.Errorf("put stage %d: %w", st.ID, err)
		}
	}
	for _, it := range records.PItems {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO p_items (id, name, rarity, plan, source_type, p_idol_id, unlock_plv, effects)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    rarity = excluded.rarity,
    plan = excluded.plan,
    source_type = excluded.source_type,
    p_idol_id = excluded.p_idol_id,
    unlock_plv = excluded.unlock_plv,
    effects = excluded.effects`,
			it.ID, it.Name, it.Rarity, it.Plan, it.SourceType, it.PIdolID, it.UnlockPlv, it.Effects,
		); err != nil {
			return fmt.Errorf("put p-item %d: %w", it.ID, err)
		}
	}
	for _, id := range records.PIdols {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO p_idols (id, idol_id, title, rarity, plan, recommended_effect)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    idol_id = excluded.idol_id,
    title = excluded.title,
    rarity = excluded.rarity,
    plan = excluded.plan,
    recommended_effect = excluded.recommended_effect`,
			id.ID, id.IdolID, id.Title, id.Rarity, id.Plan, id.RecommendedEffect,
		); err != nil {
			return fmt.Errorf("put p-idol %d: %w", id.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_imports (source, version, cards, stages, p_items, p_idols, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source, catalog.PayloadVersion,
		len(records.Cards), len(records.Stages), len(records.PItems), len(records.PIdols),
		s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return tx.Commit()
}

// Records reads every stored record ordered by id.
func (s *Store) Records(ctx context.Context) (catalog.Records, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Records{}, err
	}
	var out catalog.Records
	var err error
	if out.Cards, err = s.cards(ctx, ""); err != nil {
		return catalog.Records{}, err
	}
	if out.Stages, err = s.stages(ctx, ""); err != nil {
		return catalog.Records{}, err
	}
	if out.PItems, err = s.items(ctx); err != nil {
		return catalog.Records{}, err
	}
	if out.PIdols, err = s.idols(ctx); err != nil {
		return catalog.Records{}, err
	}
	return out, nil
}

// Load reads every record and builds an in-memory catalog from them.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(records)
}

// Card returns one stored card record.
func (s *Store) Card(ctx context.Context, id int) (catalog.CardRecord, error) {
	cards, err := s.cards(ctx, "WHERE id = ?", id)
	if err != nil {
		return catalog.CardRecord{}, err
	}
	if len(cards) == 0 {
		return catalog.CardRecord{}, notFound("skill card", id)
	}
	return cards[0], nil
}

// Stage returns one stored stage record.
func (s *Store) Stage(ctx context.Context, id int) (catalog.StageRecord, error) {
	stages, err := s.stages(ctx, "WHERE id = ?", id)
	if err != nil {
		return catalog.StageRecord{}, err
	}
	if len(stages) == 0 {
		return catalog.StageRecord{}, notFound("stage", id)
	}
	return stages[0], nil
}

// LatestImport returns the most recent import, if any.
func (s *Store) LatestImport(ctx context.Context) (Import, bool, error) {
	var imp Import
	var importedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT source, version, cards, stages, p_items, p_idols, imported_at
FROM catalog_imports ORDER BY id DESC LIMIT 1`).Scan(
		&imp.Source, &imp.Version, &imp.Cards, &imp.Stages, &imp.PItems, &imp.PIdols, &importedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, false, nil
	}
	if err != nil {
		return Import{}, false, fmt.Errorf("latest import: %w", err)
	}
	imp.ImportedAt = time.UnixMilli(importedAt).UTC()
	return imp, true, nil
}

func (s *Store) cards(ctx context.Context, where string, args ...any) ([]catalog.CardRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, rarity, type, plan, source_type, p_idol_id, unlock_plv,
       upgraded, is_unique, force_initial_hand, usage_limit, conditions, cost, effects
FROM skill_cards `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query skill cards: %w", err)
	}
	defer rows.Close()

	var out []catalog.CardRecord
	for rows.Next() {
		var c catalog.CardRecord
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Rarity, &c.Type, &c.Plan, &c.SourceType, &c.PIdolID, &c.UnlockPlv,
			&c.Upgraded, &c.Unique, &c.ForceInitialHand, &c.Limit, &c.Conditions, &c.Cost, &c.Effects,
		); err != nil {
			return nil, fmt.Errorf("scan skill card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) stages(ctx context.Context, where string, args ...any) ([]catalog.StageRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, type, plan, criteria, turn_counts, first_turns, effects
FROM stages `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var out []catalog.StageRecord
	for rows.Next() {
		var st catalog.StageRecord
		if err := rows.Scan(&st.ID, &st.Name, &st.Type, &st.Plan, &st.Criteria, &st.TurnCounts, &st.FirstTurns, &st.Effects); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) items(ctx context.Context) ([]catalog.PItemRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, rarity, plan, source_type, p_idol_id, unlock_plv, effects
FROM p_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query p-items: %w", err)
	}
	defer rows.Close()

	var out []catalog.PItemRecord
	for rows.Next() {
		var it catalog.PItemRecord
		if err := rows.Scan(&it.ID, &it.Name, &it.Rarity, &it.Plan, &it.SourceType, &it.PIdolID, &it.UnlockPlv, &it.Effects); err != nil {
			return nil, fmt.Errorf("scan p-item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) idols(ctx context.Context) ([]catalog.PIdolRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, idol_id, title, rarity, plan, recommended_effect
FROM p_idols ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query p-idols: %w", err)
	}
	defer rows.Close()

	var out []catalog.PIdolRecord
	for rows.Next() {
		var id catalog.PIdolRecord
		if err := rows.Scan(&id.ID, &id.IdolID, &id.Title, &id.Rarity, &id.Plan, &id.RecommendedEffect); err != nil {
			return nil, fmt.Errorf("scan p-idol: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func notFound(kind string, id int) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, fmt.Sprintf("%s %d not found", kind, id), map[string]string{
		"Kind": kind,
		"ID":   fmt.Sprint(id),
	})
}
