// Package catalog provides immutable lookups for skill cards, stages,
// p-items and p-idols with their effect text already parsed.
package catalog

import (
	"fmt"
	"slices"
	"sort"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
)

// Provider exposes catalog lookups to the engine and its callers.
type Provider interface {
	Card(id int) (Card, error)
	Stage(id int) (Stage, error)
	Item(id int) (PItem, error)
	Idol(id int) (PIdol, error)
	// Cards returns every card sorted by id.
	Cards() []Card
}

// Catalog is an in-memory Provider.
type Catalog struct {
	cards  map[int]Card
	stages map[int]Stage
	items  map[int]PItem
	idols  map[int]PIdol
	sorted []Card
}

var _ Provider = (*Catalog)(nil)

// New parses records into a catalog. Duplicate ids and unparsable effect
// text are rejected.
func New(records Records) (*Catalog, error) {
	c := &Catalog{
		cards:  make(map[int]Card, len(records.Cards)),
		stages: make(map[int]Stage, len(records.Stages)),
		items:  make(map[int]PItem, len(records.PItems)),
		idols:  make(map[int]PIdol, len(records.PIdols)),
	}
	for _, r := range records.Cards {
		if _, ok := c.cards[r.ID]; ok {
			return nil, invalidCatalog(fmt.Sprintf("duplicate card id %d", r.ID), nil)
		}
		card, err := r.Card()
		if err != nil {
			return nil, invalidCatalog("parse card", err)
		}
		c.cards[r.ID] = card
	}
	for _, r := range records.Stages {
		if _, ok := c.stages[r.ID]; ok {
			return nil, invalidCatalog(fmt.Sprintf("duplicate stage id %d", r.ID), nil)
		}
		stage, err := r.Stage()
		if err != nil {
			return nil, invalidCatalog("parse stage", err)
		}
		c.stages[r.ID] = stage
	}
	for _, r := range records.PItems {
		if _, ok := c.items[r.ID]; ok {
			return nil, invalidCatalog(fmt.Sprintf("duplicate p-item id %d", r.ID), nil)
		}
		item, err := r.PItem()
		if err != nil {
			return nil, invalidCatalog("parse p-item", err)
		}
		c.items[r.ID] = item
	}
	for _, r := range records.PIdols {
		if _, ok := c.idols[r.ID]; ok {
			return nil, invalidCatalog(fmt.Sprintf("duplicate p-idol id %d", r.ID), nil)
		}
		c.idols[r.ID] = r
	}

	c.sorted = make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		c.sorted = append(c.sorted, card)
	}
	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].ID < c.sorted[j].ID })
	return c, nil
}

// Card returns the card with id.
func (c *Catalog) Card(id int) (Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return Card{}, notFound("card", id)
	}
	return card, nil
}

// Stage returns the stage with id.
func (c *Catalog) Stage(id int) (Stage, error) {
	stage, ok := c.stages[id]
	if !ok {
		return Stage{}, notFound("stage", id)
	}
	return stage, nil
}

// Item returns the p-item with id.
func (c *Catalog) Item(id int) (PItem, error) {
	item, ok := c.items[id]
	if !ok {
		return PItem{}, notFound("p-item", id)
	}
	return item, nil
}

// Idol returns the p-idol with id.
func (c *Catalog) Idol(id int) (PIdol, error) {
	idol, ok := c.idols[id]
	if !ok {
		return PIdol{}, notFound("p-idol", id)
	}
	return idol, nil
}

// Cards returns every card sorted by id.
func (c *Catalog) Cards() []Card {
	return slices.Clone(c.sorted)
}

// Stages returns every stage sorted by id.
func (c *Catalog) Stages() []Stage {
	stages := make([]Stage, 0, len(c.stages))
	for _, s := range c.stages {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].ID < stages[j].ID })
	return stages
}

// Items returns every p-item sorted by id.
func (c *Catalog) Items() []PItem {
	items := make([]PItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Idols returns every p-idol sorted by id.
func (c *Catalog) Idols() []PIdol {
	idols := make([]PIdol, 0, len(c.idols))
	for _, idol := range c.idols {
		idols = append(idols, idol)
	}
	sort.Slice(idols, func(i, j int) bool { return idols[i].ID < idols[j].ID })
	return idols
}

func notFound(kind string, id int) error {
	return apperrors.WithMetadata(
		apperrors.CodeNotFound,
		fmt.Sprintf("%s %d not found", kind, id),
		map[string]string{"Kind": kind, "ID": fmt.Sprint(id)},
	)
}

func invalidCatalog(message string, cause error) error {
	if cause == nil {
		return apperrors.WithMetadata(apperrors.CodeInvalidCatalog, message, map[string]string{"Reason": message})
	}
	return apperrors.WrapWithMetadata(apperrors.CodeInvalidCatalog, message, map[string]string{"Reason": cause.Error()}, cause)
}
