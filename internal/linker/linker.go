// Package linker rewrites content items as they are saved and keeps the
// citation index current.
package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stronganchortech/bible-linker/internal/content"
	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/transform"
)

// ErrReentrantSave is returned when an item is saved again while its own
// save is still in progress, as happens when writing the rewritten body
// back triggers another save.
var ErrReentrantSave = errors.New("save already in progress for item")

// Store is the persistence the service needs.
type Store interface {
	Put(ctx context.Context, item content.Item) error
	SetCitations(ctx context.Context, itemID string, refs []reference.Canonical) error
}

// Settings supplies the rewrite configuration and the content types that
// are linked. It is read once per save.
type Settings interface {
	Linking() transform.Config
	Handles(contentType string) bool
}

// Outcome describes what a save did.
type Outcome struct {
	Item    content.Item `json:"item"`
	Changed bool         `json:"changed"`
	Links   int          `json:"links"`
	Skipped bool         `json:"skipped"`
}

type Service struct {
	Store    Store
	Rewriter *transform.Rewriter
	Settings Settings
	Logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// Save persists item. Items of a handled type are rewritten first; the
// rewritten body is written back only when it differs from what was saved.
// A save of an item whose save is already running returns ErrReentrantSave
// and writes nothing.
func (s *Service) Save(ctx context.Context, item content.Item) (Outcome, error) {
	if !s.enter(item.ID) {
		s.logger().Debug("suppressed re-entrant save", "id", item.ID)
		return Outcome{Item: item, Skipped: true}, fmt.Errorf("%w: %s", ErrReentrantSave, item.ID)
	}
	defer s.leave(item.ID)

	if err := s.Store.Put(ctx, item); err != nil {
		return Outcome{Item: item}, err
	}
	if !s.Settings.Handles(item.Type) {
		return Outcome{Item: item, Skipped: true}, nil
	}

	res, err := s.Rewriter.Rewrite(item.Body, s.Settings.Linking())
	if err != nil {
		// The stored body is the original; only linking failed.
		s.logger().Warn("rewrite failed, keeping original content", "id", item.ID, "error", err)
		return Outcome{Item: item}, fmt.Errorf("rewrite item %s: %w", item.ID, err)
	}

	out := Outcome{Item: item, Links: res.Links}
	if res.Changed {
		out.Item.Body = res.HTML
		if err := s.Store.Put(ctx, out.Item); err != nil {
			return Outcome{Item: item}, fmt.Errorf("write back item %s: %w", item.ID, err)
		}
		out.Changed = true
	}
	// Cited covers links made on earlier saves as well as this one.
	if err := s.Store.SetCitations(ctx, item.ID, res.Cited); err != nil {
		return out, err
	}

	s.logger().Info("saved item", "id", item.ID, "type", item.Type, "links", res.Links, "changed", out.Changed)
	return out, nil
}

func (s *Service) enter(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[string]bool)
	}
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *Service) leave(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
