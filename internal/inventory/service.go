// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/homestock/internal/export"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
	"github.com/tomtom215/homestock/internal/models"
	"github.com/tomtom215/homestock/internal/store"
	"github.com/tomtom215/homestock/internal/validation"
)

// IdentitySource returns the signed-in identity, or nil.
type IdentitySource interface {
	Current() *models.Identity
}

// PhotoEncoder turns an uploaded image into the stored data URL.
type PhotoEncoder interface {
	DataURL(raw []byte) (string, error)
}

// Options configures a Service.
type Options struct {
	Store         store.Store
	Identity      IdentitySource
	CollectionFor func(uid string) string
	Presenter     Presenter
	Photos        PhotoEncoder

	// WriteTimeout bounds store writes. Zero means no bound.
	WriteTimeout time.Duration
}

// Service runs the inventory operations against the store and the cache.
type Service struct {
	store         store.Store
	identity      IdentitySource
	collectionFor func(string) string
	presenter     Presenter
	photos        PhotoEncoder
	writeTimeout  time.Duration
	now           func() time.Time
	logger        zerolog.Logger

	cache     *Cache
	lifecycle *Lifecycle
}

// NewService wires a service and its subscription lifecycle. base bounds
// the lifetime of live queries.
func NewService(base context.Context, opts Options) *Service {
	p := opts.Presenter
	if p == nil {
		p = nopPresenter{}
	}
	cache := NewCache()
	return &Service{
		store:         opts.Store,
		identity:      opts.Identity,
		collectionFor: opts.CollectionFor,
		presenter:     p,
		photos:        opts.Photos,
		writeTimeout:  opts.WriteTimeout,
		now:           time.Now,
		logger:        logging.WithComponent("inventory"),
		cache:         cache,
		lifecycle:     NewLifecycle(base, opts.Store, cache, p, opts.CollectionFor),
	}
}

// Lifecycle returns the subscription lifecycle; register its
// HandleIdentity with the session provider.
func (s *Service) Lifecycle() *Lifecycle { return s.lifecycle }

// View returns the current view under c.
func (s *Service) View(c Criteria) View { return s.lifecycle.View(c) }

// Suggestions returns the facet values of the whole cache.
func (s *Service) Suggestions() Suggestions { return BuildSuggestions(s.cache.Get()) }

// Item returns a cached item by ID.
func (s *Service) Item(id string) (models.Item, error) {
	it, ok := s.cache.Find(id)
	if !ok {
		return models.Item{}, newError(KindValidation, "get", "Item not found.", ErrItemNotFound)
	}
	return it, nil
}

// NotifySignInFailed reports a failed sign-in to the user.
func (s *Service) NotifySignInFailed(err error) *Error {
	e := NewAuthError(err)
	s.presenter.Notify(e.Notice())
	return e
}

// AddItem validates fields, encodes the optional photo and creates the item.
func (s *Service) AddItem(ctx context.Context, fields models.ItemFields, photo []byte) (models.Item, error) {
	const op = "add"

	id := s.identity.Current()
	if id == nil {
		return models.Item{}, s.fail(op, newError(KindValidation, op, "You must be signed in to add items.", ErrNotSignedIn))
	}

	fields = fields.Normalize()
	if verr := validation.ValidateStruct(&fields); verr != nil {
		return models.Item{}, s.fail(op, newError(KindValidation, op, verr.Error(), verr))
	}

	item := models.Item{CreatedAt: s.now().UTC()}.WithFields(fields)
	if len(photo) > 0 {
		if s.photos == nil {
			return models.Item{}, s.fail(op, newError(KindValidation, op, "Photo uploads are not enabled.", nil))
		}
		url, err := s.photos.DataURL(photo)
		metrics.RecordPhoto(len(url), err)
		if err != nil {
			return models.Item{}, s.fail(op, newError(KindValidation, op, "The photo could not be read.", err))
		}
		item.Photo = url
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	newID, err := s.store.Create(ctx, s.collectionFor(id.UID), item)
	if err != nil {
		return models.Item{}, s.fail(op, newError(KindStoreWrite, op, "Failed to add item. Please try again.", err))
	}
	item.ID = newID

	s.succeed(ctx, op, item, fmt.Sprintf("Item \"%s\" has been added.", item.Name))
	return item, nil
}

// EditItem replaces the five editable fields of a cached item.
func (s *Service) EditItem(ctx context.Context, itemID string, fields models.ItemFields) (models.Item, error) {
	const op = "edit"

	id := s.identity.Current()
	if id == nil {
		return models.Item{}, s.fail(op, newError(KindValidation, op, "You must be signed in to edit items.", ErrNotSignedIn))
	}
	current, ok := s.cache.Find(itemID)
	if !ok {
		return models.Item{}, s.fail(op, newError(KindValidation, op, "Item not found.", ErrItemNotFound))
	}

	fields = fields.Normalize()
	if verr := validation.ValidateStruct(&fields); verr != nil {
		return models.Item{}, s.fail(op, newError(KindValidation, op, verr.Error(), verr))
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.store.Update(ctx, s.collectionFor(id.UID), itemID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Item{}, s.fail(op, newError(KindValidation, op, "Item not found.", ErrItemNotFound))
		}
		return models.Item{}, s.fail(op, newError(KindStoreWrite, op, "Failed to update item.", err))
	}

	updated := current.WithFields(fields)
	s.succeed(ctx, op, updated, fmt.Sprintf("\"%s\" has been updated.", updated.Name))
	return updated, nil
}

// DeleteItem removes a cached item. confirmed must be true.
func (s *Service) DeleteItem(ctx context.Context, itemID string, confirmed bool) (models.Item, error) {
	const op = "delete"

	id := s.identity.Current()
	if id == nil {
		return models.Item{}, s.fail(op, newError(KindValidation, op, "You must be signed in to delete items.", ErrNotSignedIn))
	}
	current, ok := s.cache.Find(itemID)
	if !ok {
		return models.Item{}, s.fail(op, newError(KindValidation, op, "Item not found.", ErrItemNotFound))
	}
	if !confirmed {
		return models.Item{}, newError(KindValidation, op,
			fmt.Sprintf("Are you sure you want to delete/consume \"%s\"? This cannot be undone.", current.Name), ErrConfirmationRequired)
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, s.collectionFor(id.UID), itemID); err != nil {
		return models.Item{}, s.fail(op, newError(KindStoreWrite, op, "Failed to delete item.", err))
	}

	s.succeed(ctx, op, current, fmt.Sprintf("\"%s\" was deleted.", current.Name))
	return current, nil
}

// Export renders the cached items as a CSV file.
func (s *Service) Export() (export.File, error) {
	items := s.cache.Get()
	if len(items) == 0 {
		e := &Error{Kind: KindValidation, Op: "export", Message: "There is no inventory data to export.", Err: ErrNothingToExport}
		s.presenter.Notify(Notice{Level: NoticeInfo, Title: "Info", Message: e.Message})
		return export.File{}, e
	}
	return export.Build(items, s.now()), nil
}

// ExportTo renders the export and writes it to sink.
func (s *Service) ExportTo(ctx context.Context, sink export.Sink) (export.File, string, error) {
	f, err := s.Export()
	if err != nil {
		return f, "", err
	}
	loc, err := sink.Write(context.WithoutCancel(ctx), f)
	metrics.RecordExport(sink.Name(), f.Rows, err)
	if err != nil {
		e := newError(KindStoreWrite, "export", "Failed to export inventory.", err)
		s.logger.Error().Err(err).Str("sink", sink.Name()).Msg("Export failed")
		s.presenter.Notify(e.Notice())
		return f, "", e
	}
	s.logger.Info().Str("sink", sink.Name()).Str("location", loc).Int("rows", f.Rows).Msg("Inventory exported")
	s.presenter.Notify(successNotice("Inventory exported to " + loc + "."))
	return f, loc, nil
}

// writeContext detaches a write from the caller's cancellation.
func (s *Service) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.writeTimeout > 0 {
		return context.WithTimeout(ctx, s.writeTimeout)
	}
	return ctx, func() {}
}

func (s *Service) fail(op string, e *Error) *Error {
	metrics.RecordItemMutation(op, e)
	ev := s.logger.Warn()
	if e.Kind == KindStoreWrite {
		ev = s.logger.Error()
	}
	ev.Err(e.Err).Str("op", op).Str("kind", e.Kind.String()).Msg(e.Message)
	s.presenter.Notify(e.Notice())
	return e
}

func (s *Service) succeed(ctx context.Context, op string, item models.Item, msg string) {
	metrics.RecordItemMutation(op, nil)
	logging.Ctx(ctx).Info().Str("op", op).Str("item_id", item.ID).Msg("Item mutation applied")
	s.presenter.Notify(successNotice(msg))
}
