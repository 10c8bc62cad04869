// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/homestock/internal/export"
	"github.com/tomtom215/homestock/internal/models"
	"github.com/tomtom215/homestock/internal/store"
)

type fakePhotos struct{ err error }

func (f fakePhotos) DataURL(raw []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "data:image/jpeg;base64,AAAA", nil
}

type memSink struct {
	files []export.File
	err   error
}

func (m *memSink) Name() string { return "memory" }

func (m *memSink) Write(_ context.Context, f export.File) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files = append(m.files, f)
	return "mem://" + f.Name, nil
}

type serviceFixture struct {
	svc       *Service
	store     *store.MemoryStore
	presenter *recordingPresenter
	identity  *staticIdentity
}

// newSignedInService returns a service subscribed as u1 with an applied
// empty snapshot.
func newSignedInService(t *testing.T) *serviceFixture {
	t.Helper()
	st := store.NewMemoryStore()
	p := &recordingPresenter{}
	ident := &staticIdentity{}
	svc := NewService(context.Background(), Options{
		Store:         st,
		Identity:      ident,
		CollectionFor: collectionFor,
		Presenter:     p,
		Photos:        fakePhotos{},
	})
	t.Cleanup(func() {
		svc.Lifecycle().Unsubscribe()
		_ = st.Close()
	})

	id := &models.Identity{UID: "u1", Anonymous: true}
	ident.set(id)
	svc.Lifecycle().HandleIdentity(id)
	eventually(t, "initial snapshot", func() bool { return svc.cache.Loaded() })
	return &serviceFixture{svc: svc, store: st, presenter: p, identity: ident}
}

func (f *serviceFixture) waitForItems(t *testing.T, n int) {
	t.Helper()
	eventually(t, "cache size", func() bool { return f.svc.cache.Len() == n })
}

func TestService_AddEditDelete(t *testing.T) {
	f := newSignedInService(t)
	ctx := context.Background()

	added, err := f.svc.AddItem(ctx, models.ItemFields{
		Name: "  Milk ", Category: "Food", Room: "Kitchen", ExpirationDate: "2025-01-05",
	}, []byte("jpeg"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if added.ID == "" || added.Name != "Milk" || added.CreatedAt.IsZero() || added.Photo == "" {
		t.Errorf("added = %+v", added)
	}
	if got := f.presenter.lastNotice().Message; got != `Item "Milk" has been added.` {
		t.Errorf("notice = %q", got)
	}
	f.waitForItems(t, 1)

	if got := Filter(f.svc.cache.Get(), Criteria{Room: "Kitchen"}); len(got) != 1 {
		t.Errorf("room=Kitchen: %d items", len(got))
	}
	if got := Filter(f.svc.cache.Get(), Criteria{Room: "Garage"}); len(got) != 0 {
		t.Errorf("room=Garage: %d items", len(got))
	}

	edited, err := f.svc.EditItem(ctx, added.ID, models.ItemFields{Name: "Skim milk", Category: "", Room: "Kitchen", ExpirationDate: "2025-01-05"})
	if err != nil {
		t.Fatalf("EditItem: %v", err)
	}
	if edited.ExpirationDate != "" || edited.Photo != added.Photo || !edited.CreatedAt.Equal(added.CreatedAt) {
		t.Errorf("edited = %+v", edited)
	}
	eventually(t, "edit pushed", func() bool {
		it, ok := f.svc.cache.Find(added.ID)
		return ok && it.Name == "Skim milk" && it.ExpirationDate == ""
	})
	if got := f.presenter.lastNotice().Message; got != `"Skim milk" has been updated.` {
		t.Errorf("notice = %q", got)
	}

	_, err = f.svc.DeleteItem(ctx, added.ID, false)
	if !errors.Is(err, ErrConfirmationRequired) || !strings.Contains(err.(*Error).Message, "Skim milk") {
		t.Errorf("unconfirmed delete: %v", err)
	}
	if f.svc.cache.Len() != 1 {
		t.Fatal("unconfirmed delete removed the item")
	}

	if _, err := f.svc.DeleteItem(ctx, added.ID, true); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	f.waitForItems(t, 0)
	if got := f.presenter.lastNotice().Message; got != `"Skim milk" was deleted.` {
		t.Errorf("notice = %q", got)
	}
	if v := f.svc.View(Criteria{}); !v.CacheEmpty {
		t.Error("view not empty after delete")
	}
}

func TestService_AddValidation(t *testing.T) {
	f := newSignedInService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		fields models.ItemFields
		photo  []byte
		photos PhotoEncoder
	}{
		{"blank name", models.ItemFields{Name: "   "}, nil, nil},
		{"bad date", models.ItemFields{Name: "Milk", Category: "food", ExpirationDate: "tomorrow"}, nil, nil},
		{"unreadable photo", models.ItemFields{Name: "Milk"}, []byte("x"), fakePhotos{err: errors.New("decode")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.photos != nil {
				f.svc.photos = tt.photos
				defer func() { f.svc.photos = fakePhotos{} }()
			}
			_, err := f.svc.AddItem(ctx, tt.fields, tt.photo)
			if KindOf(err) != KindValidation {
				t.Errorf("error = %v, want validation", err)
			}
		})
	}
	if f.svc.cache.Len() != 0 {
		t.Error("invalid add reached the store")
	}
}

func TestService_NonFoodDropsExpirationOnAdd(t *testing.T) {
	f := newSignedInService(t)
	it, err := f.svc.AddItem(context.Background(), models.ItemFields{Name: "Drill", Category: "Tools", ExpirationDate: "2025-01-05"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if it.ExpirationDate != "" {
		t.Errorf("expiration kept for non-food: %q", it.ExpirationDate)
	}
}

func TestService_NotSignedIn(t *testing.T) {
	f := newSignedInService(t)
	f.identity.set(nil)

	_, err := f.svc.AddItem(context.Background(), models.ItemFields{Name: "Milk"}, nil)
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("error = %v", err)
	}
	if got := f.presenter.lastNotice().Message; got != "You must be signed in to add items." {
		t.Errorf("notice = %q", got)
	}
}

func TestService_UnknownItem(t *testing.T) {
	f := newSignedInService(t)
	ctx := context.Background()

	if _, err := f.svc.EditItem(ctx, "missing", models.ItemFields{Name: "x"}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("edit: %v", err)
	}
	if _, err := f.svc.DeleteItem(ctx, "missing", true); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("delete: %v", err)
	}
	if _, err := f.svc.Item("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("get: %v", err)
	}
}

// ctxRecordingStore reports the context state each Create call observed.
type ctxRecordingStore struct {
	*store.MemoryStore
	createErr chan error
}

func (c *ctxRecordingStore) Create(ctx context.Context, collection string, item models.Item) (string, error) {
	c.createErr <- ctx.Err()
	return c.MemoryStore.Create(ctx, collection, item)
}

func TestService_WritesOutliveCaller(t *testing.T) {
	st := &ctxRecordingStore{MemoryStore: store.NewMemoryStore(), createErr: make(chan error, 1)}
	ident := &staticIdentity{}
	svc := NewService(context.Background(), Options{
		Store:         st,
		Identity:      ident,
		CollectionFor: collectionFor,
		Presenter:     &recordingPresenter{},
	})
	t.Cleanup(func() {
		svc.Lifecycle().Unsubscribe()
		_ = st.Close()
	})
	ident.set(&models.Identity{UID: "u1", Anonymous: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.AddItem(ctx, models.ItemFields{Name: "Milk"}, nil); err != nil {
		t.Fatalf("AddItem with canceled caller: %v", err)
	}
	if err := <-st.createErr; err != nil {
		t.Errorf("store saw ctx error %v", err)
	}
}

func TestService_StoreWriteFailure(t *testing.T) {
	f := newSignedInService(t)
	_ = f.store.Close()

	_, err := f.svc.AddItem(context.Background(), models.ItemFields{Name: "Milk"}, nil)
	if KindOf(err) != KindStoreWrite || !errors.Is(err, store.ErrClosed) {
		t.Fatalf("error = %v", err)
	}
	if got := f.presenter.lastNotice().Message; got != "Failed to add item. Please try again." {
		t.Errorf("notice = %q", got)
	}
}

func TestService_Export(t *testing.T) {
	f := newSignedInService(t)
	ctx := context.Background()

	if _, err := f.svc.Export(); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("empty export: %v", err)
	}
	if n := f.presenter.lastNotice(); n.Level != NoticeInfo || n.Message != "There is no inventory data to export." {
		t.Errorf("notice = %+v", n)
	}

	for _, name := range []string{"Milk", `Bolts "M6"`} {
		if _, err := f.svc.AddItem(ctx, models.ItemFields{Name: name}, nil); err != nil {
			t.Fatal(err)
		}
	}
	f.waitForItems(t, 2)

	file, err := f.svc.Export()
	if err != nil {
		t.Fatal(err)
	}
	if file.Rows != 2 || !strings.Contains(string(file.Data), `"Bolts ""M6"""`) {
		t.Errorf("export = %d rows\n%s", file.Rows, file.Data)
	}

	sink := &memSink{}
	_, loc, err := f.svc.ExportTo(ctx, sink)
	if err != nil || len(sink.files) != 1 || !strings.HasPrefix(loc, "mem://home-inventory-") {
		t.Errorf("ExportTo: loc=%q err=%v files=%d", loc, err, len(sink.files))
	}

	if _, _, err := f.svc.ExportTo(ctx, &memSink{err: errors.New("disk full")}); KindOf(err) != KindStoreWrite {
		t.Errorf("failing sink: %v", err)
	}
}

func TestService_SuggestionsFromWholeCache(t *testing.T) {
	f := newSignedInService(t)
	ctx := context.Background()
	for _, fl := range []models.ItemFields{
		{Name: "Milk", Room: "Kitchen"},
		{Name: "Drill", Room: "Garage"},
		{Name: "Saw", Room: "Garage"},
	} {
		if _, err := f.svc.AddItem(ctx, fl, nil); err != nil {
			t.Fatal(err)
		}
	}
	f.waitForItems(t, 3)

	v := f.svc.View(Criteria{Room: "Kitchen"})
	if len(v.Items) != 1 || len(v.Suggestions.Rooms) != 2 {
		t.Errorf("items = %d, rooms = %v", len(v.Items), v.Suggestions.Rooms)
	}
	if got := f.svc.Suggestions().Rooms; len(got) != 2 || got[0] != "Garage" {
		t.Errorf("Suggestions().Rooms = %v", got)
	}
}

func TestService_NotifySignInFailed(t *testing.T) {
	f := newSignedInService(t)
	e := f.svc.NotifySignInFailed(errors.New("boom"))
	if e.Kind != KindAuth || f.presenter.lastNotice().Message != "Could not sign in to save your data." {
		t.Errorf("error = %v, notice = %+v", e, f.presenter.lastNotice())
	}
}
