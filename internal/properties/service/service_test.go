package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/properties/repository"
	"rental_portal_backend/internal/properties/transport"
	"rental_portal_backend/internal/storage"
	"rental_portal_backend/platform/apperr"
	"rental_portal_backend/platform/logger"
)

type fakeRepo struct {
	mu         sync.Mutex
	properties map[uuid.UUID]repository.Property
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{properties: make(map[uuid.UUID]repository.Property)}
}

var _ Repository = (*fakeRepo)(nil)

func (f *fakeRepo) Create(_ context.Context, p repository.Property) (repository.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	f.properties[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return repository.Property{}, apperr.NotFound("property not found")
	}
	return p, nil
}

func (f *fakeRepo) Update(_ context.Context, p repository.Property) (repository.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.properties[p.ID]; !ok {
		return repository.Property{}, apperr.NotFound("property not found")
	}
	p.UpdatedAt = time.Now()
	f.properties[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok || p.OwnerID != ownerID {
		return apperr.NotFound("property not found")
	}
	delete(f.properties, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Property, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []repository.Property
	for _, p := range f.properties {
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		if params.OwnerID != "" && p.OwnerID != params.OwnerID {
			continue
		}
		if params.City != "" && !strings.EqualFold(p.City, params.City) {
			continue
		}
		if params.MinPriceCents != nil && p.PriceCents < *params.MinPriceCents {
			continue
		}
		if params.MaxPriceCents != nil && p.PriceCents > *params.MaxPriceCents {
			continue
		}
		if params.MinBedrooms != nil && p.Bedrooms < *params.MinBedrooms {
			continue
		}
		if params.PetsAllowed != nil && p.PetsAllowed != *params.PetsAllowed {
			continue
		}
		matched = append(matched, p)
	}
	return matched, len(matched), nil
}

// fakeStore is an in-memory storage.Service.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

var _ storage.Service = (*fakeStore)(nil)

func (f *fakeStore) GenerateUploadURL(_ context.Context, _, folder, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	key := folder + "/" + fileName
	return &storage.PresignedURL{
		URL:       "https://storage.test/upload/" + key,
		FileKey:   key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *fakeStore) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:       "https://storage.test/download/" + fileKey,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (f *fakeStore) DownloadFile(_ context.Context, _, fileKey string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[fileKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", fileKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) DeleteObject(_ context.Context, _, fileKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, fileKey)
	f.deleted = append(f.deleted, fileKey)
	return nil
}

func (f *fakeStore) EnsureBucketExists(context.Context, string) error { return nil }
func (f *fakeStore) ValidateContentType(string) error                 { return nil }
func (f *fakeStore) ValidateFileSize(int64) error                     { return nil }

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

func newTestService() (*Service, *fakeRepo, *fakeStore, *recordingBus) {
	repo := newFakeRepo()
	store := newFakeStore()
	bus := &recordingBus{}
	svc := New(repo, store, "listing-photos", bus, "https://rentals.test", logger.New("test"))
	return svc, repo, store, bus
}

func validCreate(publish bool) transport.CreatePropertyRequest {
	return transport.CreatePropertyRequest{
		Title:      "Bright 2BR near the park",
		Address:    "12 Elm Street",
		City:       "Rotterdam",
		PriceCents: 145000,
		Bedrooms:   2,
		Publish:    publish,
	}
}

func TestCreatePublishedListingEmitsEvent(t *testing.T) {
	svc, _, _, bus := newTestService()

	created, err := svc.Create(context.Background(), "owner-1", validCreate(true))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Status != repository.StatusListed {
		t.Fatalf("expected listed status, got %s", created.Status)
	}
	if bus.count("properties.property.listed") != 1 {
		t.Fatalf("expected one listed event")
	}
}

func TestCreateDraftDoesNotEmitEvent(t *testing.T) {
	svc, _, _, bus := newTestService()

	created, err := svc.Create(context.Background(), "owner-1", validCreate(false))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Status != repository.StatusDraft {
		t.Fatalf("expected draft status, got %s", created.Status)
	}
	if bus.count("properties.property.listed") != 0 {
		t.Fatalf("expected no listed event for drafts")
	}
}

func TestDraftHiddenFromOtherViewers(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(false))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(ctx, "owner-1", created.ID); err != nil {
		t.Fatalf("owner should see own draft: %v", err)
	}
	_, err = svc.Get(ctx, "stranger", created.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
	_, err = svc.Get(ctx, "", created.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for anonymous, got %v", err)
	}
}

func TestUpdatePublishTransitionEmitsEvent(t *testing.T) {
	svc, _, _, bus := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(false))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	listed := repository.StatusListed
	updated, err := svc.Update(ctx, "owner-1", created.ID, transport.UpdatePropertyRequest{Status: &listed})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != repository.StatusListed {
		t.Fatalf("expected listed status, got %s", updated.Status)
	}
	if bus.count("properties.property.listed") != 1 {
		t.Fatalf("expected one listed event after publish")
	}

	archived := repository.StatusArchived
	if _, err := svc.Update(ctx, "owner-1", created.ID, transport.UpdatePropertyRequest{Status: &archived}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if bus.count("properties.property.unlisted") != 1 {
		t.Fatalf("expected one unlisted event after archive")
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(true))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	title := "Hijacked"
	_, err = svc.Update(ctx, "owner-2", created.ID, transport.UpdatePropertyRequest{Title: &title})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestConfirmPhotoUploadAttachesAndRejectsDuplicates(t *testing.T) {
	svc, _, store, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(true))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	store.objects["owner-1/photo1.jpg"] = []byte("not a real jpeg")

	confirmed, err := svc.ConfirmPhotoUpload(ctx, "owner-1", created.ID, transport.ConfirmPhotoUploadRequest{
		FileKey:     "owner-1/photo1.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   15,
	})
	if err != nil {
		t.Fatalf("ConfirmPhotoUpload returned error: %v", err)
	}
	if len(confirmed.Photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(confirmed.Photos))
	}
	if confirmed.Photos[0].Position != 0 {
		t.Fatalf("expected position 0, got %d", confirmed.Photos[0].Position)
	}
	// Garbage bytes carry no EXIF; metadata stays empty but the attach succeeds.
	if confirmed.Photos[0].TakenAt != nil {
		t.Fatalf("expected no EXIF timestamp for garbage data")
	}

	_, err = svc.ConfirmPhotoUpload(ctx, "owner-1", created.ID, transport.ConfirmPhotoUploadRequest{
		FileKey:     "owner-1/photo1.jpg",
		ContentType: "image/jpeg",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate file key, got %v", err)
	}
}

func TestDeletePhotoReindexesPositions(t *testing.T) {
	svc, _, store, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(true))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for _, key := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		store.objects[key] = []byte("x")
		if _, err := svc.ConfirmPhotoUpload(ctx, "owner-1", created.ID, transport.ConfirmPhotoUploadRequest{
			FileKey:     key,
			ContentType: "image/jpeg",
		}); err != nil {
			t.Fatalf("ConfirmPhotoUpload(%s) returned error: %v", key, err)
		}
	}

	updated, err := svc.DeletePhoto(ctx, "owner-1", created.ID, "b.jpg")
	if err != nil {
		t.Fatalf("DeletePhoto returned error: %v", err)
	}
	if len(updated.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(updated.Photos))
	}
	if updated.Photos[0].FileKey != "a.jpg" || updated.Photos[0].Position != 0 {
		t.Fatalf("unexpected first photo: %+v", updated.Photos[0])
	}
	if updated.Photos[1].FileKey != "c.jpg" || updated.Photos[1].Position != 1 {
		t.Fatalf("unexpected second photo: %+v", updated.Photos[1])
	}
	if len(store.deleted) != 1 || store.deleted[0] != "b.jpg" {
		t.Fatalf("expected object b.jpg deleted, got %v", store.deleted)
	}
}

func TestListFiltersAndPaginationDefaults(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cheap := validCreate(true)
	cheap.PriceCents = 90000
	if _, err := svc.Create(ctx, "owner-1", cheap); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	expensive := validCreate(true)
	expensive.PriceCents = 250000
	if _, err := svc.Create(ctx, "owner-2", expensive); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(ctx, "owner-3", validCreate(false)); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	maxPrice := int64(100000)
	result, err := svc.List(ctx, transport.ListPropertiesRequest{MaxPrice: &maxPrice})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 match, got %d", result.Total)
	}
	if result.Page != 1 || result.PageSize != defaultPageSize {
		t.Fatalf("expected pagination defaults, got page=%d size=%d", result.Page, result.PageSize)
	}
}

func TestShareQREncodesListingURL(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validCreate(true))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	png, err := svc.ShareQR(ctx, "", created.ID)
	if err != nil {
		t.Fatalf("ShareQR returned error: %v", err)
	}
	if len(png) == 0 {
		t.Fatalf("expected PNG bytes")
	}
	// PNG magic header.
	if !bytes.HasPrefix(png, []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Fatalf("expected PNG header, got %x", png[:4])
	}

	want := "https://rentals.test/properties/" + created.ID.String()
	if got := svc.ShareURL(created.ID); got != want {
		t.Fatalf("expected share URL %q, got %q", want, got)
	}
}

func TestDecodePhotoMetadataToleratesGarbage(t *testing.T) {
	if meta := decodePhotoMetadata(strings.NewReader("definitely not an image")); meta != nil {
		t.Fatalf("expected nil metadata for garbage input, got %+v", meta)
	}
}
