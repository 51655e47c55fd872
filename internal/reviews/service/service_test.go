package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/reviews/repository"
	"rental_portal_backend/internal/reviews/transport"
	"rental_portal_backend/platform/apperr"
)

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]repository.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: make(map[uuid.UUID]repository.Review)}
}

var _ Repository = (*fakeRepo)(nil)

func (f *fakeRepo) Create(_ context.Context, review repository.Review) (repository.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.AddressKey == review.AddressKey && existing.ReviewerID == review.ReviewerID {
			return repository.Review{}, apperr.Conflict("address already reviewed by this user")
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = review
	return review, nil
}

func (f *fakeRepo) ListByAddress(_ context.Context, addressKey string) ([]repository.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []repository.Review
	for _, review := range f.reviews {
		if review.AddressKey == addressKey {
			matched = append(matched, review)
		}
	}
	return matched, nil
}

func (f *fakeRepo) GetAggregate(_ context.Context, addressKey string) (repository.Aggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg := repository.Aggregate{AddressKey: addressKey}
	var ratingSum, landlordSum, landlordCount int
	for _, review := range f.reviews {
		if review.AddressKey != addressKey {
			continue
		}
		agg.ReviewCount++
		ratingSum += review.Rating
		if review.LandlordRating > 0 {
			landlordSum += review.LandlordRating
			landlordCount++
		}
	}
	if agg.ReviewCount > 0 {
		agg.AverageRating = float64(ratingSum) / float64(agg.ReviewCount)
	}
	if landlordCount > 0 {
		agg.AverageLandlordRate = float64(landlordSum) / float64(landlordCount)
	}
	return agg, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID, reviewerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok || review.ReviewerID != reviewerID {
		return apperr.NotFound("review not found")
	}
	delete(f.reviews, id)
	return nil
}

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

func TestAddressKeyNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12 Elm Street, Rotterdam", "12-elm-street-rotterdam"},
		{"  12  ELM   street,  Rotterdam ", "12-elm-street-rotterdam"},
		{"12 Elm St.", "12-elm-st"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := AddressKey(tc.in); got != tc.want {
			t.Fatalf("AddressKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSubmitAndAggregateAcrossSpellings(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, bus)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "tenant-1", transport.SubmitReviewRequest{
		Address: "12 Elm Street, Rotterdam",
		Rating:  4,
	}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := svc.Submit(ctx, "tenant-2", transport.SubmitReviewRequest{
		Address:        "12 ELM STREET Rotterdam",
		Rating:         2,
		LandlordRating: 3,
	}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	result, err := svc.ByAddress(ctx, "12 elm street, rotterdam")
	if err != nil {
		t.Fatalf("ByAddress returned error: %v", err)
	}
	if result.Aggregate.ReviewCount != 2 {
		t.Fatalf("expected 2 reviews, got %d", result.Aggregate.ReviewCount)
	}
	if result.Aggregate.AverageRating != 3 {
		t.Fatalf("expected average 3, got %f", result.Aggregate.AverageRating)
	}
	if result.Aggregate.AverageLandlordRate != 3 {
		t.Fatalf("expected landlord average 3, got %f", result.Aggregate.AverageLandlordRate)
	}

	if len(bus.events) != 2 {
		t.Fatalf("expected 2 submitted events, got %d", len(bus.events))
	}
}

func TestSubmitDuplicateByReviewerConflicts(t *testing.T) {
	svc := New(newFakeRepo(), &recordingBus{})
	ctx := context.Background()

	req := transport.SubmitReviewRequest{Address: "12 Elm Street", Rating: 5}
	if _, err := svc.Submit(ctx, "tenant-1", req); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	req.Rating = 1
	_, err := svc.Submit(ctx, "tenant-1", req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitRejectsInvertedTenancy(t *testing.T) {
	svc := New(newFakeRepo(), &recordingBus{})

	_, err := svc.Submit(context.Background(), "tenant-1", transport.SubmitReviewRequest{
		Address:      "12 Elm Street",
		Rating:       3,
		TenancyStart: "2024-06",
		TenancyEnd:   "2023-01",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteOnlyOwnReview(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, &recordingBus{})
	ctx := context.Background()

	created, err := svc.Submit(ctx, "tenant-1", transport.SubmitReviewRequest{Address: "12 Elm Street", Rating: 4})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if err := svc.Delete(ctx, "tenant-2", created.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if err := svc.Delete(ctx, "tenant-1", created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}
