package events

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/testutil"
)

func seedEvents(t *testing.T, store *memory.Store, now time.Time) map[string]event.Event {
	t.Helper()
	out := make(map[string]event.Event)
	for _, e := range []event.Event{
		{Title: "Past webinar", Type: event.TypeWebinar, Date: now.Add(-time.Hour)},
		{Title: "Workshop", Type: event.TypeWorkshop, Date: now.Add(72 * time.Hour)},
		{Title: "Webinar", Type: event.TypeWebinar, Date: now.Add(24 * time.Hour)},
		{Title: "Fellowship late", Type: event.TypeFellowship, Date: now.Add(96 * time.Hour)},
		{Title: "Fellowship", Type: event.TypeFellowship, Date: now.Add(48 * time.Hour)},
		{Title: "Pitch", Type: event.TypePitch, Date: now.Add(120 * time.Hour), Capacity: 1},
	} {
		created, err := store.CreateEvent(context.Background(), e)
		if err != nil {
			t.Fatalf("create event: %v", err)
		}
		out[created.Title] = created
	}
	return out
}

func titles(list []event.Event) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Title
	}
	return out
}

func TestUpcomingViews(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	store := memory.New()
	seedEvents(t, store, now)
	svc := New(store, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	programs, err := svc.Programs(ctx)
	if err != nil {
		t.Fatalf("programs: %v", err)
	}
	if got := titles(programs); len(got) != 2 || got[0] != "Webinar" || got[1] != "Workshop" {
		t.Fatalf("unexpected programs %v", got)
	}

	next, ok, err := svc.NextFellowship(ctx)
	if err != nil || !ok {
		t.Fatalf("next fellowship: ok=%v err=%v", ok, err)
	}
	if next.Title != "Fellowship" {
		t.Fatalf("expected soonest fellowship, got %s", next.Title)
	}

	pitches, err := svc.PitchEvents(ctx)
	if err != nil {
		t.Fatalf("pitches: %v", err)
	}
	if len(pitches) != 1 {
		t.Fatalf("expected 1 pitch event, got %d", len(pitches))
	}

	all, err := svc.Upcoming(ctx)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 future events, got %d", len(all))
	}
}

func TestNextFellowshipNoneScheduled(t *testing.T) {
	svc := New(memory.New(), nil)
	_, ok, err := svc.NextFellowship(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no fellowship")
	}
}

func TestRegisterIncrementsOnce(t *testing.T) {
	now := time.Now().UTC()
	store := memory.New()
	evts := seedEvents(t, store, now)
	svc := New(store, nil)
	ctx := context.Background()
	target := evts["Webinar"]

	reg, err := svc.Register(ctx, target.ID, "", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Type != event.DefaultRegistrationType {
		t.Fatalf("expected default type, got %q", reg.Type)
	}

	got, _ := store.GetEvent(ctx, target.ID)
	if got.Registered != target.Registered+1 {
		t.Fatalf("expected registered %d, got %d", target.Registered+1, got.Registered)
	}
	regs, _ := store.ListRegistrations(ctx, target.ID)
	if len(regs) != 1 {
		t.Fatalf("expected exactly one registration row, got %d", len(regs))
	}
}

func TestRegisterErrors(t *testing.T) {
	store := memory.New()
	evts := seedEvents(t, store, time.Now().UTC())
	svc := New(store, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, 0, "", nil); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing event_id, got %v", err)
	}
	if _, err := svc.Register(ctx, 9999, "", nil); apperrors.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for missing event, got %v", err)
	}
	if regs, _ := store.ListRegistrations(ctx, 9999); len(regs) != 0 {
		t.Fatalf("missing event must not create registrations")
	}

	uid := int64(4)
	fellowship := evts["Fellowship"]
	if _, err := svc.Register(ctx, fellowship.ID, "vip", &uid); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := svc.Register(ctx, fellowship.ID, "vip", &uid); apperrors.HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %v", err)
	}

	pitch := evts["Pitch"]
	if _, err := svc.Register(ctx, pitch.ID, "", nil); err != nil {
		t.Fatalf("fill pitch: %v", err)
	}
	if _, err := svc.Register(ctx, pitch.ID, "", nil); apperrors.HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409 for full event, got %v", err)
	}
}

func TestRegisterConcurrentRespectsCapacity(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	evt, err := store.CreateEvent(ctx, event.Event{Title: "Small", Type: event.TypeWorkshop, Capacity: 10, Date: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	svc := New(store, nil)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Register(ctx, evt.ID, "", nil)
		}()
	}
	wg.Wait()

	got, _ := store.GetEvent(ctx, evt.ID)
	regs, _ := store.ListRegistrations(ctx, evt.ID)
	if got.Registered != 10 || len(regs) != 10 {
		t.Fatalf("expected 10 seats taken, got counter=%d rows=%d", got.Registered, len(regs))
	}
}

func TestUpcomingFollowsClock(t *testing.T) {
	start := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	store := memory.New()
	seedEvents(t, store, start)
	clock := testutil.NewClock(start)
	svc := New(store, nil).WithClock(clock.Now)
	ctx := context.Background()

	next, ok, err := svc.NextFellowship(ctx)
	if err != nil || !ok || next.Title != "Fellowship" {
		t.Fatalf("expected Fellowship, got %q ok=%v err=%v", next.Title, ok, err)
	}

	clock.Advance(50 * time.Hour)
	next, ok, err = svc.NextFellowship(ctx)
	if err != nil || !ok || next.Title != "Fellowship late" {
		t.Fatalf("expected Fellowship late, got %q ok=%v err=%v", next.Title, ok, err)
	}

	clock.Advance(100 * time.Hour)
	if _, ok, err := svc.NextFellowship(ctx); err != nil || ok {
		t.Fatalf("expected no fellowship, ok=%v err=%v", ok, err)
	}
	upcoming, err := svc.Upcoming(ctx)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("expected no upcoming events, got %v", titles(upcoming))
	}
}
