package app

import (
	"context"
	"testing"

	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
)

func TestNewDefaultsToMemoryStores(t *testing.T) {
	application, err := New(Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	wrote, err := application.Seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !wrote {
		t.Fatalf("expected seed to write into empty store")
	}

	stats, err := application.Search.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Members != 1 || stats.Solutions != 3 || stats.Jobs != 2 || stats.Courses != 2 || stats.Events != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestNewSharesProvidedStore(t *testing.T) {
	store := memory.New()
	application, err := New(Stores{
		Users: store, Solutions: store, Jobs: store, Courses: store,
		Events: store, Pitches: store, Seed: store, Pinger: store,
	}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if _, err := application.Seeder.Run(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if count, _ := store.CountSolutions(context.Background()); count != 3 {
		t.Fatalf("expected seeded solutions in provided store, got %d", count)
	}
}
