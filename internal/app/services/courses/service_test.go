package courses

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
)

func TestListByCategory(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, c := range []course.Course{
		{Title: "ML Fundamentals", Category: "AI/ML", Price: decimal.NewFromInt(299)},
		{Title: "Bootcamp", Category: "Blockchain", Price: decimal.NewFromInt(499)},
	} {
		if _, err := store.CreateCourse(ctx, c); err != nil {
			t.Fatalf("seed course: %v", err)
		}
	}

	svc := New(store, nil)
	list, err := svc.List(ctx, storage.CourseFilter{Category: "AI/ML"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "ML Fundamentals" {
		t.Fatalf("unexpected courses %+v", list)
	}

	all, err := svc.List(ctx, storage.CourseFilter{Category: "all"})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(all))
	}
}
