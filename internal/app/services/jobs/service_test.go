package jobs

import (
	"context"
	"net/http"
	"testing"

	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
)

func TestCreateAndFilter(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	remote, err := svc.Create(ctx, CreateInput{
		Title: "Senior AI Engineer", Company: "TechCorp Kenya", Location: "Nairobi, Kenya",
		JobType: "Full-time", Description: "Lead AI projects", SalaryRange: "$80,000 - $120,000", Remote: true,
	}, nil)
	if err != nil {
		t.Fatalf("create remote job: %v", err)
	}
	if remote.SalaryRange == nil || *remote.SalaryRange != "$80,000 - $120,000" {
		t.Fatalf("salary range not stored: %v", remote.SalaryRange)
	}
	if remote.Requirements != nil {
		t.Fatalf("expected nil requirements")
	}

	if _, err := svc.Create(ctx, CreateInput{
		Title: "Designer", Company: "Studio", Location: "Mombasa, Kenya", JobType: "Contract", Description: "UI work",
	}, nil); err != nil {
		t.Fatalf("create onsite job: %v", err)
	}

	list, err := svc.List(ctx, storage.JobFilter{Location: "Kenya", RemoteOnly: Truthy("1")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != remote.ID {
		t.Fatalf("expected only the remote job, got %+v", list)
	}

	all, err := svc.List(ctx, storage.JobFilter{JobType: "all", RemoteOnly: Truthy("")})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}
	if all[0].Title != "Designer" {
		t.Fatalf("expected newest first, got %s", all[0].Title)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := New(memory.New(), nil)
	_, err := svc.Create(context.Background(), CreateInput{Title: "Engineer"}, nil)
	if apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msg := apperrors.PublicMessage(err); msg != "missing required fields: [company location job_type description]" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestTruthy(t *testing.T) {
	for raw, want := range map[string]bool{
		"": false, "0": false, "false": false, "OFF": false, "no": false,
		"1": true, "true": true, "yes": true, "on": true,
	} {
		if got := Truthy(raw); got != want {
			t.Fatalf("Truthy(%q) = %v, want %v", raw, got, want)
		}
	}
}
