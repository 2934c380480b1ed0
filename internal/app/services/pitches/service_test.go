package pitches

import (
	"context"
	"net/http"
	"testing"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/pitch"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
)

func TestSubmitStoresPendingApplication(t *testing.T) {
	svc := New(memory.New(), nil)
	app, err := svc.Submit(context.Background(), SubmitInput{
		CompanyName:   "AgriSense",
		FounderName:   "Jane Wanjiku",
		Email:         "jane@agrisense.io",
		CompanyStage:  "Seed",
		Industry:      "Agriculture",
		FundingAmount: "$250,000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if app.Status != pitch.StatusPending {
		t.Fatalf("expected pending status, got %s", app.Status)
	}
	if app.Phone != nil || app.PitchDeckPath != nil {
		t.Fatalf("expected optional fields to stay empty")
	}
	if app.FundingAmount == nil || *app.FundingAmount != "$250,000" {
		t.Fatalf("funding amount not stored")
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != app.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestSubmitValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	if _, err := svc.Submit(context.Background(), SubmitInput{CompanyName: "X"}); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), SubmitInput{
		CompanyName: "X", FounderName: "Y", Email: "not-an-email", CompanyStage: "Idea", Industry: "Fintech",
	}); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %v", err)
	}
	if list, _ := store.ListPitchApplications(context.Background()); len(list) != 0 {
		t.Fatalf("expected no stored applications, got %d", len(list))
	}
}
