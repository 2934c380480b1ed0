package solutions

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

func validInput() CreateInput {
	return CreateInput{
		Title:         "Clinic AI",
		Description:   "Early disease detection",
		Category:      "Healthcare",
		Stage:         "MVP",
		FundingStatus: "Seeking",
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := New(memory.New(), logger.Discard())
	uid := int64(3)

	sol, err := svc.Create(context.Background(), validInput(), &uid)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sol.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if !sol.PriceETH.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("expected default price 0.1, got %s", sol.PriceETH)
	}
	if sol.CreatorID == nil || *sol.CreatorID != uid {
		t.Fatalf("expected creator %d, got %v", uid, sol.CreatorID)
	}
	if sol.Views != 0 || sol.Purchases != 0 {
		t.Fatalf("expected zero counters, got %d/%d", sol.Views, sol.Purchases)
	}

	anon, err := svc.Create(context.Background(), validInput(), nil)
	if err != nil {
		t.Fatalf("create anonymous: %v", err)
	}
	if anon.CreatorID != nil {
		t.Fatalf("expected nil creator for anonymous caller")
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	store := memory.New()
	svc := New(store, logger.Discard())

	in := validInput()
	in.Stage = "  "
	in.FundingStatus = ""
	_, err := svc.Create(context.Background(), in, nil)
	if apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if count, _ := store.CountSolutions(context.Background()); count != 0 {
		t.Fatalf("expected no write, found %d solutions", count)
	}

	negative := decimal.RequireFromString("-1")
	in = validInput()
	in.PriceETH = &negative
	if _, err := svc.Create(context.Background(), in, nil); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %v", err)
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	svc := New(memory.New(), logger.Discard())
	price := decimal.RequireFromString("0.25")
	in := validInput()
	in.PriceETH = &price

	created, err := svc.Create(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := svc.List(context.Background(), storage.SolutionFilter{Category: "Healthcare"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected created solution in list, got %+v", list)
	}
	if !list[0].PriceETH.Equal(price) {
		t.Fatalf("expected price %s, got %s", price, list[0].PriceETH)
	}
}

func TestRecordViewConcurrent(t *testing.T) {
	svc := New(memory.New(), logger.Discard())
	sol, err := svc.Create(context.Background(), validInput(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordView(context.Background(), sol.ID); err != nil {
				t.Errorf("view: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := svc.Get(context.Background(), sol.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != n {
		t.Fatalf("expected %d views, got %d", n, got.Views)
	}
}

func TestCountersOnMissingSolution(t *testing.T) {
	svc := New(memory.New(), logger.Discard())
	if _, err := svc.RecordView(context.Background(), 99); apperrors.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for view, got %v", err)
	}
	if _, err := svc.RecordPurchase(context.Background(), 99); apperrors.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for purchase, got %v", err)
	}
}

func TestRecordPurchase(t *testing.T) {
	svc := New(memory.New(), logger.Discard())
	sol, _ := svc.Create(context.Background(), validInput(), nil)

	for want := int64(1); want <= 2; want++ {
		got, err := svc.RecordPurchase(context.Background(), sol.ID)
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d purchases, got %d", want, got)
		}
	}
}
