package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

func TestRegisterCloseEngines(t *testing.T) {
	txManager := mocks.NewMockTransactionManager()
	entryRepo := mocks.NewMockEntryRepository()
	chartRepo := mocks.NewMockChartRepository()
	accrualRepo := mocks.NewMockAccrualRepository()
	idGen := mocks.NewMockIDGenerator()

	ledgerUC := usecase.NewLedgerUseCase(txManager, entryRepo, chartRepo, mocks.NewMockCache(), idGen)
	accrualUC := usecase.NewAccrualUseCase(accrualRepo, mocks.NewMockPoster(), idGen)
	closeUC := usecase.NewCloseUseCase(txManager, mocks.NewMockCloseRepository(), entryRepo, chartRepo, idGen, mocks.NewMockLocker(), zerolog.Nop())

	registerCloseEngines(closeUC, accrualUC, ledgerUC, entryRepo)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	pc, err := closeUC.CreatePeriodClose(ctx, "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("failed to create close: %v", err)
	}
	if _, err := closeUC.StartClose(ctx, "tenant-1", pc.ID); err != nil {
		t.Fatalf("failed to start close: %v", err)
	}

	summary, err := closeUC.ExecuteCloseTasks(ctx, "tenant-1", pc.ID)
	if err != nil {
		t.Fatalf("failed to execute tasks: %v", err)
	}

	if summary.Executed == 0 {
		t.Fatal("expected automated tasks to execute with engines registered")
	}
}
