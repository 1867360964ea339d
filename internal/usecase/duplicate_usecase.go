package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// Similarity scores assigned by the three duplicate heuristics.
var (
	similaritySameDocument   = 1.0
	similarityAccountAmount  = 0.95
	similarityDescription    = 0.75
	descriptionAmountEpsilon = decimal.RequireFromString("0.5")
)

// DuplicateUseCase scores candidate duplicate ledger entries.
type DuplicateUseCase struct {
	entryRepo EntryRepository
}

// NewDuplicateUseCase creates a new DuplicateUseCase.
func NewDuplicateUseCase(entryRepo EntryRepository) *DuplicateUseCase {
	return &DuplicateUseCase{entryRepo: entryRepo}
}

// DuplicateCandidate is one ranked duplicate suggestion.
type DuplicateCandidate struct {
	Entry      *domain.LedgerEntry
	Similarity float64
	Reason     string
}

// DetectDuplicates ranks entries that look like duplicates of entryID:
// same document (1.0), same account/amount/date window (0.95), same
// description and close amount (0.75). Candidates matching several
// heuristics keep their highest score.
func (uc *DuplicateUseCase) DetectDuplicates(ctx context.Context, tenantID, entryID string) ([]DuplicateCandidate, error) {
	entry, err := uc.entryRepo.GetByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	best := make(map[string]DuplicateCandidate)

	collect := func(entries []*domain.LedgerEntry, similarity float64, reason string) {
		for _, e := range entries {
			if e.ID == entry.ID {
				continue
			}
			if existing, ok := best[e.ID]; ok && existing.Similarity >= similarity {
				continue
			}
			best[e.ID] = DuplicateCandidate{Entry: e, Similarity: similarity, Reason: reason}
		}
	}

	amountLow := entry.Amount.Sub(domain.BalanceEpsilon)
	amountHigh := entry.Amount.Add(domain.BalanceEpsilon)
	dateLow := entry.TransactionDate.AddDate(0, 0, -1)
	dateHigh := entry.TransactionDate.AddDate(0, 0, 1)

	byAccount, err := uc.entryRepo.FindSimilar(ctx, tenantID, SimilarEntryQuery{
		AccountCode: &entry.AccountCode,
		AmountFrom:  &amountLow,
		AmountTo:    &amountHigh,
		DateFrom:    &dateLow,
		DateTo:      &dateHigh,
	})
	if err != nil {
		return nil, err
	}
	collect(byAccount, similarityAccountAmount, "same account, amount and date window")

	if entry.HasDocument() {
		byDocument, err := uc.entryRepo.FindSimilar(ctx, tenantID, SimilarEntryQuery{
			DocumentID: entry.DocumentID,
		})
		if err != nil {
			return nil, err
		}
		collect(byDocument, similaritySameDocument, "same source document")
	}

	if entry.Description != "" {
		descLow := entry.Amount.Sub(descriptionAmountEpsilon)
		descHigh := entry.Amount.Add(descriptionAmountEpsilon)
		byDescription, err := uc.entryRepo.FindSimilar(ctx, tenantID, SimilarEntryQuery{
			Description: &entry.Description,
			AmountFrom:  &descLow,
			AmountTo:    &descHigh,
		})
		if err != nil {
			return nil, err
		}
		collect(byDescription, similarityDescription, "identical description and close amount")
	}

	candidates := make([]DuplicateCandidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Entry.ID < candidates[j].Entry.ID
	})

	return candidates, nil
}
