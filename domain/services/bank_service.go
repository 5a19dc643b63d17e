package services

import (
	"context"
	"fmt"

	"ddj/domain/entities"
	"ddj/domain/interfaces"
)

type bankService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewBankService creates a new bank service
func NewBankService(uowFactory interfaces.UnitOfWorkFactory) interfaces.BankService {
	return &bankService{uowFactory: uowFactory}
}

// GetBank returns the current bank balances and recent audit rows
func (s *bankService) GetBank(ctx context.Context, auditLimit int) (*entities.GameBank, []*entities.AdminLedgerEntry, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bank, err := uow.BankRepository().Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := uow.BankRepository().GetAdminEntries(ctx, auditLimit)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return bank, entries, nil
}
