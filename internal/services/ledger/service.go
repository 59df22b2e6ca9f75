package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultAccountNumberPrefix = "WC"
	DefaultHistoryPage         = 20
	DefaultMaxHistoryPage      = 100
)

// errKeyRace signals that a concurrent posting stored the same idempotency
// key first. The transaction is rolled back and the stored row replayed.
var errKeyRace = errors.New("idempotency key stored concurrently")

type service struct {
	repo    repositories.LedgerRepository
	config  Config
	metrics MetricsCollector
	log     *slog.Logger
}

// NewService creates a new ledger service
func NewService(repo repositories.LedgerRepository, config Config, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}

	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	if config.AccountNumberPrefix == "" {
		config.AccountNumberPrefix = DefaultAccountNumberPrefix
	}
	if config.MaxHistoryPage <= 0 {
		config.MaxHistoryPage = DefaultMaxHistoryPage
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		config:  config,
		metrics: metrics,
		log:     slog.Default().With("component", "ledger"),
	}
}

func (s *service) CreateAccount(ctx context.Context, req CreateAccountRequest) (account *models.Account, err error) {
	defer s.observe("create_account", time.Now(), &err)

	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Currency = validation.NormalizeCurrency(req.Currency)

	v := validation.New()
	v.Required("customerId", req.CustomerID)
	v.Currency("currency", req.Currency)
	if req.IBAN != nil {
		iban := strings.ToUpper(strings.ReplaceAll(*req.IBAN, " ", ""))
		v.MaxLength("iban", iban, 34)
		req.IBAN = &iban
		if iban == "" {
			req.IBAN = nil
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	account = &models.Account{
		CustomerID:    req.CustomerID,
		Currency:      req.Currency,
		AccountNumber: s.newAccountNumber(),
		IBAN:          req.IBAN,
		Status:        models.AccountStatusActive,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account created",
		"account_id", account.ID,
		"customer_id", account.CustomerID,
		"currency", account.Currency)
	return account, nil
}

func (s *service) newAccountNumber() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return s.config.AccountNumberPrefix + hex[:16]
}

func (s *service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, apperrors.Validation("accountId must not be empty")
	}
	return s.repo.GetAccount(ctx, accountID)
}

func (s *service) GetAccountByCustomer(ctx context.Context, customerID, currency string) (*models.Account, error) {
	customerID = strings.TrimSpace(customerID)
	currency = validation.NormalizeCurrency(currency)

	v := validation.New()
	v.Required("customerId", customerID)
	v.Currency("currency", currency)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.repo.GetAccountByCustomer(ctx, customerID, currency)
}

func (s *service) UpdateAccountStatus(ctx context.Context, accountID string, status models.AccountStatus) (account *models.Account, err error) {
	defer s.observe("update_account_status", time.Now(), &err)

	if strings.TrimSpace(accountID) == "" {
		return nil, apperrors.Validation("accountId must not be empty")
	}
	status, perr := models.ParseAccountStatus(string(status))
	if perr != nil {
		return nil, apperrors.Validation("status %s", perr)
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		current, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		account = current
		if current.Status == status {
			return nil
		}
		if !current.Status.CanTransitionTo(status) {
			return apperrors.ErrInvalidStatusTransition.WithMessage(
				"account cannot move from %s to %s", current.Status, status)
		}
		if err := tx.UpdateStatus(ctx, accountID, status); err != nil {
			return err
		}
		account.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// PostTransaction applies one signed amount to an account. The account row
// stays locked from the balance read until the new balance is committed.
func (s *service) PostTransaction(ctx context.Context, req PostRequest) (result *PostResult, err error) {
	defer s.observe("post_transaction", time.Now(), &err)

	req.Currency = validation.NormalizeCurrency(req.Currency)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if err := validatePost(req); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		account, err := tx.GetAccountForUpdate(ctx, req.AccountID)
		if err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			existing, err := tx.GetTransactionByIdempotencyKey(ctx, account.ID, req.IdempotencyKey)
			switch {
			case err == nil:
				result = &PostResult{Transaction: existing, Replayed: true}
				return nil
			case !errors.Is(err, repositories.ErrRecordNotFound):
				return err
			}
		}

		if !strings.EqualFold(account.Currency, req.Currency) {
			return apperrors.ErrCurrencyMismatch.WithMessage(
				"account currency is %s, got %s", account.Currency, req.Currency)
		}
		if account.Status != models.AccountStatusActive {
			return apperrors.ErrAccountNotActive.WithMessage("account is %s", account.Status)
		}

		before := account.Balance
		after := before.Add(signed(req.Direction, req.Amount))
		if after.IsNegative() {
			return apperrors.ErrInsufficientBalance
		}

		txn := &models.AccountingTransaction{
			AccountID:      account.ID,
			Direction:      req.Direction,
			Amount:         req.Amount,
			Currency:       account.Currency,
			BalanceBefore:  before,
			BalanceAfter:   after,
			OperationType:  req.OperationType,
			ReferenceID:    req.ReferenceID,
			IdempotencyKey: optional(req.IdempotencyKey),
			CorrelationID:  optional(req.CorrelationID),
			Status:         models.TransactionStatusCompleted,
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errKeyRace
			}
			return err
		}

		entry := &models.AccountBalanceHistory{
			AccountID:     account.ID,
			TransactionID: txn.ID,
			Direction:     txn.Direction,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			BalanceBefore: before,
			BalanceAfter:  after,
			OperationType: txn.OperationType,
			ReferenceID:   txn.ReferenceID,
			CreatedAt:     txn.CreatedAt,
		}
		if err := tx.CreateHistory(ctx, entry); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, account.ID, after); err != nil {
			return err
		}

		result = &PostResult{Transaction: txn}
		return nil
	})

	if errors.Is(err, errKeyRace) {
		existing, lookupErr := s.repo.GetTransactionByIdempotencyKey(ctx, req.AccountID, req.IdempotencyKey)
		if lookupErr != nil {
			return nil, apperrors.Unavailable("replay transaction", lookupErr)
		}
		result, err = &PostResult{Transaction: existing, Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		s.metrics.RecordReplay("post_transaction")
		s.log.Info("posting replayed",
			"account_id", req.AccountID,
			"idempotency_key", req.IdempotencyKey,
			"transaction_id", result.Transaction.ID)
		return result, nil
	}

	s.metrics.RecordPosting(result.Transaction.Direction, result.Transaction.Currency, result.Transaction.Amount)
	s.log.Info("posting applied",
		"account_id", req.AccountID,
		"transaction_id", result.Transaction.ID,
		"direction", result.Transaction.Direction,
		"amount", result.Transaction.Amount.StringFixed(validation.AmountScale),
		"balance_after", result.Transaction.BalanceAfter.StringFixed(validation.AmountScale),
		"reference_id", result.Transaction.ReferenceID)
	return result, nil
}

func validatePost(req PostRequest) error {
	v := validation.New()
	v.Required("accountId", req.AccountID)
	v.Check(req.Direction.Valid(), "direction", "must be debit or credit")
	v.PositiveAmount("amount", req.Amount)
	v.Currency("currency", req.Currency)
	v.Check(req.OperationType.Valid(), "operationType", "is not a known operation type")
	v.MaxLength("referenceId", req.ReferenceID, validation.MaxReferenceLength)
	v.MaxLength("correlationId", req.CorrelationID, validation.MaxReferenceLength)
	v.MaxLength("idempotencyKey", req.IdempotencyKey, validation.MaxIdempotencyKeyLength)
	return v.Err()
}

func signed(direction models.Direction, amount decimal.Decimal) decimal.Decimal {
	if direction == models.DirectionDebit {
		return amount.Neg()
	}
	return amount
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Transfer debits the sender then credits the receiver. Each leg is its own
// atomic posting keyed off the transfer's idempotency key, so a retry with
// the same key replays whichever legs already committed.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (result *TransferResult, err error) {
	defer s.observe("transfer", time.Now(), &err)

	req.Currency = validation.NormalizeCurrency(req.Currency)
	req.ReferenceID = strings.TrimSpace(req.ReferenceID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	v := validation.New()
	v.Required("fromAccountId", req.FromAccountID)
	v.Required("toAccountId", req.ToAccountID)
	v.Check(req.FromAccountID != req.ToAccountID, "toAccountId", "must differ from fromAccountId")
	v.PositiveAmount("amount", req.Amount)
	v.Currency("currency", req.Currency)
	v.MaxLength("referenceId", req.ReferenceID, validation.MaxReferenceLength)
	v.MaxLength("idempotencyKey", req.IdempotencyKey, validation.MaxIdempotencyKeyLength-len(":credit"))
	if err := v.Err(); err != nil {
		return nil, err
	}

	if req.ReferenceID == "" {
		req.ReferenceID = uuid.NewString()
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = req.ReferenceID
	}

	receiver, err := s.repo.GetAccount(ctx, req.ToAccountID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(receiver.Currency, req.Currency) {
		return nil, apperrors.ErrCurrencyMismatch.WithMessage(
			"receiver account currency is %s, got %s", receiver.Currency, req.Currency)
	}
	if receiver.Status != models.AccountStatusActive {
		return nil, apperrors.ErrAccountNotActive.WithMessage("receiver account is %s", receiver.Status)
	}

	leg := func(accountID string, direction models.Direction) PostRequest {
		return PostRequest{
			AccountID:      accountID,
			Direction:      direction,
			Amount:         req.Amount,
			Currency:       req.Currency,
			OperationType:  models.OperationTransfer,
			ReferenceID:    req.ReferenceID,
			IdempotencyKey: req.IdempotencyKey + ":" + string(direction),
			CorrelationID:  req.CorrelationID,
		}
	}

	debit, err := s.PostTransaction(ctx, leg(req.FromAccountID, models.DirectionDebit))
	if err != nil {
		return nil, err
	}
	credit, err := s.PostTransaction(ctx, leg(req.ToAccountID, models.DirectionCredit))
	if err != nil {
		s.log.Error("transfer credit leg failed after debit",
			"reference_id", req.ReferenceID,
			"idempotency_key", req.IdempotencyKey,
			"debit_transaction_id", debit.Transaction.ID,
			"error", err)
		incomplete := apperrors.ErrTransferIncomplete.WithMessage(
			"transfer %s debited sender by transaction %s but did not credit receiver",
			req.ReferenceID, debit.Transaction.ID)
		return nil, fmt.Errorf("%w: %w", incomplete, err)
	}

	return &TransferResult{
		ReferenceID: req.ReferenceID,
		Debit:       debit.Transaction,
		Credit:      credit.Transaction,
		Replayed:    debit.Replayed && credit.Replayed,
	}, nil
}

func (s *service) ListHistory(ctx context.Context, accountID string, limit, offset int) (*HistoryPage, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, apperrors.Validation("accountId must not be empty")
	}
	if offset < 0 {
		return nil, apperrors.Validation("offset must not be negative")
	}
	if limit <= 0 {
		limit = DefaultHistoryPage
	}
	if limit > s.config.MaxHistoryPage {
		limit = s.config.MaxHistoryPage
	}

	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	entries, total, err := s.repo.ListHistory(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}

// GetUsage sums committed transactions of the customer in the calendar window
// of period around the reference date. Both directions count.
func (s *service) GetUsage(ctx context.Context, req UsageRequest) (usage *UsageResult, err error) {
	defer s.observe("get_usage", time.Now(), &err)

	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Currency = validation.NormalizeCurrency(req.Currency)
	if req.MetricType == "" {
		req.MetricType = models.MetricAmount
	}
	if req.ReferenceDate.IsZero() {
		req.ReferenceDate = s.config.Now()
	}

	v := validation.New()
	v.Required("customerId", req.CustomerID)
	v.Currency("currency", req.Currency)
	v.Check(req.Period.Valid(), "period", "must be Day, Month or Year")
	if err := v.Err(); err != nil {
		return nil, err
	}

	firstDay, lastDay, from, until, err := Window(req.Period, req.ReferenceDate)
	if err != nil {
		return nil, apperrors.Validation("%s", err)
	}

	txns, err := s.repo.ListCustomerTransactions(ctx, req.CustomerID, req.Currency, from, until)
	if err != nil {
		return nil, err
	}

	used := decimal.Zero
	for _, txn := range txns {
		used = used.Add(txn.Amount)
	}

	return &UsageResult{
		CustomerID: req.CustomerID,
		Currency:   req.Currency,
		Period:     req.Period,
		MetricType: req.MetricType,
		FromDate:   firstDay,
		ToDate:     lastDay,
		UsedAmount: used,
		UsedCount:  int64(len(txns)),
	}, nil
}

func (s *service) observe(operation string, start time.Time, errp *error) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
	s.metrics.RecordOperationResult(operation, resultLabel(*errp))
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if code := apperrors.Code(err); code != "" {
		return strings.ToLower(code)
	}
	return "error"
}
