package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPaymentNotFound     = notFound("payment")
	ErrPaymentTrainerOnly  = forbidden("only trainers can record payments")
	ErrInvalidPaymentType  = invalid("payment type must be single, package or subscription")
	ErrInvalidPaymentInput = invalid("amount must be positive")
)

type CreatePaymentInput struct {
	ClientID         primitive.ObjectID
	Amount           float64
	Date             time.Time // Zero means now
	Type             domain.PaymentType
	PackageSize      *int
	SubscriptionDays *int
	Notes            string
}

type PaymentListFilter struct {
	ClientID *primitive.ObjectID
	From     *time.Time
	To       *time.Time
}

// FinanceService keeps a trainer's payment ledger and the prepaid balances it feeds.
type FinanceService interface {
	CreatePayment(ctx context.Context, actor domain.Actor, in CreatePaymentInput) (*domain.Payment, error)
	ListPayments(ctx context.Context, actor domain.Actor, filter PaymentListFilter) ([]domain.Payment, error)
	Stats(ctx context.Context, actor domain.Actor) (*domain.PaymentStats, error)
	DeletePayment(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error
	SessionLedger
}

type financeService struct {
	tx          repository.Transactor
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	now         func() time.Time
}

// NewFinanceService creates a new instance of financeService.
func NewFinanceService(tx repository.Transactor, userRepo repository.UserRepository, paymentRepo repository.PaymentRepository) FinanceService {
	return &financeService{
		tx:          tx,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *financeService) CreatePayment(ctx context.Context, actor domain.Actor, in CreatePaymentInput) (*domain.Payment, error) {
	if !actor.IsTrainer() {
		return nil, ErrPaymentTrainerOnly
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidPaymentType
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidPaymentInput
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	payment := &domain.Payment{
		TrainerID: actor.ID,
		ClientID:  in.ClientID,
		Amount:    in.Amount,
		Date:      in.Date.UTC(),
		Type:      in.Type,
		Notes:     in.Notes,
	}
	switch in.Type {
	case domain.PaymentPackage:
		if in.PackageSize == nil || *in.PackageSize <= 0 {
			return nil, invalid("packageSize must be positive for a package payment")
		}
		size := *in.PackageSize
		payment.PackageSize = &size
		payment.RemainingSessions = &size
	case domain.PaymentSubscription:
		if in.SubscriptionDays == nil || *in.SubscriptionDays <= 0 {
			return nil, invalid("subscriptionDays must be positive for a subscription payment")
		}
		days := *in.SubscriptionDays
		next := payment.Date.AddDate(0, 0, days)
		payment.SubscriptionDays = &days
		payment.NextPaymentDate = &next
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		client, err := loadManagedClient(ctx, s.userRepo, actor, in.ClientID)
		if err != nil {
			return err
		}
		if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		switch payment.Type {
		case domain.PaymentPackage:
			return s.userRepo.AddToWorkoutsPackage(ctx, client.ID, *payment.PackageSize)
		case domain.PaymentSubscription:
			return s.userRepo.SetSubscriptionExpiry(ctx, client.ID, s.extendSubscription(client, payment))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// extendSubscription stacks the paid days onto an active subscription, or
// starts them at the payment date once the previous one has lapsed.
func (s *financeService) extendSubscription(client *domain.User, p *domain.Payment) time.Time {
	from := p.Date
	if client.SubscriptionExpiresAt != nil && client.SubscriptionExpiresAt.After(s.now()) {
		from = *client.SubscriptionExpiresAt
	}
	return from.AddDate(0, 0, *p.SubscriptionDays)
}

func (s *financeService) ListPayments(ctx context.Context, actor domain.Actor, f PaymentListFilter) ([]domain.Payment, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	if f.ClientID != nil {
		if _, err := loadManagedClient(ctx, s.userRepo, actor, *f.ClientID); err != nil {
			return nil, err
		}
	}
	return s.paymentRepo.List(ctx, repository.PaymentFilter{TrainerID: actor.ID, ClientID: f.ClientID, From: f.From, To: f.To})
}

// Stats reports revenue for the current calendar month and all time.
func (s *financeService) Stats(ctx context.Context, actor domain.Actor) (*domain.PaymentStats, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	payments, err := s.paymentRepo.List(ctx, repository.PaymentFilter{TrainerID: actor.ID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &domain.PaymentStats{TotalPayments: len(payments)}
	for _, p := range payments {
		stats.TotalRevenue += p.Amount
		if !p.Date.Before(monthStart) {
			stats.MonthlyRevenue += p.Amount
		}
	}
	if stats.TotalPayments > 0 {
		stats.AverageCheck = stats.TotalRevenue / float64(stats.TotalPayments)
	}
	return stats, nil
}

// DeletePayment removes a record from the ledger. Balances already granted stay.
func (s *financeService) DeletePayment(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	if !actor.IsTrainer() {
		return ErrNotATrainer
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.paymentRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.TrainerID != actor.ID {
			return ErrPaymentNotFound
		}
		return s.paymentRepo.Delete(ctx, id)
	})
}

// ConsumePackageSession takes one session off the client's aggregate balance
// and off their oldest open package. The two counters move independently and
// each stops at zero. Must run inside the caller's transaction; the caller
// records the returned usage after commit.
func (s *financeService) ConsumePackageSession(ctx context.Context, clientID primitive.ObjectID) (PackageUsage, error) {
	var usage PackageUsage
	decremented, err := s.userRepo.DecrementWorkoutsPackage(ctx, clientID)
	if err != nil {
		return usage, err
	}
	usage.Balance = decremented

	p, err := s.paymentRepo.ConsumeOldestPackageSession(ctx, clientID)
	if err != nil {
		return usage, err
	}
	usage.Payment = p != nil
	if p == nil && decremented {
		log.Printf("WARN: Client %s had a session balance but no open package payment", clientID.Hex())
	}
	return usage, nil
}
