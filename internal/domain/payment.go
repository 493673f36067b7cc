package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentType string

const (
	PaymentSingle       PaymentType = "single"
	PaymentPackage      PaymentType = "package"
	PaymentSubscription PaymentType = "subscription"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentSingle, PaymentPackage, PaymentSubscription:
		return true
	}
	return false
}

// Payment is a trainer's record of money received from a client.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Amount    float64            `bson:"amount" json:"amount"`
	Date      time.Time          `bson:"date" json:"date"`
	Type      PaymentType        `bson:"type" json:"type"`

	// --- Package ---
	PackageSize       *int `bson:"packageSize,omitempty" json:"packageSize,omitempty"`
	RemainingSessions *int `bson:"remainingSessions,omitempty" json:"remainingSessions,omitempty"`

	// --- Subscription ---
	SubscriptionDays *int       `bson:"subscriptionDays,omitempty" json:"subscriptionDays,omitempty"`
	NextPaymentDate  *time.Time `bson:"nextPaymentDate,omitempty" json:"nextPaymentDate,omitempty"`

	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PaymentStats summarises a trainer's income.
type PaymentStats struct {
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AverageCheck   float64 `json:"averageCheck"`
	TotalPayments  int     `json:"totalPayments"`
}
