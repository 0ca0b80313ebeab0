package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	dompayment "github.com/tiendago/storefront/internal/domain/payment"
)

// Simulator is a stand-in gateway for local runs and tests. It draws the
// verdict from configurable rates: [0, approveRate) approves,
// [approveRate, approveRate+declineRate) declines, the remainder stays PENDING.
type Simulator struct {
	mu          sync.Mutex
	random      *rand.Rand
	approveRate float64
	declineRate float64
}

func NewSimulator(approveRate, declineRate float64) *Simulator {
	return &Simulator{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		approveRate: clampRate(approveRate),
		declineRate: clampRate(declineRate),
	}
}

// NewSeededSimulator fixes the RNG seed so tests get a deterministic sequence.
func NewSeededSimulator(seed int64, approveRate, declineRate float64) *Simulator {
	return &Simulator{
		random:      rand.New(rand.NewSource(seed)),
		approveRate: clampRate(approveRate),
		declineRate: clampRate(declineRate),
	}
}

func (s *Simulator) ProcessPayment(ctx context.Context, req dompayment.Request) (*dompayment.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// respect cancellation even though this is mocked
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	status := dompayment.StatusPending
	draw := s.random.Float64()
	switch {
	case draw < s.approveRate:
		status = dompayment.StatusApproved
	case draw < s.approveRate+s.declineRate:
		status = dompayment.StatusDeclined
	}

	now := time.Now().UTC()
	resp := &dompayment.Response{
		ID:            "sim-" + uuid.NewString(),
		Status:        status,
		Reference:     req.Reference,
		AmountInCents: req.AmountInCents,
		Currency:      req.Currency,
		PaymentMethod: req.Method.Type,
		CreatedAt:     now,
	}
	if status != dompayment.StatusPending {
		resp.FinalizedAt = &now
	}
	return resp, nil
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
