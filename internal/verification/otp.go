// Package verification implements the one-time-code lifecycle used to prove
// ownership of an email address or phone number.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-pilot/internal/kvstore"
	"github.com/spec-kit/parking-pilot/internal/notification"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// Channel identifies how the code reaches its owner.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// OTPService generates, stores and consumes one-time codes. At most one live
// code exists per (channel, identifier); re-requesting overwrites the prior
// code, and a matched code is deleted before success is reported.
type OTPService struct {
	store  kvstore.Store
	sender notification.Sender
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewOTPService builds the service.
func NewOTPService(store kvstore.Store, sender notification.Sender, logger *zap.Logger, ttl time.Duration) *OTPService {
	return &OTPService{
		store:  store,
		sender: sender,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for expiry tests.
func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

// Request generates and dispatches a fresh code for the (channel, identifier)
// pair. A prior pending code for the same pair is overwritten. A delivery
// failure is reported to the caller but leaves the stored code intact: the
// owner may still receive it late or ask for a resend.
func (s *OTPService) Request(ctx context.Context, channel Channel, identifier string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	item := kvstore.Item{Value: code, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.store.Set(ctx, storeKey(channel, identifier), item); err != nil {
		return err
	}

	if err := s.dispatch(ctx, channel, identifier, code); err != nil {
		s.logger.Warn("verification code delivery failed",
			zap.String("channel", string(channel)),
			zap.Error(err))
		return apperrors.NewDeliveryFailure(err)
	}
	return nil
}

// Verify consumes a submitted code. Codes are single use: an exact match
// deletes the entry, so a replay reports not-found. A mismatch keeps the
// entry so the owner may retry until expiry.
func (s *OTPService) Verify(ctx context.Context, channel Channel, identifier, submitted string) error {
	key := storeKey(channel, identifier)

	item, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return apperrors.NewOTPNotFound()
	}
	if item.Expired(s.now()) {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
		return apperrors.NewOTPExpired()
	}
	if item.Value != submitted {
		return apperrors.NewOTPMismatch()
	}
	return s.store.Delete(ctx, key)
}

// RunSweeper periodically drops expired codes until ctx is cancelled,
// bounding memory held by abandoned verification attempts.
func (s *OTPService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.store.Sweep(ctx, s.now())
			if err != nil {
				s.logger.Warn("otp sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Debug("otp sweep removed expired codes", zap.Int("count", removed))
			}
		}
	}
}

func (s *OTPService) dispatch(ctx context.Context, channel Channel, identifier, code string) error {
	switch channel {
	case ChannelPhone:
		return s.sender.SendSMS(ctx, identifier,
			fmt.Sprintf("Your parking pilot verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())))
	default:
		return s.sender.SendEmail(ctx, identifier,
			"Parking Pilot - Email Verification",
			fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())))
	}
}

func storeKey(channel Channel, identifier string) string {
	return string(channel) + "_" + identifier
}

// generateCode returns a uniformly distributed 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
