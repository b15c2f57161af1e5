package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-pilot/internal/kvstore"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// captureSender records dispatched codes instead of delivering them.
type captureSender struct {
	lastEmailBody string
	lastSMSBody   string
	failNext      error
}

func (s *captureSender) SendEmail(_ context.Context, _, _, body string) error {
	if s.failNext != nil {
		return s.failNext
	}
	s.lastEmailBody = body
	return nil
}

func (s *captureSender) SendSMS(_ context.Context, _, body string) error {
	if s.failNext != nil {
		return s.failNext
	}
	s.lastSMSBody = body
	return nil
}

func newTestService(t *testing.T) (*OTPService, *kvstore.MemoryStore, *captureSender) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	sender := &captureSender{}
	svc := NewOTPService(store, sender, zap.NewNop(), 10*time.Minute)
	return svc, store, sender
}

// storedCode reads the live code straight from the store, standing in for
// the out-of-band channel the owner would receive it on.
func storedCode(t *testing.T, store *kvstore.MemoryStore, channel Channel, identifier string) string {
	t.Helper()
	item, err := store.Get(context.Background(), storeKey(channel, identifier))
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Value
}

func TestOTP_RoundTripSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.Request(ctx, ChannelEmail, "a@x.com"))
	code := storedCode(t, store, ChannelEmail, "a@x.com")
	require.Len(t, code, 6)

	require.NoError(t, svc.Verify(ctx, ChannelEmail, "a@x.com", code))

	// Second use of the same code: entry is gone.
	err := svc.Verify(ctx, ChannelEmail, "a@x.com", code)
	require.True(t, apperrors.IsCode(err, "OTP_NOT_FOUND"), "got %v", err)
}

func TestOTP_RerequestInvalidatesPriorCode(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.Request(ctx, ChannelPhone, "+15550001111"))
	first := storedCode(t, store, ChannelPhone, "+15550001111")

	require.NoError(t, svc.Request(ctx, ChannelPhone, "+15550001111"))
	second := storedCode(t, store, ChannelPhone, "+15550001111")

	if first != second {
		err := svc.Verify(ctx, ChannelPhone, "+15550001111", first)
		require.True(t, apperrors.IsCode(err, "OTP_MISMATCH"), "got %v", err)
	}
	require.NoError(t, svc.Verify(ctx, ChannelPhone, "+15550001111", second))
}

func TestOTP_MismatchRetainsEntryForRetry(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.Request(ctx, ChannelEmail, "a@x.com"))
	code := storedCode(t, store, ChannelEmail, "a@x.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err := svc.Verify(ctx, ChannelEmail, "a@x.com", wrong)
	require.True(t, apperrors.IsCode(err, "OTP_MISMATCH"), "got %v", err)

	// The entry survives the mismatch, so the right code still works.
	require.NoError(t, svc.Verify(ctx, ChannelEmail, "a@x.com", code))
}

func TestOTP_ExpiredCodeDeletedOnVerify(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	now := time.Now()
	svc.WithClock(func() time.Time { return now })
	require.NoError(t, svc.Request(ctx, ChannelEmail, "a@x.com"))
	code := storedCode(t, store, ChannelEmail, "a@x.com")

	svc.WithClock(func() time.Time { return now.Add(11 * time.Minute) })

	err := svc.Verify(ctx, ChannelEmail, "a@x.com", code)
	require.True(t, apperrors.IsCode(err, "OTP_EXPIRED"), "got %v", err)

	// The expired entry was consumed; a retry reports not-found.
	err = svc.Verify(ctx, ChannelEmail, "a@x.com", code)
	require.True(t, apperrors.IsCode(err, "OTP_NOT_FOUND"), "got %v", err)
}

func TestOTP_UnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Verify(context.Background(), ChannelEmail, "nobody@x.com", "123456")
	require.True(t, apperrors.IsCode(err, "OTP_NOT_FOUND"), "got %v", err)
}

func TestOTP_DeliveryFailureKeepsStoredCode(t *testing.T) {
	ctx := context.Background()
	svc, store, sender := newTestService(t)

	sender.failNext = errors.New("smtp unavailable")
	err := svc.Request(ctx, ChannelEmail, "a@x.com")
	require.True(t, apperrors.IsCode(err, "DELIVERY_FAILURE"), "got %v", err)

	// The code was stored before dispatch; the owner may still learn it.
	code := storedCode(t, store, ChannelEmail, "a@x.com")
	require.NoError(t, svc.Verify(ctx, ChannelEmail, "a@x.com", code))
}

func TestOTP_SweepDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	now := time.Now()
	svc.WithClock(func() time.Time { return now })
	require.NoError(t, svc.Request(ctx, ChannelEmail, "a@x.com"))
	require.NoError(t, svc.Request(ctx, ChannelEmail, "b@x.com"))

	removed, err := store.Sweep(ctx, now.Add(11*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, removed)
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}
