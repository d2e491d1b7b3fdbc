package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOTPUpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	email := uniqueEmail("otp")
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Microsecond)

	require.NoError(t, testStore.UpsertOTP(ctx, email, "123456", exp))

	otp, err := testStore.GetOTP(ctx, email)
	require.NoError(t, err)
	require.Equal(t, "123456", otp.Code)
	require.WithinDuration(t, exp, otp.ExpiresAt, time.Millisecond)

	require.NoError(t, testStore.UpsertOTP(ctx, email, "654321", exp.Add(time.Minute)))
	otp, err = testStore.GetOTP(ctx, email)
	require.NoError(t, err)
	require.Equal(t, "654321", otp.Code)

	require.NoError(t, testStore.DeleteOTP(ctx, email))
	otp, err = testStore.GetOTP(ctx, email)
	require.NoError(t, err)
	require.Nil(t, otp)
}

func TestRecordOTPFailure(t *testing.T) {
	ctx := context.Background()
	email := uniqueEmail("otp-fail")
	exp := time.Now().Add(5 * time.Minute)

	attempts, err := testStore.RecordOTPFailure(ctx, email)
	require.NoError(t, err)
	require.Zero(t, attempts)

	require.NoError(t, testStore.UpsertOTP(ctx, email, "123456", exp))
	for want := 1; want <= 3; want++ {
		attempts, err = testStore.RecordOTPFailure(ctx, email)
		require.NoError(t, err)
		require.Equal(t, want, attempts)
	}

	require.NoError(t, testStore.UpsertOTP(ctx, email, "654321", exp))
	attempts, err = testStore.RecordOTPFailure(ctx, email)
	require.NoError(t, err)
	require.Equal(t, 1, attempts, "a fresh code starts a fresh count")
}

func TestResetGrant(t *testing.T) {
	ctx := context.Background()
	email := uniqueEmail("grant")
	now := time.Now()

	ok, err := testStore.ConsumeResetGrant(ctx, email, now)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, testStore.CreateResetGrant(ctx, email, now.Add(10*time.Minute)))
	ok, err = testStore.ConsumeResetGrant(ctx, email, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = testStore.ConsumeResetGrant(ctx, email, now)
	require.NoError(t, err)
	require.False(t, ok, "grant is single use")

	require.NoError(t, testStore.CreateResetGrant(ctx, email, now.Add(-time.Second)))
	ok, err = testStore.ConsumeResetGrant(ctx, email, now)
	require.NoError(t, err)
	require.False(t, ok, "expired grant is rejected")
}
