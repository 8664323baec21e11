package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehunt/api/model"
)

const stalePurchaseAge = 24 * time.Hour

// PurgeExpiredCodes removes expired OTP codes and spent or expired
// password reset tokens.
func (m *CronManager) PurgeExpiredCodes() (string, error) {
	now := time.Now()

	otps := m.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&model.OTPCode{})
	if otps.Error != nil {
		return "", otps.Error
	}

	tokens := m.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&model.PasswordResetToken{})
	if tokens.Error != nil {
		return "", tokens.Error
	}

	return fmt.Sprintf("removed %d otp codes, %d reset tokens",
		otps.RowsAffected, tokens.RowsAffected), nil
}

// SweepStalePurchases deletes pending purchases that were never verified
// or cancelled. Paid rows are never touched.
func (m *CronManager) SweepStalePurchases() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := m.paymentSvc.SweepStalePending(ctx, stalePurchaseAge)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d stale pending purchases", removed), nil
}

// CleanupTokenBlacklist removes expired JWT blacklist entries. Expired
// tokens fail validation on their own, so the rows are only bookkeeping.
func (m *CronManager) CleanupTokenBlacklist() (string, error) {
	res := m.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	if res.Error != nil {
		return "", res.Error
	}
	return fmt.Sprintf("removed %d expired blacklist entries", res.RowsAffected), nil
}
