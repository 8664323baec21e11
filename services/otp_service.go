package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
)

var (
	ErrOTPInvalid = errors.New("invalid or expired code")
)

const otpTTL = 10 * time.Minute

// OTPService issues and validates short-lived numeric codes for account
// activation and email-based flows.
type OTPService struct {
	db *gorm.DB
}

// NewOTPService creates a new OTP service
func NewOTPService(db *gorm.DB) *OTPService {
	return &OTPService{db: db}
}

// generateCode returns a random 6-digit code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue creates a fresh code for the user and purpose, invalidating any
// previous unconsumed codes for the same purpose.
func (s *OTPService) Issue(ctx context.Context, userID uint, purpose string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("user_id = ? AND purpose = ? AND used_at IS NULL", userID, purpose).
			Delete(&model.OTPCode{}).Error; err != nil {
			return err
		}
		otp := model.OTPCode{
			UserID:    userID,
			Code:      code,
			Purpose:   purpose,
			ExpiresAt: time.Now().Add(otpTTL),
		}
		return tx.Create(&otp).Error
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// Consume validates a code for the user and purpose and marks it used.
// Codes are single-use.
func (s *OTPService) Consume(ctx context.Context, userID uint, code, purpose string) error {
	var otp model.OTPCode
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND purpose = ?", userID, code, purpose).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	if otp.IsUsed() || otp.IsExpired() {
		return ErrOTPInvalid
	}

	otp.MarkAsUsed()
	return s.db.WithContext(ctx).Model(&model.OTPCode{}).
		Where("id = ?", otp.ID).
		Update("used_at", otp.UsedAt).Error
}
