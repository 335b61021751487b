package cron

import (
	"fmt"
	"time"

	"github.com/klncollege/od-provider/model"
)

// PurgeExpiredOTPs deletes password OTPs whose expiry has passed. Used
// codes are kept until they expire so replays fail loudly.
func (m *CronManager) PurgeExpiredOTPs() {
	jobName := "purge_expired_otps"

	res := m.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.PasswordOTP{})
	if res.Error != nil {
		m.logJobError(jobName, res.Error)
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired OTP(s)", res.RowsAffected))
}

// PurgeExpiredVerifications deletes email verification tokens past expiry.
func (m *CronManager) PurgeExpiredVerifications() {
	jobName := "purge_expired_verifications"

	res := m.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.EmailVerificationToken{})
	if res.Error != nil {
		m.logJobError(jobName, res.Error)
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired verification token(s)", res.RowsAffected))
}

// PurgeRevokedTokens deletes revoked-token rows whose JWTs have expired on
// their own; the blacklist no longer needs them.
func (m *CronManager) PurgeRevokedTokens() {
	jobName := "purge_revoked_tokens"

	res := m.db.
		Where("expires_at < ?", time.Now()).
		Delete(&model.RevokedToken{})
	if res.Error != nil {
		m.logJobError(jobName, res.Error)
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("removed %d stale revoked token(s)", res.RowsAffected))
}
