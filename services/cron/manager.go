package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/services/payment"
)

// CronManager schedules the background maintenance jobs and records
// each run in cron_job_logs.
type CronManager struct {
	cron       *cron.Cron
	db         *gorm.DB
	paymentSvc *payment.Service
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, paymentSvc *payment.Service) *CronManager {
	return &CronManager{
		cron:       cron.New(cron.WithSeconds()),
		db:         db,
		paymentSvc: paymentSvc,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 15 minutes: purge expired OTP codes and reset tokens
	_, err := m.cron.AddFunc("0 */15 * * * *", func() {
		m.run("purge_expired_codes", m.PurgeExpiredCodes)
	})
	if err != nil {
		return err
	}

	// Every 30 minutes: sweep pending purchases older than 24 hours
	_, err = m.cron.AddFunc("0 */30 * * * *", func() {
		m.run("sweep_stale_purchases", m.SweepStalePurchases)
	})
	if err != nil {
		return err
	}

	// Every hour: cleanup expired JWT blacklist entries
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.run("cleanup_token_blacklist", m.CleanupTokenBlacklist)
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// run executes a job and records its outcome
func (m *CronManager) run(jobName string, job func() (string, error)) {
	started := time.Now()
	log.Printf("[CRON] Starting job: %s", jobName)

	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: started,
	}
	m.db.Create(&entry)

	message, err := job()

	completed := time.Now()
	updates := map[string]interface{}{
		"completed_at": completed,
		"duration":     completed.Sub(started).Milliseconds(),
	}
	if err != nil {
		log.Printf("[CRON] Job %s failed: %v", jobName, err)
		updates["status"] = "failed"
		updates["error_msg"] = err.Error()
	} else {
		log.Printf("[CRON] Job %s completed: %s", jobName, message)
		updates["status"] = "completed"
		updates["message"] = message
	}
	m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates)
}
