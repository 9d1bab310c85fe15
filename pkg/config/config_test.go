package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_SchedulingConfig(t *testing.T) {
	os.Setenv("SCHEDULING_HORIZON_MONTHS", "6")
	os.Setenv("SCHEDULING_RESCHEDULE_LEAD_TIME", "2h")
	defer func() {
		os.Unsetenv("SCHEDULING_HORIZON_MONTHS")
		os.Unsetenv("SCHEDULING_RESCHEDULE_LEAD_TIME")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 6, cfg.Scheduling.HorizonMonths)
	assert.Equal(t, 2*time.Hour, cfg.Scheduling.RescheduleLeadTime)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("SCHEDULING_HORIZON_MONTHS")
	os.Unsetenv("SCHEDULING_RESCHEDULE_LEAD_TIME")
	os.Unsetenv("DB_NAME")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 3, cfg.Scheduling.HorizonMonths)
	assert.Equal(t, time.Hour, cfg.Scheduling.RescheduleLeadTime)
	assert.Equal(t, 10*time.Second, cfg.Scheduling.SlotLockTTL)
	assert.Equal(t, "clinic_scheduling", cfg.Database.Database)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "clinic_scheduling",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=postgres password=secret dbname=clinic_scheduling sslmode=disable",
		cfg.DatabaseDSN(),
	)
}
