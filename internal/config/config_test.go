package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	for _, key := range []string{"EVALUATION_SERVICE_PORT", "POSTGRES_DB", "EVALUATION_CACHE_TTL",
		"REPORT_URL_EXPIRY", "REPORT_WORKERS", "REPORT_QUEUE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := New()

	assert.Equal(t, "8089", cfg.Port)
	assert.Equal(t, "evaluation", cfg.PostgresCfg.DBname)
	assert.Equal(t, 10*time.Minute, cfg.CacheCfg.EvaluationTTL)
	assert.Equal(t, 15*time.Minute, cfg.MinioCfg.ReportURLExpiry)
	assert.Equal(t, 2, cfg.WorkerCfg.NumWorkers)
	assert.Equal(t, 64, cfg.WorkerCfg.QueueSize)
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("EVALUATION_SERVICE_PORT", "9000")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EVALUATION_CACHE_TTL", "90s")
	t.Setenv("REPORT_WORKERS", "5")

	cfg := New()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "db", cfg.PostgresCfg.Host)
	assert.Equal(t, 3, cfg.RedisCfg.DB)
	assert.Equal(t, 90*time.Second, cfg.CacheCfg.EvaluationTTL)
	assert.Equal(t, 5, cfg.WorkerCfg.NumWorkers)
}

func TestNew_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("EVALUATION_CACHE_TTL", "-5m")
	t.Setenv("REPORT_QUEUE_SIZE", "")

	cfg := New()

	assert.Equal(t, 0, cfg.RedisCfg.DB)
	assert.Equal(t, 10*time.Minute, cfg.CacheCfg.EvaluationTTL)
	assert.Equal(t, 64, cfg.WorkerCfg.QueueSize)
}
