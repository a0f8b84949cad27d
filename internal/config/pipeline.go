package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineMaxAttempts     = "BINDERY_PIPELINE_MAX_ATTEMPTS"
	EnvPipelineDispatchTimeout = "BINDERY_PIPELINE_DISPATCH_TIMEOUT"
	EnvPipelineSafetyURL       = "BINDERY_PIPELINE_SAFETY_URL"
	EnvPipelineOCRURL          = "BINDERY_PIPELINE_OCR_URL"
	EnvPipelineFaceURL         = "BINDERY_PIPELINE_FACE_URL"
	EnvPipelineTilerURL        = "BINDERY_PIPELINE_TILER_URL"
)

// PipelineConfig holds retry policy and worker endpoint settings.
type PipelineConfig struct {
	MaxAttempts     int    `toml:"max_attempts"`
	DispatchTimeout string `toml:"dispatch_timeout"`
	SafetyURL       string `toml:"safety_url"`
	OCRURL          string `toml:"ocr_url"`
	FaceURL         string `toml:"face_url"`
	TilerURL        string `toml:"tiler_url"`
}

// DispatchTimeoutDuration returns DispatchTimeout as a time.Duration.
func (c *PipelineConfig) DispatchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DispatchTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.DispatchTimeout != "" {
		c.DispatchTimeout = overlay.DispatchTimeout
	}
	if overlay.SafetyURL != "" {
		c.SafetyURL = overlay.SafetyURL
	}
	if overlay.OCRURL != "" {
		c.OCRURL = overlay.OCRURL
	}
	if overlay.FaceURL != "" {
		c.FaceURL = overlay.FaceURL
	}
	if overlay.TilerURL != "" {
		c.TilerURL = overlay.TilerURL
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.DispatchTimeout == "" {
		c.DispatchTimeout = "10s"
	}
	if c.SafetyURL == "" {
		c.SafetyURL = "http://localhost:9001/scan"
	}
	if c.OCRURL == "" {
		c.OCRURL = "http://localhost:9002/ocr"
	}
	if c.FaceURL == "" {
		c.FaceURL = "http://localhost:9003/detect"
	}
	if c.TilerURL == "" {
		c.TilerURL = "http://localhost:9004/tile"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPipelineDispatchTimeout); v != "" {
		c.DispatchTimeout = v
	}
	if v := os.Getenv(EnvPipelineSafetyURL); v != "" {
		c.SafetyURL = v
	}
	if v := os.Getenv(EnvPipelineOCRURL); v != "" {
		c.OCRURL = v
	}
	if v := os.Getenv(EnvPipelineFaceURL); v != "" {
		c.FaceURL = v
	}
	if v := os.Getenv(EnvPipelineTilerURL); v != "" {
		c.TilerURL = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if _, err := time.ParseDuration(c.DispatchTimeout); err != nil {
		return fmt.Errorf("invalid dispatch_timeout: %w", err)
	}
	return nil
}
