package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/flox1an/nostube-imgproxy/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	BindAddr string

	CacheDir      string
	CacheTTL      time.Duration
	FetchTimeout  time.Duration
	MaxImageBytes int64
	MaxFFmpegJobs int64

	MetricsEnabled bool

	// Derived paths.
	OriginalCacheDir  string
	ProcessedCacheDir string
}

// LoadConfig loads and validates configuration from environment
// variables, logging every resolved value under a banner section.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	bindAddr := getEnv("BIND_ADDR", ":8080")
	cacheDir := getEnv("CACHE_DIR", "/cache")
	cacheTTLSecs := getEnvInt("CACHE_TTL_SECS", 86400)
	fetchTimeoutSecs := getEnvInt("FETCH_TIMEOUT_SECS", 10)
	maxImageBytes := getEnvInt64("MAX_IMAGE_BYTES", 16*1024*1024)
	maxFFmpegJobs := getEnvInt64("MAX_FFMPEG_CONCURRENT", 8)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  BIND_ADDR:             %s", bindAddr)
	logging.Info("  CACHE_DIR:             %s", cacheDir)
	logging.Info("  CACHE_TTL_SECS:        %d", cacheTTLSecs)
	logging.Info("  FETCH_TIMEOUT_SECS:    %d", fetchTimeoutSecs)
	logging.Info("  MAX_IMAGE_BYTES:       %d", maxImageBytes)
	logging.Info("  MAX_FFMPEG_CONCURRENT: %d", maxFFmpegJobs)
	logging.Info("  METRICS_ENABLED:       %v", metricsEnabled)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	cacheDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}

	cfg := &Config{
		BindAddr:          bindAddr,
		CacheDir:          cacheDir,
		CacheTTL:          time.Duration(cacheTTLSecs) * time.Second,
		FetchTimeout:      time.Duration(fetchTimeoutSecs) * time.Second,
		MaxImageBytes:     maxImageBytes,
		MaxFFmpegJobs:     maxFFmpegJobs,
		MetricsEnabled:    metricsEnabled,
		OriginalCacheDir:  filepath.Join(cacheDir, "original"),
		ProcessedCacheDir: filepath.Join(cacheDir, "processed"),
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureWritableDir(cfg.OriginalCacheDir, "original cache"); err != nil {
		return nil, fmt.Errorf("original cache directory error: %w", err)
	}
	if err := ensureWritableDir(cfg.ProcessedCacheDir, "processed cache"); err != nil {
		return nil, fmt.Errorf("processed cache directory error: %w", err)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("FFMPEG CHECK")
	logging.Info("------------------------------------------------------------")
	if err := checkFFmpeg(); err != nil {
		return nil, fmt.Errorf("ffmpeg check failed: %w", err)
	}

	return cfg, nil
}

// checkFFmpeg verifies ffmpeg is on PATH and runnable, failing fast at
// startup rather than on the first frame-extraction request.
func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  ffmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, "ffmpeg", "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to run ffmpeg -version: %w", err)
	}

	if lines := strings.Split(string(output), "\n"); len(lines) > 0 {
		logging.Info("  [OK] %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func ensureWritableDir(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove write test file %s: %v", testFile, err)
	}

	logging.Info("  [OK] %s directory ready: %s", name, path)
	return nil
}

func printBanner() {
	fmt.Println("------------------------------------------------------------")
	fmt.Println("  media transformation proxy")
	fmt.Println("------------------------------------------------------------")
	logging.Info("  Started: %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:     %s", runtime.Version())
	logging.Info("  OS/Arch:        %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available: %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:     %d", runtime.GOMAXPROCS(0))
	logging.Info("")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
