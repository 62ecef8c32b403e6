// Package preflight verifies the host can complete a run before any page is
// fetched.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"go/version"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
)

var ErrPreflight = errors.New("preflight check failed")

const bytesPerGB = 1 << 30

// CheckRuntime fails when the running Go toolchain is older than minVersion.
// Development builds are accepted.
func CheckRuntime(minVersion string) (string, error) {
	current := runtime.Version()
	if minVersion == "" || !version.IsValid(current) {
		return current, nil
	}
	if version.Compare(current, minVersion) < 0 {
		return current, fmt.Errorf("%w: %s or newer is required, running %s", ErrPreflight, minVersion, current)
	}
	return current, nil
}

// CheckDiskSpace fails when fewer than minFreeGB gigabytes are free at path.
func CheckDiskSpace(ctx context.Context, path string, minFreeGB uint64) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: disk usage of %s: %v", ErrPreflight, path, err)
	}
	freeGB := usage.Free / bytesPerGB
	if freeGB < minFreeGB {
		return freeGB, fmt.Errorf("%w: not enough disk space (%d GB free, %d GB required)", ErrPreflight, freeGB, minFreeGB)
	}
	return freeGB, nil
}

// CheckNetwork opens and closes a TCP connection to addr.
func CheckNetwork(ctx context.Context, addr string, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: unable to reach %s: %v", ErrPreflight, addr, err)
	}
	return conn.Close()
}

// CheckEnv fails when any of names is unset, listing all missing names.
func CheckEnv(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %s", ErrPreflight, strings.Join(missing, ", "))
	}
	return nil
}

// Run executes every configured check and stops at the first failure.
func Run(ctx context.Context, cfg config.PreflightConfig, log logger.Logger) error {
	current, err := CheckRuntime(cfg.MinGoVersion)
	if err != nil {
		return err
	}
	log.Info("go runtime ok", logger.String("version", current))

	if cfg.DiskPath != "" && cfg.MinFreeDiskGB > 0 {
		freeGB, err := CheckDiskSpace(ctx, cfg.DiskPath, cfg.MinFreeDiskGB)
		if err != nil {
			return err
		}
		log.Info("disk space ok", logger.String("path", cfg.DiskPath), logger.Any("free_gb", freeGB))
	}

	if cfg.NetworkAddr != "" {
		if err := CheckNetwork(ctx, cfg.NetworkAddr, cfg.NetworkTimeout); err != nil {
			return err
		}
		log.Info("network connectivity ok", logger.String("addr", cfg.NetworkAddr))
	}

	if err := CheckEnv(cfg.RequiredEnv); err != nil {
		return err
	}
	if len(cfg.RequiredEnv) > 0 {
		log.Info("environment variables ok", logger.Strings("names", cfg.RequiredEnv))
	}
	return nil
}
