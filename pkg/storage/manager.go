package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Config selects and configures the disks.
type Config struct {
	Default   string // "local" or "s3"
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// ConfigFromEnv reads STORAGE_* and S3_* keys.
func ConfigFromEnv() Config {
	return Config{
		Default:   config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	}
}

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// New always boots the local disk and boots S3 when a bucket is configured.
// Asking for s3 as the default without a working S3 disk is an error.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	m := &Manager{
		disks:       map[string]Disk{"local": NewLocalDisk(cfg.LocalRoot, cfg.LocalURL)},
		defaultDisk: cfg.Default,
	}
	if m.defaultDisk == "" {
		m.defaultDisk = "local"
	}

	if cfg.S3.Bucket != "" {
		d, err := NewS3Disk(ctx, cfg.S3)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	if _, ok := m.disks[m.defaultDisk]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", m.defaultDisk)
	}
	return m, nil
}

// Register plugs in a disk under name.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Disk returns the named disk.
func (m *Manager) Disk(name string) (Disk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	return d, ok
}

// Default returns the disk selected by STORAGE_DISK.
func (m *Manager) Default() Disk {
	d, _ := m.Disk(m.defaultDisk)
	return d
}

// Local returns the local disk, which backs the /uploads static route.
func (m *Manager) Local() *LocalDisk {
	d, _ := m.Disk("local")
	local, _ := d.(*LocalDisk)
	return local
}
