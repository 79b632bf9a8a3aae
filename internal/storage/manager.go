package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/clearskies/obsplan/internal/storage/timescaledb"
	"github.com/clearskies/obsplan/internal/types"
	"github.com/clearskies/obsplan/pkg/config"
)

// Manager holds our active storage backends
type Manager struct {
	Engines           []Engine
	RecordDistributor chan types.EvaluationRecord
}

// Engine holds a backend storage engine's interface as well as a channel
// for passing evaluation records to the engine
type Engine struct {
	Engine StorageEngineInterface
	C      chan<- types.EvaluationRecord
}

// NewManager creates a Manager object, populated with all configured storage
// engines. When no archive backend is configured the manager silently
// discards records.
func NewManager(ctx context.Context, wg *sync.WaitGroup, provider config.ConfigProvider) (*Manager, error) {
	storageConfig, err := provider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %w", err)
	}

	m := &Manager{
		RecordDistributor: make(chan types.EvaluationRecord, 20),
	}

	go m.startRecordDistributor(ctx, wg)

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		engine, err := timescaledb.New(ctx, storageConfig.TimescaleDB.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		m.Engines = append(m.Engines, Engine{
			Engine: engine,
			C:      engine.StartStorageEngine(ctx, wg),
		})
	}

	return m, nil
}

// startRecordDistributor receives evaluation records and fans them out to
// the storage backends
func (m *Manager) startRecordDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-m.RecordDistributor:
			for _, e := range m.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}
