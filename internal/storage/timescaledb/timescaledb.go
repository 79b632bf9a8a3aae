// Package timescaledb archives evaluation records to a TimescaleDB (or
// plain PostgreSQL) database.
package timescaledb

import (
	"context"
	"sync"
	"time"

	"github.com/clearskies/obsplan/internal/log"
	"github.com/clearskies/obsplan/internal/types"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const createHypertableSQL = `SELECT create_hypertable('evaluations', 'evaluated_at', if_not_exists => TRUE)`

// Storage holds the connection for a TimescaleDB storage backend
type Storage struct {
	db *gorm.DB
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(&types.EvaluationRecord{}); err != nil {
		log.Warn("warning: could not migrate evaluations table:", err)
		return nil, err
	}

	// Hypertable creation fails on plain PostgreSQL; the archive still works
	// without it.
	if err := db.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		log.Warnf("could not create hypertable (plain PostgreSQL?): %v", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive evaluation records
// and write them to TimescaleDB
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.EvaluationRecord {
	log.Info("starting TimescaleDB storage engine...")
	recordChan := make(chan types.EvaluationRecord, 10)
	go s.processRecords(ctx, wg, recordChan)
	return recordChan
}

func (s *Storage) processRecords(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.EvaluationRecord) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreRecord(r); err != nil {
				log.Error("could not store evaluation record:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received, stopping records processor")
			return
		}
	}
}

// StoreRecord stores an evaluation record in TimescaleDB
func (s *Storage) StoreRecord(r types.EvaluationRecord) error {
	return s.db.Create(&r).Error
}
