package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jcalderone/barsim/src/logger"
	"github.com/jcalderone/barsim/src/models"
	"github.com/jcalderone/barsim/src/report"
)

func InitPostgresWithUrl(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.NewLogrusLogger().LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.AutoMigrate(&TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.AutoMigrate(&EquityPlotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func InitPostgres(host, port, user, password, dbName string) (*gorm.DB, error) {
	url := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", host, user, password, dbName, port)
	return InitPostgresWithUrl(url)
}

// SaveRun persists a completed run, its fills, and its equity curve in one
// transaction and returns the run id assigned to them.
func SaveRun(db *gorm.DB, symbol string, startedAt time.Time, summary report.Summary, fills []*models.Trade, equityCurve []models.EquityRecord) (uuid.UUID, error) {
	runID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(newRunRecord(runID, symbol, startedAt, summary)); result.Error != nil {
			return fmt.Errorf("failed to save run record: %w", result.Error)
		}

		for _, fill := range fills {
			if result := tx.Create(newTradeRecord(runID, fill)); result.Error != nil {
				return fmt.Errorf("failed to save trade record: %w", result.Error)
			}
		}

		for _, rec := range equityCurve {
			record := &EquityPlotRecord{RunID: runID, Timestamp: rec.Time, Equity: rec.Equity}
			if result := tx.Create(record); result.Error != nil {
				return fmt.Errorf("failed to save equity plot record: %w", result.Error)
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return runID, nil
}
