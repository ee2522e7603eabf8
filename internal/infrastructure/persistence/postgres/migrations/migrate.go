package migrations

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/milestones"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/progress"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/domain/wellness"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/internal/infrastructure/persistence/postgres/connection"
)

// MigrationRecord tracks the migration history
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;unique"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *connection.Database, logger *zap.Logger) error {
	logger.Info("Starting automatic database migration...")

	// Enable UUID extension for PostgreSQL
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		logger.Error("Failed to create UUID extension", zap.Error(err))
		return fmt.Errorf("failed to create UUID extension: %v", err)
	}

	// Create migrations table if it doesn't exist
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		logger.Error("Failed to create migrations table", zap.Error(err))
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	// Start a transaction for the entire migration process
	return db.Transaction(func(tx *gorm.DB) error {
		// Create a wrapped database connection for the transaction
		txDB := &connection.Database{DB: tx}

		// Get the current highest version number
		var lastVersion int
		if err := txDB.Model(&MigrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&lastVersion).Error; err != nil {
			return fmt.Errorf("failed to get last version: %v", err)
		}

		// Define the models in the order they should be migrated
		models := []interface{}{
			&wellness.CompletionEvent{}, // The raw log everything else derives from
			&wellness.DailyProgressRecord{},
			&progress.UserStats{},
			&milestones.MilestoneDefinition{}, // Catalog before rows that reference it
			&milestones.UserMilestone{},
			&milestones.MilestoneProgress{},
		}

		// Migrate each model
		for i, model := range models {
			modelName := fmt.Sprintf("%T", model)

			// Check if this model has been migrated
			var record MigrationRecord
			err := txDB.Where("name = ?", modelName).First(&record).Error
			isNewMigration := err == gorm.ErrRecordNotFound

			// Run the migration
			if err := txDB.AutoMigrate(model); err != nil {
				logger.Error("Failed to migrate model",
					zap.String("model", modelName),
					zap.Error(err),
				)
				return fmt.Errorf("failed to migrate %s: %v", modelName, err)
			}

			// Record the migration if it's new
			if isNewMigration {
				record = MigrationRecord{
					Name:      modelName,
					Version:   lastVersion + i + 1, // Increment version for each new migration
					AppliedAt: time.Now(),
				}
				if err := txDB.Create(&record).Error; err != nil {
					logger.Error("Failed to record migration",
						zap.String("model", modelName),
						zap.Error(err),
					)
					return fmt.Errorf("failed to record migration for %s: %v", modelName, err)
				}
				logger.Info("Applied new migration",
					zap.String("model", modelName),
					zap.Int("version", record.Version),
				)
			}
		}

		// Seed the milestone catalog
		if err := seedMilestoneCatalog(tx); err != nil {
			return err
		}

		logger.Info("Database migration completed successfully")
		return nil
	})
}

// seedMilestoneCatalog creates the default milestone definitions. Codes
// are stable identifiers; reruns only insert what is missing, so edits
// to names or descriptions here do not rewrite existing rows.
func seedMilestoneCatalog(db *gorm.DB) error {
	definitions := []milestones.MilestoneDefinition{
		{Code: "first_steps", Name: "First Steps", Description: "Complete your very first routine", Category: milestones.ScopeOverall, Metric: milestones.MetricTotalCompletions, Threshold: 1, ThresholdType: milestones.ThresholdBoolean, Rarity: milestones.RarityCommon, SortOrder: 10},
		{Code: "getting_started", Name: "Getting Started", Description: "Complete 10 routines across any category", Category: milestones.ScopeOverall, Metric: milestones.MetricTotalCompletions, Threshold: 10, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 20},
		{Code: "committed", Name: "Committed", Description: "Complete 50 routines across any category", Category: milestones.ScopeOverall, Metric: milestones.MetricTotalCompletions, Threshold: 50, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityRare, SortOrder: 30},
		{Code: "century_club", Name: "Century Club", Description: "Complete 100 routines across any category", Category: milestones.ScopeOverall, Metric: milestones.MetricTotalCompletions, Threshold: 100, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityEpic, SortOrder: 40},

		{Code: "mind_apprentice", Name: "Mind Apprentice", Description: "Complete 10 mind routines", Category: milestones.ScopeMind, Metric: milestones.MetricTotalCompletions, Threshold: 10, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 50},
		{Code: "body_apprentice", Name: "Body Apprentice", Description: "Complete 10 body routines", Category: milestones.ScopeBody, Metric: milestones.MetricTotalCompletions, Threshold: 10, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 60},
		{Code: "soul_apprentice", Name: "Soul Apprentice", Description: "Complete 10 soul routines", Category: milestones.ScopeSoul, Metric: milestones.MetricTotalCompletions, Threshold: 10, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 70},
		{Code: "mind_adept", Name: "Mind Adept", Description: "Complete 50 mind routines", Category: milestones.ScopeMind, Metric: milestones.MetricTotalCompletions, Threshold: 50, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityRare, SortOrder: 80},
		{Code: "body_adept", Name: "Body Adept", Description: "Complete 50 body routines", Category: milestones.ScopeBody, Metric: milestones.MetricTotalCompletions, Threshold: 50, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityRare, SortOrder: 90},
		{Code: "soul_adept", Name: "Soul Adept", Description: "Complete 50 soul routines", Category: milestones.ScopeSoul, Metric: milestones.MetricTotalCompletions, Threshold: 50, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityRare, SortOrder: 100},

		{Code: "mind_explorer", Name: "Mind Explorer", Description: "Try 5 different mind routines", Category: milestones.ScopeMind, Metric: milestones.MetricUniqueRoutines, Threshold: 5, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 110},
		{Code: "body_explorer", Name: "Body Explorer", Description: "Try 5 different body routines", Category: milestones.ScopeBody, Metric: milestones.MetricUniqueRoutines, Threshold: 5, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 120},
		{Code: "soul_explorer", Name: "Soul Explorer", Description: "Try 5 different soul routines", Category: milestones.ScopeSoul, Metric: milestones.MetricUniqueRoutines, Threshold: 5, ThresholdType: milestones.ThresholdCount, Rarity: milestones.RarityCommon, SortOrder: 130},

		{Code: "mind_week", Name: "Focused Week", Description: "Keep a 7 day mind streak", Category: milestones.ScopeMind, Metric: milestones.MetricCurrentStreak, Threshold: 7, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityRare, SortOrder: 140},
		{Code: "body_week", Name: "Active Week", Description: "Keep a 7 day body streak", Category: milestones.ScopeBody, Metric: milestones.MetricCurrentStreak, Threshold: 7, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityRare, SortOrder: 150},
		{Code: "soul_week", Name: "Centered Week", Description: "Keep a 7 day soul streak", Category: milestones.ScopeSoul, Metric: milestones.MetricCurrentStreak, Threshold: 7, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityRare, SortOrder: 160},

		{Code: "harmony_week", Name: "Week of Harmony", Description: "Complete all three categories 7 days in a row", Category: milestones.ScopeHarmony, Metric: milestones.MetricCurrentStreak, Threshold: 7, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityRare, SortOrder: 170},
		{Code: "harmony_month", Name: "Month of Harmony", Description: "Complete all three categories 30 days in a row", Category: milestones.ScopeHarmony, Metric: milestones.MetricCurrentStreak, Threshold: 30, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityEpic, SortOrder: 180},
		{Code: "harmony_century", Name: "Harmony Century", Description: "Reach a 100 day harmony streak at any point", Category: milestones.ScopeHarmony, Metric: milestones.MetricLongestStreak, Threshold: 100, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityLegendary, SortOrder: 190},

		{Code: "perfect_week", Name: "Perfect Week", Description: "Record 7 days with every category complete", Category: milestones.ScopeOverall, Metric: milestones.MetricPerfectDays, Threshold: 7, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityEpic, SortOrder: 200},
		{Code: "in_balance", Name: "In Balance", Description: "Reach a harmony score of 80 or higher", Category: milestones.ScopeHarmony, Metric: milestones.MetricHarmonyScore, Threshold: 80, ThresholdType: milestones.ThresholdPercentage, Rarity: milestones.RarityEpic, SortOrder: 210},
		{Code: "dedicated", Name: "Dedicated", Description: "Be active on 30 different days", Category: milestones.ScopeOverall, Metric: milestones.MetricActiveDays, Threshold: 30, ThresholdType: milestones.ThresholdDays, Rarity: milestones.RarityRare, SortOrder: 220},
		{Code: "community_voice", Name: "Community Voice", Description: "Share a milestone to the activity feed", Category: milestones.ScopeOverall, Metric: milestones.MetricMilestonesShared, Threshold: 1, ThresholdType: milestones.ThresholdBoolean, Rarity: milestones.RarityCommon, SortOrder: 230},
	}

	for _, def := range definitions {
		if err := db.Where("code = ?", def.Code).FirstOrCreate(&def).Error; err != nil {
			return fmt.Errorf("failed to seed milestone %s: %w", def.Code, err)
		}
	}

	return nil
}

// GetMigrationHistory returns the history of applied migrations
func GetMigrationHistory(db *connection.Database) ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := db.Order("version ASC").Find(&records).Error
	return records, err
}
