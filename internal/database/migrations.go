package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/logger"
	"github.com/flowtrack/flowtrack-api/internal/models"
)

// ensureStatusEnum creates the PostgreSQL enum type used by tasks.status.
// Other dialects declare the enumeration inline on the column.
func ensureStatusEnum(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	sql := fmt.Sprintf(`DO $$ BEGIN
	CREATE TYPE %s AS ENUM ('TODO', 'IN_PROGRESS', 'DONE');
EXCEPTION
	WHEN duplicate_object THEN NULL;
END $$;`, models.TaskStatusEnumName)
	if err := db.Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", models.TaskStatusEnumName, err)
	}
	return nil
}

type index struct {
	name    string
	columns string
}

// taskIndexes back the filters and the stable ordering used when listing tasks.
var taskIndexes = []index{
	{"idx_tasks_status", "status"},
	{"idx_tasks_assigned_to_id", "assigned_to_id"},
	{"idx_tasks_created_by_id", "created_by_id"},
	{"idx_tasks_created_at_id", "created_at, id"},
}

// AddIndexes adds the task indexes that AutoMigrate does not declare.
func AddIndexes(db *gorm.DB) error {
	log := logger.Get()
	migrator := db.Migrator()

	for _, idx := range taskIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("columns", idx.columns).Msg("created index")
	}

	return nil
}
