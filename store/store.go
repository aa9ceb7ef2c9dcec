// Package store persists resolved battles and their logs through gorm, on a
// local SQLite file by default or on Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nathoo/spiritmaster/config"
	"github.com/nathoo/spiritmaster/engine"
	"github.com/nathoo/spiritmaster/types"
)

// ErrBattleNotFound is returned when a battle ID is not in the store.
var ErrBattleNotFound = errors.New("battle not found")

const logBatchSize = 500

var _ engine.BattleSink = (*Store)(nil)

// Store is a battle-log sink backed by a SQL database.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
	Now    func() time.Time
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.DBConfig, log zerolog.Logger) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		db, err = openSqlite(cfg.Path, log)
	case "postgres":
		db, err = openPostgres(cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}

	log.Info().Str("driver", db.Dialector.Name()).Msg("Migrating schema")
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{DB: db, Logger: log, Now: time.Now}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        logBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// openSqlite opens a SQLite file, or a private in-memory database when path is empty.
func openSqlite(path string, log zerolog.Logger) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// An in-memory database is private to its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if path == "" {
		log.Info().Msg("Using in-memory SQLite DB")
	} else {
		log.Info().Str("path", path).Msg("Using local SQLite DB")
	}
	return db, nil
}

func openPostgres(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Msg("Connecting to Postgres DB")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	return db, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBattle writes a battle and its full log in one transaction and returns
// the new battle ID.
func (s *Store) SaveBattle(ctx context.Context, rec types.BattleRecord) (string, error) {
	battle := Battle{
		ID:          uuid.NewString(),
		Attacker:    rec.Attacker,
		Defender:    rec.Defender,
		Outcome:     string(rec.Outcome),
		Rounds:      engine.Rounds(rec.Result),
		Seed:        rec.Seed,
		RNGPosition: rec.RNGPosition,
		GoldStolen:  rec.GoldStolen,
		CreatedAt:   s.Now().UTC(),
	}

	rows := make([]BattleLogRow, len(rec.Result.Log))
	for i, e := range rec.Result.Log {
		rows[i] = BattleLogRow{
			BattleID:     battle.ID,
			Seq:          i,
			Turn:         e.Round,
			Timestamp:    e.Timestamp.UTC(),
			ActorID:      e.ActorID,
			Action:       string(e.Action),
			TargetID:     e.TargetID,
			Detail:       e.Detail,
			Value:        e.Value,
			HealthBefore: e.HealthBefore,
			HealthAfter:  e.HealthAfter,
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&battle).Error; err != nil {
			return fmt.Errorf("insert battle: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, logBatchSize).Error; err != nil {
			return fmt.Errorf("insert battle log: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.Logger.Debug().Str("battle", battle.ID).Int("entries", len(rows)).Msg("Battle written")
	return battle.ID, nil
}

// RecentBattles returns up to limit battles, newest first.
func (s *Store) RecentBattles(ctx context.Context, limit int) ([]types.BattleSummary, error) {
	var battles []Battle
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&battles).Error
	if err != nil {
		return nil, fmt.Errorf("query battles: %w", err)
	}

	out := make([]types.BattleSummary, len(battles))
	for i, b := range battles {
		out[i] = types.BattleSummary{
			ID:         b.ID,
			Attacker:   b.Attacker,
			Defender:   b.Defender,
			Outcome:    types.Outcome(b.Outcome),
			Rounds:     b.Rounds,
			GoldStolen: b.GoldStolen,
			CreatedAt:  b.CreatedAt,
		}
	}
	return out, nil
}

// BattleLog returns the stored log of one battle in original order.
func (s *Store) BattleLog(ctx context.Context, id string) ([]types.LogEntry, error) {
	db := s.DB.WithContext(ctx)

	var battle Battle
	if err := db.Where("id = ?", id).First(&battle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBattleNotFound, id)
		}
		return nil, fmt.Errorf("query battle: %w", err)
	}

	var rows []BattleLogRow
	if err := db.Where("battle_id = ?", id).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query battle log: %w", err)
	}

	log := make([]types.LogEntry, len(rows))
	for i, r := range rows {
		log[i] = types.LogEntry{
			Round:        r.Turn,
			Timestamp:    r.Timestamp,
			ActorID:      r.ActorID,
			Action:       types.ActionKind(r.Action),
			TargetID:     r.TargetID,
			Detail:       r.Detail,
			Value:        r.Value,
			HealthBefore: r.HealthBefore,
			HealthAfter:  r.HealthAfter,
		}
	}
	return log, nil
}
