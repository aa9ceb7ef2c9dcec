package store

import "time"

// Battle is one persisted battle header.
type Battle struct {
	ID          string `gorm:"primaryKey;size:36"`
	Attacker    string `gorm:"size:64;index"`
	Defender    string `gorm:"size:64;index"`
	Outcome     string `gorm:"size:16"`
	Rounds      int
	Seed        int64
	RNGPosition int64
	GoldStolen  int
	CreatedAt   time.Time      `gorm:"index:idx_battle_created"`
	Entries     []BattleLogRow `gorm:"foreignKey:BattleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BattleLogRow is one log entry of a battle, ordered by Seq.
type BattleLogRow struct {
	ID           uint   `gorm:"primaryKey"`
	BattleID     string `gorm:"size:36;index:idx_log_battle_seq,priority:1"`
	Seq          int    `gorm:"index:idx_log_battle_seq,priority:2"`
	Turn         int
	Timestamp    time.Time
	ActorID      string `gorm:"size:64"`
	Action       string `gorm:"size:16"`
	TargetID     string `gorm:"size:64"`
	Detail       string `gorm:"size:255"`
	Value        *int
	HealthBefore *int
	HealthAfter  *int
}

// Models lists every table the store migrates.
var Models = []any{&Battle{}, &BattleLogRow{}}
