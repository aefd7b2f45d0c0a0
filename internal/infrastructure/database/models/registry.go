package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Community struct {
	ID    uint32    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name  string    `json:"name" gorm:"type:text;not null"`
	CDate time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Passport struct {
	ID                  uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Address             string    `json:"address" gorm:"type:text;not null;index;uniqueIndex:idx_passport_address_community"`
	CommunityID         uint32    `json:"communityID" gorm:"not null;uniqueIndex:idx_passport_address_community"`
	Community           Community `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	RequiresCalculation *bool     `json:"requiresCalculation" gorm:"index"`
	CDate               time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate               time.Time `json:"mdate" gorm:"autoUpdateTime"`
}

type Stamp struct {
	ID         uint64   `json:"id" gorm:"primaryKey;autoIncrement"`
	PassportID uint64   `json:"passportID" gorm:"not null;index;uniqueIndex:idx_stamp_hash_passport"`
	Passport   Passport `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Hash       string   `json:"hash" gorm:"type:text;not null;index;uniqueIndex:idx_stamp_hash_passport"`
	Provider   string   `json:"provider" gorm:"type:text;not null;default:'';index"`
	Credential string   `json:"credential" gorm:"type:jsonb;not null;default:'{}'"`
}

type Score struct {
	ID                 uint64              `json:"id" gorm:"primaryKey;autoIncrement"`
	PassportID         uint64              `json:"passportID" gorm:"not null;uniqueIndex"`
	Passport           Passport            `json:"-" gorm:"constraint:OnDelete:RESTRICT;"`
	Score              decimal.NullDecimal `json:"score" gorm:"type:numeric(18,9)"`
	LastScoreTimestamp *time.Time          `json:"lastScoreTimestamp" gorm:"type:timestamp with time zone"`
	Status             *string             `json:"status" gorm:"type:text;index"`
	Error              *string             `json:"error" gorm:"type:text"`
	Evidence           *string             `json:"evidence" gorm:"type:jsonb"`
	Providers          pq.StringArray      `json:"providers" gorm:"type:text[]"`
	ClaimGeneration    uint64              `json:"-" gorm:"not null;default:0"`
	MDate              time.Time           `json:"mdate" gorm:"autoUpdateTime"`
}
