package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// registrationConfig is the row behind one tournament. List-shaped settings
// are stored as JSON columns.
type registrationConfig struct {
	ID                uint                        `gorm:"primaryKey"`
	Slug              string                      `gorm:"uniqueIndex;not null"`
	Name              string                      `gorm:"not null"`
	Modes             []wizard.Mode               `gorm:"serializer:json"`
	MinTeamSize       int                         `gorm:"not null;default:0"`
	MaxRosterSize     int                         `gorm:"not null;default:0"`
	AllowCoaches      bool                        `gorm:"not null;default:false"`
	HasEntryFee       bool                        `gorm:"not null;default:false"`
	RequireProof      bool                        `gorm:"not null;default:false"`
	GameIDLabel       string                      `gorm:"column:game_id_label"`
	GameIDPlaceholder string                      `gorm:"column:game_id_placeholder"`
	RosterRoles       []wizard.RosterRole         `gorm:"serializer:json"`
	CustomFields      []wizard.CustomField        `gorm:"serializer:json"`
	RequiredFields    map[wizard.StepKey][]string `gorm:"serializer:json"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (registrationConfig) TableName() string { return "registration_configs" }

func (r registrationConfig) tournament() Tournament {
	return Tournament{
		Slug:  r.Slug,
		Name:  r.Name,
		Modes: r.Modes,
		Base: wizard.Config{
			Roster: wizard.RosterConfig{
				MinTeamSize:   r.MinTeamSize,
				MaxRosterSize: r.MaxRosterSize,
				AllowCoaches:  r.AllowCoaches,
			},
			RosterRoles:       r.RosterRoles,
			HasEntryFee:       r.HasEntryFee,
			RequireProof:      r.RequireProof,
			GameIDLabel:       r.GameIDLabel,
			GameIDPlaceholder: r.GameIDPlaceholder,
			CustomFields:      r.CustomFields,
			RequiredFields:    r.RequiredFields,
		},
	}
}

func rowFor(t Tournament) registrationConfig {
	return registrationConfig{
		Slug:              t.Slug,
		Name:              t.Name,
		Modes:             t.Modes,
		MinTeamSize:       t.Base.Roster.MinTeamSize,
		MaxRosterSize:     t.Base.Roster.MaxRosterSize,
		AllowCoaches:      t.Base.Roster.AllowCoaches,
		HasEntryFee:       t.Base.HasEntryFee,
		RequireProof:      t.Base.RequireProof,
		GameIDLabel:       t.Base.GameIDLabel,
		GameIDPlaceholder: t.Base.GameIDPlaceholder,
		RosterRoles:       t.Base.RosterRoles,
		CustomFields:      t.Base.CustomFields,
		RequiredFields:    t.Base.RequiredFields,
	}
}

type GormCatalog struct {
	db *gorm.DB
}

// Open connects to postgres through gorm's pgx-backed driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	return db, nil
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) Migrate(ctx context.Context) error {
	return c.db.WithContext(ctx).AutoMigrate(&registrationConfig{})
}

func (c *GormCatalog) Lookup(ctx context.Context, slug string) (Tournament, error) {
	var row registrationConfig
	err := c.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Tournament{}, fmt.Errorf("%w: %s", ErrTournamentNotFound, slug)
	}
	if err != nil {
		return Tournament{}, fmt.Errorf("lookup %s: %w", slug, err)
	}
	return row.tournament(), nil
}

// Upsert inserts t or replaces the row with the same slug.
func (c *GormCatalog) Upsert(ctx context.Context, t Tournament) error {
	row := rowFor(t)
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", t.Slug, err)
	}
	return nil
}
