package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/draftops/draft-engine/internal/models"
)

// AdjustmentRecord is the persisted form of one applied strategy adjustment.
// The in-memory history remains the engine's source of truth; these rows are
// an audit sink.
type AdjustmentRecord struct {
	ID             string             `gorm:"primaryKey" json:"id"`
	RoomID         string             `gorm:"index" json:"room_id"`
	Source         string             `json:"source"`
	PriorityDeltas map[string]float64 `gorm:"serializer:json" json:"priority_deltas"`
	RiskShift      float64            `json:"risk_shift"`
	AddTargets     []string           `gorm:"serializer:json" json:"add_targets"`
	AddAvoids      []string           `gorm:"serializer:json" json:"add_avoids"`
	Reasoning      []string           `gorm:"serializer:json" json:"reasoning"`
	CreatedAt      time.Time          `json:"created_at"`
}

func (AdjustmentRecord) TableName() string {
	return "strategy_adjustments"
}

// HistoryStore persists applied adjustments for auditability.
type HistoryStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewHistoryStore migrates the schema and returns a store.
func NewHistoryStore(db *gorm.DB, logger *logrus.Logger) (*HistoryStore, error) {
	if err := db.AutoMigrate(&AdjustmentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate adjustment history: %w", err)
	}
	return &HistoryStore{db: db, logger: logger}, nil
}

// RecordAdjustments writes one audit row per applied adjustment.
func (s *HistoryStore) RecordAdjustments(ctx context.Context, roomID string, adjustments []models.StrategyAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	records := make([]AdjustmentRecord, 0, len(adjustments))
	for _, adj := range adjustments {
		deltas := make(map[string]float64, len(adj.PriorityDeltas))
		for pos, d := range adj.PriorityDeltas {
			deltas[string(pos)] = d
		}
		records = append(records, AdjustmentRecord{
			ID:             adj.ID,
			RoomID:         roomID,
			Source:         adj.Source,
			PriorityDeltas: deltas,
			RiskShift:      adj.RiskShift,
			AddTargets:     adj.AddTargets,
			AddAvoids:      adj.AddAvoids,
			Reasoning:      adj.Reasoning,
			CreatedAt:      adj.CreatedAt,
		})
	}

	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to persist adjustments: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"rows":    len(records),
	}).Debug("Persisted strategy adjustments")

	return nil
}

// RecentAdjustments returns the latest audit rows for a room, newest first.
func (s *HistoryStore) RecentAdjustments(ctx context.Context, roomID string, limit int) ([]AdjustmentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []AdjustmentRecord
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustment history: %w", err)
	}
	return records, nil
}
