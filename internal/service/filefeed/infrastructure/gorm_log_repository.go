package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"wmslink/internal/service/filefeed/domain"
	"wmslink/internal/service/filefeed/port"
)

type IncomingLogModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Payload      string `gorm:"type:longtext"`
	Errored      bool
	ErrorMessage string `gorm:"size:2048"`
	ReceivedAt   time.Time
}

func (IncomingLogModel) TableName() string { return "incoming_logs" }

// AutoMigrate creates the audit table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&IncomingLogModel{})
}

type GormIncomingLogRepository struct {
	db *gorm.DB
}

func NewGormIncomingLogRepository(db *gorm.DB) *GormIncomingLogRepository {
	return &GormIncomingLogRepository{db: db}
}

func (r *GormIncomingLogRepository) Append(ctx context.Context, rec *domain.IncomingLog) error {
	model := IncomingLogModel{
		ID:           rec.ID.String(),
		Payload:      rec.Payload,
		Errored:      rec.Errored,
		ErrorMessage: rec.ErrorMessage,
		ReceivedAt:   rec.ReceivedAt,
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	return errors.Wrap(err, "append incoming log")
}

func (r *GormIncomingLogRepository) MarkFailed(ctx context.Context, id string, message string) error {
	err := r.db.WithContext(ctx).Model(&IncomingLogModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"errored":       true,
			"error_message": message,
		}).Error
	return errors.Wrap(err, "mark incoming log failed")
}

var _ port.IncomingLogRepository = (*GormIncomingLogRepository)(nil)
