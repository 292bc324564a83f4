package report

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Store is the disposable alarm cache. Its tables are dropped and recreated
// on every ingestion; nothing is ever appended.
type Store struct {
	db *gorm.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	s.db = nil
	return err
}

// ReplaceAlarms swaps the cache contents for events and records ing as the
// only ingestion.
func (s *Store) ReplaceAlarms(ctx context.Context, ing IngestionRecord, events []AlarmEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(&AlarmRecord{}, &IngestionRecord{}); err != nil {
			return err
		}
		if err := tx.AutoMigrate(&AlarmRecord{}, &IngestionRecord{}); err != nil {
			return err
		}
		if len(events) > 0 {
			records := make([]AlarmRecord, len(events))
			for i, ev := range events {
				records[i] = AlarmRecord{
					Timestamp: ev.Timestamp,
					AlarmType: ev.AlarmType,
					AlarmCode: ev.AlarmCode,
					Message:   ev.Message,
					User:      ev.User,
				}
			}
			if err := tx.CreateInBatches(records, 500).Error; err != nil {
				return err
			}
		}
		ing.ID = 0
		ing.Rows = len(events)
		return tx.Create(&ing).Error
	})
}

// UserFrequency counts cached alarms per user, most frequent first.
func (s *Store) UserFrequency(ctx context.Context) ([]Count, error) {
	type row struct {
		Usuario    string `gorm:"column:usuario"`
		Frecuencia int    `gorm:"column:frecuencia"`
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&AlarmRecord{}).
		Select("usuario, COUNT(*) AS frecuencia").
		Group("usuario").
		Order("frecuencia DESC, usuario ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Count, len(rows))
	for i, r := range rows {
		out[i] = Count{Key: r.Usuario, Count: r.Frecuencia}
	}
	return out, nil
}

// Alarms reads the cache back in insertion order.
func (s *Store) Alarms(ctx context.Context) ([]AlarmEvent, error) {
	var records []AlarmRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]AlarmEvent, len(records))
	for i, r := range records {
		out[i] = AlarmEvent{
			Timestamp: r.Timestamp,
			AlarmType: r.AlarmType,
			AlarmCode: r.AlarmCode,
			Message:   r.Message,
			User:      r.User,
		}
	}
	return out, nil
}

// LastIngestion returns nil when nothing has been cached yet.
func (s *Store) LastIngestion(ctx context.Context) (*IngestionRecord, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&IngestionRecord{}) {
		return nil, nil
	}
	var rec IngestionRecord
	err := db.Order("id desc").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
