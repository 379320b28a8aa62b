package realtime

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
)

// RegisterCallbacks makes every successful create, update and delete on the
// given tables publish an Event.
func RegisterCallbacks(db *gorm.DB, publisher Publisher, tables ...string) error {
	watched := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		watched[t] = struct{}{}
	}

	emit := func(kind EventType) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil || tx.Statement == nil {
				return
			}
			if _, ok := watched[tx.Statement.Table]; !ok {
				return
			}
			if kind != EventInsert && tx.RowsAffected == 0 {
				return
			}

			ctx := tx.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			publisher.Publish(context.WithoutCancel(ctx), Event{
				Table:    tx.Statement.Table,
				Type:     kind,
				RecordID: primaryKey(tx),
				At:       time.Now().UTC(),
			})
		}
	}

	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("realtime:after_create", emit(EventInsert)); err != nil {
		return fmt.Errorf("failed to register create callback: %w", err)
	}
	if err := cb.Update().After("gorm:update").Register("realtime:after_update", emit(EventUpdate)); err != nil {
		return fmt.Errorf("failed to register update callback: %w", err)
	}
	if err := cb.Delete().After("gorm:delete").Register("realtime:after_delete", emit(EventDelete)); err != nil {
		return fmt.Errorf("failed to register delete callback: %w", err)
	}
	return nil
}

func primaryKey(tx *gorm.DB) string {
	stmt := tx.Statement
	if stmt.Schema == nil || stmt.Schema.PrioritizedPrimaryField == nil {
		return ""
	}
	rv := reflect.Indirect(stmt.ReflectValue)
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return ""
	}
	value, zero := stmt.Schema.PrioritizedPrimaryField.ValueOf(stmt.Context, rv)
	if zero {
		return ""
	}
	return fmt.Sprint(value)
}
