package database

import (
	"fmt"

	"github.com/helixml/splitmerge/domain/repository"
	"gorm.io/gorm"
)

// ApplyOptions applies the conditions, ordering and pagination of options to a GORM session.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)
	db = where(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}
	if q.LimitValue() > 0 {
		db = db.Limit(q.LimitValue())
	}
	if q.OffsetValue() > 0 {
		db = db.Offset(q.OffsetValue())
	}
	return db
}

// ApplyConditions applies only the WHERE conditions of options, for COUNT and DELETE.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return where(db, repository.Build(options...))
}

func where(db *gorm.DB, q repository.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		op := "="
		if cond.In() {
			op = "IN"
		}
		db = db.Where(fmt.Sprintf("%s %s ?", cond.Field(), op), cond.Value())
	}
	return db
}
