package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

// MedallionRepository stores the Bronze, Silver and Gold layers, their
// lookup tables and the pipeline run log.
type MedallionRepository struct {
	db *gorm.DB
}

var _ ports.MedallionRepository = (*MedallionRepository)(nil)

func NewMedallionRepository(db *gorm.DB) *MedallionRepository {
	return &MedallionRepository{db: db}
}

func (r *MedallionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// withTx runs fn inside the context transaction, opening one when absent.
func (r *MedallionRepository) withTx(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, db)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx), tx)
	})
}

func encodeJSON(value any) (datatypes.JSON, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errs.Wrap(err, "encode json column")
	}
	return datatypes.JSON(raw), nil
}

// encodeStrings stores an empty list as NULL.
func encodeStrings(values []string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return encodeJSON(values)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
