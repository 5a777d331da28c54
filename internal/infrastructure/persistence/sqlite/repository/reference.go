package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func (r *MedallionRepository) EnsureSite(ctx context.Context, site ports.Site) (ports.Site, error) {
	code := strings.TrimSpace(site.Code)
	if code == "" {
		return ports.Site{}, errors.New("site code is required")
	}

	var stored model.Site
	err := r.withTx(ctx, func(_ context.Context, db *gorm.DB) error {
		row := model.Site{Code: code, Name: site.Name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert site")
		}
		if err := db.Where("code = ?", code).Take(&stored).Error; err != nil {
			return errs.Wrap(err, "query site by code")
		}
		return nil
	})
	if err != nil {
		return ports.Site{}, err
	}
	return ports.Site{ID: stored.ID, Code: stored.Code, Name: stored.Name}, nil
}

func (r *MedallionRepository) EnsureEquipment(ctx context.Context, equipment ports.Equipment) (ports.Equipment, error) {
	code := strings.TrimSpace(equipment.Code)
	if code == "" {
		return ports.Equipment{}, errors.New("equipment code is required")
	}

	var stored model.Equipment
	err := r.withTx(ctx, func(_ context.Context, db *gorm.DB) error {
		err := db.Where("code = ?", code).Take(&stored).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Wrap(err, "query equipment by code")
		}

		row := model.Equipment{
			Code:   code,
			Name:   equipment.Name,
			Type:   equipment.Type,
			SiteID: equipment.SiteID,
			Status: equipment.Status,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert equipment")
		}
		if err := db.Where("code = ?", code).Take(&stored).Error; err != nil {
			return errs.Wrap(err, "query equipment by code")
		}
		return nil
	})
	if err != nil {
		return ports.Equipment{}, err
	}
	return ports.Equipment{
		ID:     stored.ID,
		Code:   stored.Code,
		Name:   stored.Name,
		Type:   stored.Type,
		SiteID: stored.SiteID,
		Status: stored.Status,
	}, nil
}

func (r *MedallionRepository) EnsureUser(ctx context.Context, user ports.User) (ports.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return ports.User{}, errors.New("user email is required")
	}

	var stored model.User
	err := r.withTx(ctx, func(_ context.Context, db *gorm.DB) error {
		row := model.User{Email: email, Name: user.Name, Role: user.Role}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert user")
		}
		if err := db.Where("email = ?", email).Take(&stored).Error; err != nil {
			return errs.Wrap(err, "query user by email")
		}
		return nil
	})
	if err != nil {
		return ports.User{}, err
	}
	return ports.User{ID: stored.ID, Email: stored.Email, Name: stored.Name, Role: stored.Role}, nil
}
