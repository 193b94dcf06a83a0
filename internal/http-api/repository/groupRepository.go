package repository

import (
	"context"
	"errors"
	"fmt"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

type GroupRepository interface {
	// PermissionsByCodename returns the permissions that exist, keyed by codename.
	PermissionsByCodename(ctx context.Context, codenames []string) (map[string]models.Permission, error)
	GetOrCreate(ctx context.Context, name string) (*models.Group, bool, error)
	ReplacePermissions(ctx context.Context, group *models.Group, perms []models.Permission) error
	FindByName(ctx context.Context, name string) (*models.Group, error)
	// MemberIDs lists the ids of the users in the group.
	MemberIDs(ctx context.Context, groupID int64) ([]string, error)
}

type GroupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

func (r *GroupRepo) PermissionsByCodename(ctx context.Context, codenames []string) (map[string]models.Permission, error) {
	var list []models.Permission
	if err := r.db.WithContext(ctx).Where("codename IN ?", codenames).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	out := make(map[string]models.Permission, len(list))
	for _, p := range list {
		out[p.Codename] = p
	}
	return out, nil
}

func (r *GroupRepo) GetOrCreate(ctx context.Context, name string) (*models.Group, bool, error) {
	g, err := r.FindByName(ctx, name)
	if err == nil {
		return g, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	g = &models.Group{Name: name}
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, false, fmt.Errorf("create group: %w", err)
	}
	return g, true, nil
}

// ReplacePermissions sets the group's permissions to exactly perms.
func (r *GroupRepo) ReplacePermissions(ctx context.Context, group *models.Group, perms []models.Permission) error {
	assoc := r.db.WithContext(ctx).Model(group).Association("Permissions")
	var err error
	if len(perms) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(perms)
	}
	if err != nil {
		return fmt.Errorf("replace permissions: %w", err)
	}
	return nil
}

func (r *GroupRepo) FindByName(ctx context.Context, name string) (*models.Group, error) {
	var g models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepo) MemberIDs(ctx context.Context, groupID int64) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).
		Table("user_groups").
		Where("group_id = ?", groupID).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return ids, nil
}
