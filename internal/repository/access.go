package repository

import (
	"context"
	"strings"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetAnyByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SetStatus(ctx context.Context, id uint, status bool) error
	// Deactivate soft-deletes the user and burns their outstanding reset tokens in one transaction.
	Deactivate(ctx context.Context, id uint) error
}

type userRepository struct {
	*Store[models.User]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{Store: NewStore[models.User](db, "user", "email", "full_name")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateUnique(err, "user", "email", user.Email)
	}
	r.log.LogCreate(ctx, map[string]any{"id": user.ID})
	return nil
}

// GetByEmail matches case-insensitively against live users.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), models.StatusActive).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "user", email)
	}
	return &user, nil
}

func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := &userRepository{Store: r.Store.WithTx(tx)}
		if err := users.SetStatus(ctx, id, models.StatusInactive); err != nil {
			return err
		}
		tokens := &tokenRepository{db: tx, log: observability.NewRepoLogger("password_reset_tokens")}
		_, err := tokens.InvalidateForUser(ctx, id)
		return err
	})
}

// RoleRepository defines interface for role operations
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Grant(ctx context.Context, roleID, permissionID uint) error
	Revoke(ctx context.Context, roleID, permissionID uint) (bool, error)
	Permissions(ctx context.Context, roleID uint) ([]models.Permission, error)
}

type roleRepository struct {
	*Store[models.Role]
	log *observability.RepoLogger
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{
		Store: NewStore[models.Role](db, "role", "name"),
		log:   observability.NewRepoLogger("role_permissions"),
	}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	err := r.Store.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error
	if err != nil {
		return translateUnique(err, "role", "name", role.Name)
	}
	return nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.Store.db.WithContext(ctx).
		Where("name = ? AND status = ?", name, models.StatusActive).
		First(&role).Error
	if err != nil {
		return nil, translate(err, "role", name)
	}
	return &role, nil
}

// Grant is idempotent on the (role_id, permission_id) primary key.
func (r *roleRepository) Grant(ctx context.Context, roleID, permissionID uint) error {
	err := r.Store.db.WithContext(ctx).
		Table("role_permissions").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{"role_id": roleID, "permission_id": permissionID}).Error
	if err != nil {
		r.log.LogError(ctx, err, "grant")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"role_id": roleID, "permission_id": permissionID})
	return nil
}

func (r *roleRepository) Revoke(ctx context.Context, roleID, permissionID uint) (bool, error) {
	res := r.Store.db.WithContext(ctx).
		Exec("DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, permissionID)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "revoke")
		return false, res.Error
	}
	r.log.LogDelete(ctx, map[string]any{"role_id": roleID, "permission_id": permissionID})
	return res.RowsAffected > 0, nil
}

// Permissions lists the live permissions granted to the role.
func (r *roleRepository) Permissions(ctx context.Context, roleID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.Store.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ? AND permissions.status = ?", roleID, models.StatusActive).
		Order("permissions.code ASC").
		Find(&perms).Error
	return perms, err
}

// PermissionRepository defines interface for permission operations
type PermissionRepository interface {
	Create(ctx context.Context, permission *models.Permission) error
	GetByID(ctx context.Context, id uint) (*models.Permission, error)
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// UserHasCode reports whether the user's live role grants a live permission with code.
	UserHasCode(ctx context.Context, userID uint, code string) (bool, error)
}

type permissionRepository struct {
	*Store[models.Permission]
}

// NewPermissionRepository creates a new PermissionRepository
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{Store: NewStore[models.Permission](db, "permission", "name", "code")}
}

func (r *permissionRepository) Create(ctx context.Context, p *models.Permission) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if IsUniqueViolation(err) {
		return models.NewValidationErrorKind(models.KindUniqueness,
			"permission with name "+p.Name+" or code "+p.Code+" already exists")
	}
	return err
}

func (r *permissionRepository) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	var p models.Permission
	err := r.db.WithContext(ctx).
		Where("code = ? AND status = ?", code, models.StatusActive).
		First(&p).Error
	if err != nil {
		return nil, translate(err, "permission", code)
	}
	return &p, nil
}

func (r *permissionRepository) UserHasCode(ctx context.Context, userID uint, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("users u").
		Joins("JOIN roles r ON r.id = u.role_id AND r.status = ?", models.StatusActive).
		Joins("JOIN role_permissions rp ON rp.role_id = r.id").
		Joins("JOIN permissions p ON p.id = rp.permission_id AND p.status = ?", models.StatusActive).
		Where("u.id = ? AND p.code = ?", userID, code).
		Count(&count).Error
	return count > 0, err
}
