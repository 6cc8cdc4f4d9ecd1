package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"
	"travelcore/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// DefaultRoleConfig names the role assigned to users created without one. ID wins over Name.
type DefaultRoleConfig struct {
	ID   uint
	Name string
}

type AccessService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	defaultRole DefaultRoleConfig
	hashCost    int
}

type CreateUserInput struct {
	Email       string `validate:"required,email,max=254"`
	FullName    string `validate:"max=255"`
	Password    string `validate:"required"`
	RoleID      *uint
	IsSuperuser bool
}

type CreatePermissionInput struct {
	Name        string `validate:"notblank,max=255"`
	Code        string `validate:"required,max=64"`
	Description string `validate:"max=1024"`
}

func (c DefaultRoleConfig) String() string {
	if c.ID != 0 {
		return strconv.FormatUint(uint64(c.ID), 10)
	}
	return c.Name
}

func NewAccessService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	permissions repository.PermissionRepository,
	defaultRole DefaultRoleConfig,
) *AccessService {
	return &AccessService{
		users:       users,
		roles:       roles,
		permissions: permissions,
		defaultRole: defaultRole,
		hashCost:    bcrypt.DefaultCost,
	}
}

func (s *AccessService) hash(password string) (string, error) {
	if err := validation.ValidatePassword(password); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// DefaultRole returns the configured default role, or NOT_FOUND when none is configured
// or the configured one is not live.
func (s *AccessService) DefaultRole(ctx context.Context) (*models.Role, error) {
	switch {
	case s.defaultRole.ID != 0:
		return s.roles.GetByID(ctx, s.defaultRole.ID)
	case s.defaultRole.Name != "":
		return s.roles.GetByName(ctx, s.defaultRole.Name)
	default:
		return nil, models.NewNotFoundError("default role", "(unconfigured)")
	}
}

// EnsureDefaultRole creates the configured default role by name when it does not exist yet.
func (s *AccessService) EnsureDefaultRole(ctx context.Context) (*models.Role, error) {
	role, err := s.DefaultRole(ctx)
	if err == nil || !models.IsNotFound(err) {
		return role, err
	}
	if s.defaultRole.Name == "" {
		return nil, err
	}
	role = &models.Role{Name: s.defaultRole.Name, Description: "Assigned to new users"}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	observability.Logger.InfoContext(ctx, "default role created", slog.String("role", role.Name), slog.Uint64("role_id", uint64(role.ID)))
	return role, nil
}

// CreateUser hashes the password and assigns the requested role, falling back to the default role.
func (s *AccessService) CreateUser(ctx context.Context, in CreateUserInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AccessService.CreateUser")
	defer func() { span.End(err) }()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err = checkInput(in); err != nil {
		return nil, err
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	roleID := in.RoleID
	if roleID != nil {
		if err = requireLive(ctx, s.roles, "role", *roleID); err != nil {
			return nil, err
		}
	} else if s.defaultRole.ID != 0 || s.defaultRole.Name != "" {
		role, roleErr := s.DefaultRole(ctx)
		if roleErr != nil {
			if models.IsNotFound(roleErr) {
				return nil, models.NewReferentialError("default role", s.defaultRole)
			}
			return nil, roleErr
		}
		roleID = &role.ID
	}

	user = &models.User{
		Email:          in.Email,
		FullName:       strings.TrimSpace(in.FullName),
		HashedPassword: hashed,
		IsSuperuser:    in.IsSuperuser,
		RoleID:         roleID,
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccessService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Authenticate returns the live user whose password matches. Any mismatch is NOT_FOUND.
func (s *AccessService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, models.NewNotFoundError("user", email)
	}
	return user, nil
}

// AssignRole moves a user onto a live role.
func (s *AccessService) AssignRole(ctx context.Context, userID, roleID uint) error {
	if err := requireLive(ctx, s.roles, "role", roleID); err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"role_id": roleID})
}

// DeactivateUser soft-deletes the user and burns their outstanding reset tokens.
func (s *AccessService) DeactivateUser(ctx context.Context, userID uint) error {
	return s.users.Deactivate(ctx, userID)
}

func (s *AccessService) CreateRole(ctx context.Context, name, description string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if err := requireName("name", name); err != nil {
		return nil, err
	}
	role := &models.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *AccessService) CreatePermission(ctx context.Context, in CreatePermissionInput) (*models.Permission, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := validation.ValidatePermissionCode(in.Code); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	perm := &models.Permission{Name: in.Name, Code: in.Code, Description: in.Description}
	if err := s.permissions.Create(ctx, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *AccessService) requireRoleAndPermission(ctx context.Context, roleID, permissionID uint) error {
	if err := requireLive(ctx, s.roles, "role", roleID); err != nil {
		return err
	}
	return requireLive(ctx, s.permissions, "permission", permissionID)
}

// GrantPermission is idempotent.
func (s *AccessService) GrantPermission(ctx context.Context, roleID, permissionID uint) error {
	if err := s.requireRoleAndPermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	return s.roles.Grant(ctx, roleID, permissionID)
}

func (s *AccessService) RevokePermission(ctx context.Context, roleID, permissionID uint) (bool, error) {
	return s.roles.Revoke(ctx, roleID, permissionID)
}

func (s *AccessService) FindPermissionsForRole(ctx context.Context, roleID uint) ([]models.Permission, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roles.Permissions(ctx, roleID)
}

// HasPermission reports whether the user may act under code. Inactive users have no
// permissions; active superusers have all of them.
func (s *AccessService) HasPermission(ctx context.Context, userID uint, code string) (allowed bool, err error) {
	ctx, span := observability.StartSpan(ctx, "AccessService.HasPermission", attribute.String("permission.code", code))
	defer func() { span.End(err) }()

	user, err := s.users.GetAnyByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.Status {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}
	if user.RoleID == nil {
		return false, nil
	}
	return s.permissions.UserHasCode(ctx, userID, code)
}
