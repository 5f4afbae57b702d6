package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/models"
)

const resetTokenTTL = time.Hour

var (
	nameRe       = regexp.MustCompile(`^[\p{L}\s]+$`)
	funcNumberRe = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// UserView is the public representation of a user.
type UserView struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	FuncNumber  string                 `json:"funcNumber"`
	DocumentID  *string                `json:"documentId,omitempty"`
	PhoneNumber string                 `json:"phoneNumber"`
	PhotoURL    string                 `json:"photoUrl"`
	Preferences map[string]interface{} `json:"preferences"`
}

func NewUserView(u models.User) UserView {
	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		FuncNumber:  u.FuncNumber,
		DocumentID:  u.DocumentID,
		PhoneNumber: u.PhoneNumber,
		PhotoURL:    u.PhotoURL,
		Preferences: decodePreferences(u.Preferences),
	}
}

func decodePreferences(raw datatypes.JSON) map[string]interface{} {
	prefs := map[string]interface{}{}
	if len(raw) == 0 {
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return map[string]interface{}{}
	}
	return prefs
}

type UserService struct {
	db          *gorm.DB
	mailer      mailer.Mailer
	frontendURL string
	now         func() time.Time
}

func NewUserService(db *gorm.DB, m mailer.Mailer, frontendURL string) *UserService {
	return &UserService{db: db, mailer: m, frontendURL: strings.TrimRight(frontendURL, "/"), now: time.Now}
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FuncNumber  string `json:"funcNumber"`
	PhoneNumber string `json:"phoneNumber"`
}

// Register creates a regular user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	funcNumber := NormalizeFuncNumber(in.FuncNumber)

	if name == "" || email == "" || in.Password == "" || funcNumber == "" {
		return nil, &booking.ValidationError{Msg: "Nombre, correo, contrasena y numero de funcionario son obligatorios"}
	}
	if len([]rune(name)) < 2 {
		return nil, &booking.ValidationError{Msg: "El nombre debe tener al menos 2 caracteres"}
	}
	if !nameRe.MatchString(name) {
		return nil, &booking.ValidationError{Msg: "El nombre solo puede contener letras y espacios"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &booking.ValidationError{Msg: "Correo electronico invalido"}
	}
	if len(in.Password) < minPasswordLength {
		return nil, &booking.ValidationError{Msg: "La contrasena debe tener al menos 6 caracteres"}
	}
	if !funcNumberRe.MatchString(funcNumber) {
		return nil, &booking.ValidationError{Msg: "El numero de funcionario solo puede contener letras y numeros"}
	}

	user := models.User{
		Name:        name,
		Email:       email,
		Role:        models.RoleUser,
		FuncNumber:  funcNumber,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	if err := s.create(ctx, &user, in.Password); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")
	return &user, nil
}

// create checks the unique columns, hashes password and inserts u.
func (s *UserService) create(ctx context.Context, u *models.User, password string) error {
	if err := s.checkUnique(ctx, 0, u.Email, u.FuncNumber, u.DocumentID); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Msg: "El correo o numero de funcionario ya esta registrado"}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// checkUnique reports a ConflictError when another user (not exceptID) already
// holds one of the given values. Empty values are not checked.
func (s *UserService) checkUnique(ctx context.Context, exceptID uint, email, funcNumber string, documentID *string) error {
	taken := func(column, value string) (bool, error) {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where(column+" = ? AND id <> ?", value, exceptID).
			Count(&n).Error
		return n > 0, err
	}

	checks := []struct {
		column, value, msg string
	}{
		{"email", email, "El correo ya esta registrado"},
		{"func_number", funcNumber, "Ese numero de funcionario ya esta registrado"},
	}
	if documentID != nil {
		checks = append(checks, struct{ column, value, msg string }{"document_id", *documentID, "Ese documento ya esta registrado"})
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		ok, err := taken(c.column, c.value)
		if err != nil {
			return fmt.Errorf("check %s: %w", c.column, err)
		}
		if ok {
			return &ConflictError{Msg: c.msg}
		}
	}
	return nil
}

// FindByIdentifier looks a user up by e-mail or employee number.
func (s *UserService) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrUserNotFound
	}
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR func_number = ?", NormalizeEmail(identifier), NormalizeFuncNumber(identifier)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Authenticate checks a password for the user known by identifier.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	u, err := s.FindByIdentifier(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &u, nil
}

// ForgotPassword issues a one-hour reset token, replacing any earlier one,
// and mails the reset link.
func (s *UserService) ForgotPassword(ctx context.Context, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return &booking.ValidationError{Msg: "Debe indicar correo o numero de funcionario"}
	}
	u, err := s.FindByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	reset := models.PasswordReset{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(&reset).Error
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset?token=%s", s.frontendURL, reset.Token)
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Restablecer contrasena",
		Text:    fmt.Sprintf("Ingresa a %s para definir una nueva contrasena. El enlace expira en 1 hora.", resetURL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logrus.WithError(err).WithField("user_id", u.ID).Error("Could not send password reset e-mail")
	}
	return nil
}

// ResetPassword consumes token and sets a new password.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return &booking.ValidationError{Msg: "Token y contrasena son obligatorios"}
	}
	if len(password) < minPasswordLength {
		return &booking.ValidationError{Msg: "La contrasena debe tener al menos 6 caracteres"}
	}

	var reset models.PasswordReset
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}
	if reset.ExpiresAt.Before(s.now()) {
		if err := s.db.WithContext(ctx).Delete(&reset).Error; err != nil {
			logrus.WithError(err).WithField("user_id", reset.UserID).Error("Could not delete expired reset token")
		}
		return ErrInvalidResetToken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.Delete(&reset).Error; err != nil {
			return fmt.Errorf("delete reset token: %w", err)
		}
		return nil
	})
}

// ProfileUpdate is a self-service profile edit. Nil fields are unchanged.
type ProfileUpdate struct {
	Name            *string                `json:"name"`
	PhoneNumber     *string                `json:"phoneNumber"`
	PhotoURL        *string                `json:"photoUrl"`
	Preferences     map[string]interface{} `json:"preferences"`
	CurrentPassword string                 `json:"currentPassword"`
	NewPassword     string                 `json:"newPassword"`
}

// UpdateProfile applies in to user id. Preferences are merged key by key; a
// password change requires the current password.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.PhotoURL != nil {
		updates["photo_url"] = *in.PhotoURL
	}
	if in.Preferences != nil {
		merged := decodePreferences(u.Preferences)
		for k, v := range in.Preferences {
			merged[k] = v
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("encode preferences: %w", err)
		}
		updates["preferences"] = datatypes.JSON(raw)
	}
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, &booking.ValidationError{Msg: "Se requiere la contrasena actual para establecer una nueva"}
		}
		if !checkPassword(u.PasswordHash, in.CurrentPassword) {
			return nil, &booking.ValidationError{Msg: "La contrasena actual es incorrecta"}
		}
		if len(in.NewPassword) < minPasswordLength {
			return nil, &booking.ValidationError{Msg: "La contrasena debe tener al menos 6 caracteres"}
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.Get(ctx, id)
}

type AdminCreateInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FuncNumber  string `json:"funcNumber"`
	DocumentID  string `json:"documentId"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	PhotoURL    string `json:"photoUrl"`
}

// CreateByAdmin creates a user on behalf of an administrator whose role is
// creatorRole. Only superadmins may create superadmins.
func (s *UserService) CreateByAdmin(ctx context.Context, creatorRole string, in AdminCreateInput) (*models.User, error) {
	doc := strings.TrimSpace(in.DocumentID)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" ||
		in.FuncNumber == "" || doc == "" || in.PhotoURL == "" {
		return nil, &booking.ValidationError{Msg: "Faltan datos obligatorios, incluyendo foto de perfil y documento"}
	}

	role := in.Role
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleAdmin:
	case models.RoleSuperAdmin:
		if creatorRole != models.RoleSuperAdmin {
			return nil, &ForbiddenError{Msg: "Solo Super Admins pueden crear otros Super Admins"}
		}
	default:
		return nil, &booking.ValidationError{Msg: "Rol invalido"}
	}

	user := models.User{
		Name:        strings.TrimSpace(in.Name),
		Email:       NormalizeEmail(in.Email),
		Role:        role,
		FuncNumber:  NormalizeFuncNumber(in.FuncNumber),
		DocumentID:  &doc,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		PhotoURL:    in.PhotoURL,
	}
	if err := s.create(ctx, &user, in.Password); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User created by admin")
	return &user, nil
}

type DetailsUpdate struct {
	FuncNumber  string `json:"funcNumber"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DocumentID  string `json:"documentId"`
}

// UpdateDetails lets an administrator edit identifying fields of user id.
// Empty fields are left unchanged.
func (s *UserService) UpdateDetails(ctx context.Context, id uint, in DetailsUpdate) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	funcNumber := NormalizeFuncNumber(in.FuncNumber)
	email := NormalizeEmail(in.Email)
	doc := strings.TrimSpace(in.DocumentID)

	var docPtr *string
	if doc != "" {
		docPtr = &doc
	}
	if err := s.checkUnique(ctx, u.ID, email, funcNumber, docPtr); err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			return nil, &ConflictError{Msg: detailsConflictMsg[ce.Msg]}
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if funcNumber != "" {
		updates["func_number"] = funcNumber
	}
	if email != "" {
		updates["email"] = email
	}
	if doc != "" {
		updates["document_id"] = doc
	}
	if p := strings.TrimSpace(in.PhoneNumber); p != "" {
		updates["phone_number"] = p
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, &ConflictError{Msg: "Datos ya asignados a otro usuario"}
			}
			return nil, fmt.Errorf("update user %d: %w", id, err)
		}
	}
	return s.Get(ctx, id)
}

var detailsConflictMsg = map[string]string{
	"El correo ya esta registrado":                 "Correo ya registrado por otro usuario",
	"Ese numero de funcionario ya esta registrado": "Numero de funcionario ya asignado a otro usuario",
	"Ese documento ya esta registrado":             "Ese documento (C.I.) ya esta registrado por otro usuario",
}

// EnsureSuperAdmin creates a superadmin, or promotes the existing user with
// that e-mail. created is false when the user already existed.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, email, password, name, funcNumber string) (created bool, err error) {
	email = NormalizeEmail(email)
	var existing models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role != models.RoleSuperAdmin {
			if err := s.db.WithContext(ctx).Model(&existing).Update("role", models.RoleSuperAdmin).Error; err != nil {
				return false, fmt.Errorf("promote %s: %w", email, err)
			}
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("find %s: %w", email, err)
	}

	u := models.User{
		Name:       name,
		Email:      email,
		Role:       models.RoleSuperAdmin,
		FuncNumber: NormalizeFuncNumber(funcNumber),
	}
	if err := s.create(ctx, &u, password); err != nil {
		return false, err
	}
	return true, nil
}

// WithoutReservation lists users with role user or admin that have no
// reservation for week.
func (s *UserService) WithoutReservation(ctx context.Context, week string) ([]models.User, error) {
	var users []models.User
	reserved := s.db.Model(&models.Reservation{}).Select("user_id").Where("week_start = ?", week)
	err := s.db.WithContext(ctx).
		Where("role IN ?", []string{models.RoleUser, models.RoleAdmin}).
		Where("id NOT IN (?)", reserved).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("users without reservation for %s: %w", week, err)
	}
	return users, nil
}

