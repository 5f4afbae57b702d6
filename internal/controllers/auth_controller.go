package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/middleware"
	"meal_reservations/internal/models"
	"meal_reservations/internal/services"
)

type AuthController struct {
	users *services.UserService
	clock services.Clock
}

func NewAuthController(users *services.UserService, clock services.Clock) *AuthController {
	return &AuthController{users: users, clock: clock}
}

type loginInput struct {
	Identifier  string `json:"identifier"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	KeepSession bool   `json:"keepSession"`
}

func issueToken(u *models.User, ttl time.Duration) (string, error) {
	return middleware.GenerateToken(middleware.Claims{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		FuncNumber: u.FuncNumber,
	}, ttl)
}

func (ac *AuthController) respondWithSession(c *gin.Context, u *models.User, ttl time.Duration) {
	token, err := issueToken(u, ttl)
	if err != nil {
		logrus.WithError(err).WithField("user_id", u.ID).Error("Could not sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": services.NewUserView(*u)})
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}

	user, err := ac.users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Error al registrar usuario")
		return
	}
	ac.respondWithSession(c, user, middleware.SessionTTL)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(input.Email)
	}
	if identifier == "" {
		badRequest(c, "Debe proporcionar un correo o numero de funcionario")
		return
	}
	if input.Password == "" {
		badRequest(c, "La contrasena es obligatoria")
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), identifier, input.Password)
	if err != nil {
		respondError(c, err, "Error al iniciar sesion")
		return
	}

	ttl := middleware.SessionTTL
	if input.KeepSession {
		ttl = middleware.LongSessionTTL
	}
	logrus.WithField("user_id", user.ID).Info("User logged in")
	ac.respondWithSession(c, user, ttl)
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}
	if err := ac.users.ForgotPassword(c.Request.Context(), input.Identifier); err != nil {
		respondError(c, err, "Error al procesar solicitud")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}
	if err := ac.users.ResetPassword(c.Request.Context(), input.Token, input.Password); err != nil {
		respondError(c, err, "Error al restablecer contrasena")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ac *AuthController) Me(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	user, err := ac.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err, "Error al obtener perfil")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": services.NewUserView(*user), "nextMonday": ac.clock.NextWeek()})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	var input services.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}

	user, err := ac.users.UpdateProfile(c.Request.Context(), claims.UserID, input)
	if err != nil {
		respondError(c, err, "Error al actualizar perfil")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": services.NewUserView(*user), "message": "Perfil actualizado con exito"})
}
