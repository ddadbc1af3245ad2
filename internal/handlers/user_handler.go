package handlers

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gerbang/internal/middleware"
	"gerbang/internal/models"
	"gerbang/internal/repositories"
	"gerbang/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var fullnamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*$`)

// UserHandler handles HTTP requests for the user auth flow.
type UserHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	secureCookies bool
}

// NewUserHandler creates a new UserHandler. secureCookies should be
// true in production so the token cookie is only sent over HTTPS.
func NewUserHandler(authService *services.AuthService, secureCookies bool) *UserHandler {
	validate := validator.New()
	if err := validate.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return fullnamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register fullname validation: %v", err))
	}
	if err := validate.RegisterValidation("signupage", func(fl validator.FieldLevel) bool {
		age := fl.Field().Int()
		return age >= models.MinSignupAge && age <= models.MaxSignupAge
	}); err != nil {
		panic(fmt.Sprintf("failed to register signupage validation: %v", err))
	}

	return &UserHandler{
		authService:   authService,
		validate:      validate,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers the user routes with the Fiber app. The
// profile route is guarded by authGuard; everything else is public.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authGuard fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/signup", h.HandleSignup)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/logout", h.HandleLogout)
	userRoutes.Get("/verify", h.HandleVerify)
	userRoutes.Get("/profile", authGuard, h.HandleProfile)
}

// HandleSignup handles new user registration and issues a session token.
func (h *UserHandler) HandleSignup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	// The minimum-length rule applies to the trimmed name, so trim
	// before validating rather than after.
	req.Name = strings.TrimSpace(req.Name)

	if msg, ok := h.firstValidationError(req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msg,
		})
	}

	user, token, err := h.authService.Signup(req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "User already exists",
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	h.setTokenCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user.View(),
	})
}

// HandleLogin authenticates a user and issues a session token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if msg, ok := h.firstValidationError(req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msg,
		})
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Same message whether the email or the password was wrong.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid email or password",
			})
		}
		log.Printf("Error during login: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	h.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user.View(),
	})
}

// HandleLogout clears the session cookie. It always succeeds, even
// without a session: tokens are stateless, so there is nothing to
// revoke server-side.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	h.clearTokenCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// HandleVerify checks the session token presented via cookie or bearer
// header. The client calls this on load to restore its session.
func (h *UserHandler) HandleVerify(c *fiber.Ctx) error {
	tokenString := middleware.TokenFromRequest(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"valid":   false,
			"message": "No token provided",
		})
	}

	claims, err := h.authService.ValidateToken(tokenString)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, services.ErrTokenExpired) {
			msg = "Token has expired"
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"valid":   false,
			"message": msg,
		})
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"user": fiber.Map{
			"id":    claims["user_id"],
			"email": claims["email"],
			"name":  claims["name"],
		},
	})
}

// HandleProfile returns the authenticated user's record. Runs behind
// the auth guard, which puts the token's subject ID in Locals.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error loading profile for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}

	return c.JSON(fiber.Map{
		"user": user.View(),
	})
}

// firstValidationError validates a request struct and returns a
// human-readable message for the first violated field. One violation is
// reported at a time.
func (h *UserHandler) firstValidationError(req interface{}) (string, bool) {
	err := h.validate.Struct(req)
	if err == nil {
		return "", true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Validation failed", false
	}

	e := validationErrors[0]
	switch e.Field() {
	case "Name":
		if e.Tag() == "fullname" {
			return "Name should contain only letters and spaces", false
		}
		return "Name must be at least 2 characters long", false
	case "Email":
		return "Please enter a valid email address", false
	case "Password":
		if e.Tag() == "min" {
			return "Password must be at least 6 characters long", false
		}
		return "Password is required", false
	case "Age":
		return fmt.Sprintf("Age must be between %d and %d", models.MinSignupAge, models.MaxSignupAge), false
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag()), false
}

// setTokenCookie attaches the session token as an HTTP-only cookie whose
// lifetime matches the token's TTL.
func (h *UserHandler) setTokenCookie(c *fiber.Ctx, token string) {
	ttl := h.authService.TokenTTL()
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearTokenCookie expires the session cookie immediately.
func (h *UserHandler) clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
