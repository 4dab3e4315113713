package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/alzy/commerce-api/internal/auth"
	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/alzy/commerce-api/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxJSONBytes    = 1 << 20
	maxFormBytes    = 1 << 20
	formFieldUser   = "username"
	formFieldPasswd = "password"
)

var errInvalidForm = errors.New("invalid form")

// Registrar creates user accounts.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (types.User, error)
}

// LoginService exchanges credentials for an access token.
type LoginService interface {
	Login(ctx context.Context, identifier, password string) (auth.Token, error)
}

// AuthHandler provides registration, login and current-user endpoints.
type AuthHandler struct {
	users  Registrar
	login  LoginService
	logger logging.Logger
}

func NewAuthHandler(users Registrar, login LoginService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{users: users, login: login, logger: logger}
}

// UserRouter registers user routes on the given router. loginLimiter may be
// nil.
func UserRouter(
	r chi.Router,
	users Registrar,
	login LoginService,
	requireAuth func(http.Handler) http.Handler,
	loginLimiter func(http.Handler) http.Handler,
	logger logging.Logger,
) {
	handler := NewAuthHandler(users, login, logger)

	r.Post("/register", handler.Register)
	if loginLimiter != nil {
		r.With(loginLimiter).Post("/login", handler.Login)
	} else {
		r.Post("/login", handler.Login)
	}
	r.With(requireAuth).Get("/me", handler.Me)
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Login accepts either an OAuth2 password form (username, password) or a
// JSON body {email_or_phone, password} and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseLoginRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.EmailOrPhone) == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.login.Login(r.Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// Me returns the current authenticated identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// LoginRequest is the JSON login payload. Username is accepted as an alias
// of EmailOrPhone.
type LoginRequest struct {
	EmailOrPhone string `json:"email_or_phone"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

func parseLoginRequest(r *http.Request) (LoginRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
		if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return LoginRequest{}, errInvalidForm
		}
		return LoginRequest{
			EmailOrPhone: r.FormValue(formFieldUser),
			Password:     r.FormValue(formFieldPasswd),
		}, nil
	default:
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			return LoginRequest{}, err
		}
		if req.EmailOrPhone == "" {
			req.EmailOrPhone = req.Username
		}
		return req, nil
	}
}
