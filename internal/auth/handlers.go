package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Account is one configured dashboard user with its stored credential.
type Account struct {
	User
	PasswordHash string
}

// Directory resolves users from the static configuration. There is no user
// database; the account list is small and fixed per deployment.
type Directory struct {
	byEmail map[string]Account
}

// NewDirectory creates a directory from configured accounts.
func NewDirectory(accounts []Account) *Directory {
	byEmail := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byEmail[strings.ToLower(a.Email)] = a
	}
	return &Directory{byEmail: byEmail}
}

// Lookup finds an account by email.
func (d *Directory) Lookup(email string) (Account, bool) {
	a, ok := d.byEmail[strings.ToLower(email)]
	return a, ok
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	directory  *Directory
	jwtManager *JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(directory *Directory, jwtManager *JWTManager) *AuthHandler {
	return &AuthHandler{
		directory:  directory,
		jwtManager: jwtManager,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents login response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, ok := h.directory.Lookup(req.Email)
	if !ok {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := VerifyPassword(req.Password, account.PasswordHash); err != nil {
		log.Warn().Str("email", req.Email).Msg("Failed login attempt")
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tokenPair, err := h.jwtManager.GenerateTokenPair(&account.User)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate tokens")
		writeError(w, "failed to generate tokens", http.StatusInternalServerError)
		return
	}

	response := LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		User: UserInfo{
			ID:       account.ID,
			Email:    account.Email,
			Username: account.Username,
			Role:     account.Role,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// RefreshRequest represents token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	// Re-resolve the account so role changes take effect on refresh
	var account Account
	found := false
	for _, a := range h.directory.byEmail {
		if a.ID == claims.UserID {
			account = a
			found = true
			break
		}
	}
	if !found {
		writeError(w, "unknown user", http.StatusUnauthorized)
		return
	}

	tokenPair, err := h.jwtManager.GenerateTokenPair(&account.User)
	if err != nil {
		writeError(w, "failed to generate tokens", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenPair)
}
