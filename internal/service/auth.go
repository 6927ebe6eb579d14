package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/cs334f24/git-learner/internal/domain"
)

// AuthService handles GitHub OAuth login and the JWT auth cookie. The OAuth
// dance only identifies the learner; every repository mutation afterwards
// runs as the GitHub App installation, never as the learner.
type AuthService struct {
	users     domain.UserRepository
	oauth     *oauth2.Config
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, clientID, clientSecret, redirectURL, jwtSecret string) *AuthService {
	return &AuthService{
		users: users,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauthgithub.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		jwtSecret: []byte(jwtSecret),
	}
}

// LoginURL returns the GitHub authorization URL for the given state.
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the OAuth code, reads the learner's GitHub
// profile, and upserts the user row keyed by GitHub login.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*domain.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange oauth code: %v", domain.ErrUnauthorized, err)
	}

	client := github.NewClient(s.oauth.Client(ctx, token))
	profile, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch github profile: %w", err)
	}

	user := &domain.User{
		Name:        profile.GetName(),
		Email:       profile.GetEmail(),
		GithubLogin: profile.GetLogin(),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}

// IssueToken signs a JWT for the user, with the GitHub login as subject.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.GithubLogin,
		"uid":  strconv.FormatInt(user.ID, 10),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and validates a JWT token string.
// Returns the GitHub login from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}

	return sub, nil
}

// GetUserByLogin retrieves a user by their GitHub login.
func (s *AuthService) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return s.users.GetByLogin(ctx, login)
}
