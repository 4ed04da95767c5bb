package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/pkg/security"
	"barylstyle/contacts-api/pkg/validators"
)

const (
	msgEmailInUse        = "Email in use"
	msgWrongCredentials  = "Email or password is wrong"
	msgEmailNotVerified  = "Email not verified"
	msgUserNotFound      = "User not found"
	msgAlreadyVerified   = "Verification has already been passed"
	msgMissingEmailField = "missing required field email"
	msgNotAuthorized     = "Not authorized"
)

type AuthOptions struct {
	Secret              []byte
	TokenTTL            time.Duration
	RequireVerification bool
	GravatarDefault     bool
	PublicURL           string
}

// AuthService implements registration, sessions and e-mail verification
type AuthService struct {
	users repository.UserRepository
	argon *security.ArgonHash
	mail  MailDispatcher
	opts  AuthOptions
}

func NewAuthService(users repository.UserRepository, argon *security.ArgonHash, mail MailDispatcher, opts AuthOptions) *AuthService {
	return &AuthService{
		users: users,
		argon: argon,
		mail:  mail,
		opts:  opts,
	}
}

type LoginResult struct {
	Token string
	User  *model.User
}

func validateCredentials(email, password string) error {
	if err := validators.EmailValidator(email); err != nil {
		return apperr.Validation(err.Error())
	}

	if err := validators.PasswordValidator(password); err != nil {
		return apperr.Validation(err.Error())
	}

	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict(msgEmailInUse)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check if email is registered, %w", err)
	}

	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	user := &model.User{
		Email:        email,
		Password:     hash,
		Subscription: model.SubscriptionStarter,
		Verify:       !s.opts.RequireVerification,
	}

	if s.opts.RequireVerification {
		token := security.MakeVerificationToken()
		user.VerificationToken = &token
	}

	if s.opts.GravatarDefault {
		user.AvatarURL = security.GravatarURL(email)
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailInUse)
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	if s.opts.RequireVerification {
		err := s.mail.Enqueue(NewVerificationMail(s.opts.PublicURL, user.Email, *user.VerificationToken))
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue verification mail, %w", err)
		}
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth(msgWrongCredentials)
		}

		return nil, fmt.Errorf("failed to find user, %w", err)
	}

	ok, err := s.argon.VerifyPasswd(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, apperr.Auth(msgWrongCredentials)
	}

	if s.opts.RequireVerification && !user.Verify {
		return nil, apperr.Auth(msgEmailNotVerified)
	}

	token, expiresAt, err := security.IssueSessionToken(s.opts.Secret, user.ID, s.opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token, %w", err)
	}

	// Overwrites the previous session, only one token is valid at a time
	if err := s.users.SetToken(ctx, user.ID, &token, &expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store session token, %w", err)
	}

	user.Token = &token
	user.TokenExpiresAt = &expiresAt

	return &LoginResult{Token: token, User: user}, nil
}

// Logout clears the session token of user. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, user *model.User) error {
	if err := s.users.SetToken(ctx, user.ID, nil, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Auth(msgNotAuthorized)
		}

		return fmt.Errorf("failed to clear session token, %w", err)
	}

	user.Token = nil
	user.TokenExpiresAt = nil
	return nil
}

func (s *AuthService) Current(user *model.User) model.PublicUser {
	return user.Public()
}

// RequestVerification sends the verification mail of an unverified user again
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	if email == "" {
		return apperr.Validation(msgMissingEmailField)
	}

	if err := validators.EmailValidator(email); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}

		return fmt.Errorf("failed to find user, %w", err)
	}

	if user.Verify {
		return apperr.BadRequest(msgAlreadyVerified)
	}

	if user.VerificationToken == nil {
		return fmt.Errorf("unverified user %s has no verification token", user.ID)
	}

	if err := s.mail.Enqueue(NewVerificationMail(s.opts.PublicURL, user.Email, *user.VerificationToken)); err != nil {
		return fmt.Errorf("failed to enqueue verification mail, %w", err)
	}

	return nil
}

// ConfirmVerification marks the owner of token as verified. The token is
// single use.
func (s *AuthService) ConfirmVerification(ctx context.Context, token string) error {
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}

		return fmt.Errorf("failed to find user by verification token, %w", err)
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark user as verified, %w", err)
	}

	return nil
}

func (s *AuthService) UpdateSubscription(ctx context.Context, user *model.User, sub model.Subscription) (model.PublicUser, error) {
	if !sub.Valid() {
		return model.PublicUser{}, apperr.Validation(`"subscription" must be one of [starter, pro, business]`)
	}

	if err := s.users.SetSubscription(ctx, user.ID, sub); err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to update subscription, %w", err)
	}

	user.Subscription = sub
	return user.Public(), nil
}
