// Package services contains server-side business logic. This file implements
// AuthService, the login, registration and password-reset flows.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/dbx"
	"github.com/dmitrijs2005/chatshield/internal/events"
	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/challenges"
	"github.com/dmitrijs2005/chatshield/internal/server/mailer"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
	"github.com/dmitrijs2005/chatshield/internal/server/repositories/repomanager"
)

// Mailer delivers an OTP code. It blocks until the message is accepted or
// fails.
type Mailer interface {
	Send(ctx context.Context, to, code, subject string) error
}

// TokenIssuer mints a session ticket for a verified username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// AuthService answers every auth intent with exactly one models.AuthStatus.
// Lookup failures and mismatches share one reply so clients cannot probe
// which accounts exist.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	challenges  *challenges.Registry
	mailer      Mailer
	tokens      TokenIssuer
	mailTimeout time.Duration
	newCode     func() (string, error)
	log         logging.Logger
}

// NewAuthService wires the flows to their stores and collaborators. tokens may
// be nil, in which case login replies carry no ticket.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, reg *challenges.Registry,
	mail Mailer, tokens TokenIssuer, mailTimeout time.Duration, log logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		challenges:  reg,
		mailer:      mail,
		tokens:      tokens,
		mailTimeout: mailTimeout,
		newCode:     common.GenerateOTP,
		log:         log.With("module", "auth"),
	}
}

func (s *AuthService) Login(ctx context.Context, user, pass string) models.AuthStatus {
	user = events.NormalizeIdentity(user)

	secret, err := s.repomanager.Users(s.db).GetPassword(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Failure(models.MsgInvalidCredentials)
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return models.Failure(models.MsgServerError)
	}
	if !checkSecret(secret, pass) {
		return models.Failure(models.MsgInvalidCredentials)
	}

	status := models.AuthStatus{Success: true, IsLogin: true, User: user, Message: models.MsgVerified}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user)
		if err != nil {
			s.log.Warn(ctx, "session ticket not issued", "user", user, "error", err)
		}
		status.Token = token
	}
	return status
}

// RegisterStep1 stages a registration and mails its code. The pending entry
// is kept even when delivery fails.
func (s *AuthService) RegisterStep1(ctx context.Context, user, pass, email string) models.AuthStatus {
	user = events.NormalizeIdentity(user)

	if !longEnough(pass) {
		return models.Failure(models.MsgPasswordTooShort)
	}

	code, err := s.newCode()
	if err != nil {
		s.log.Error(ctx, "otp generation failed", "error", err)
		return models.Failure(models.MsgServerError)
	}
	s.challenges.Registrations.Put(user, models.PendingRegistration{Password: pass, Email: email, Code: code})

	if err := s.send(ctx, email, code, mailer.SubjectVerification); err != nil {
		s.log.Error(ctx, "verification mail failed", "user", user, "error", err)
		return models.Failure(models.MsgEmailFailed)
	}
	return models.AuthStatus{Success: true, NeedsOTP: true, Message: models.MsgOTPSent}
}

func (s *AuthService) VerifyOtp(ctx context.Context, user, otp string) models.AuthStatus {
	user = events.NormalizeIdentity(user)

	pending, ok := s.challenges.Registrations.Matches(user, otp)
	if !ok {
		return models.Failure(models.MsgIncorrectOTP)
	}

	err := s.repomanager.Users(s.db).Create(ctx, &models.Account{
		Username: user,
		Password: pending.Password,
		Email:    pending.Email,
	})
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return models.Failure(models.MsgUserExists)
	case err != nil:
		s.log.Error(ctx, "account create failed", "user", user, "error", err)
		return models.Failure(models.MsgServerError)
	}

	s.log.Info(ctx, "account created", "user", user)
	return models.AuthStatus{Success: true, Message: models.MsgAccountCreated}
}

func (s *AuthService) RequestReset(ctx context.Context, email string) models.AuthStatus {
	if _, err := s.repomanager.Users(s.db).GetUsernameByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Failure(models.MsgEmailNotFound)
		}
		s.log.Error(ctx, "reset lookup failed", "error", err)
		return models.Failure(models.MsgServerError)
	}

	code, err := s.newCode()
	if err != nil {
		s.log.Error(ctx, "otp generation failed", "error", err)
		return models.Failure(models.MsgServerError)
	}
	s.challenges.Resets.Put(email, models.PendingReset{Code: code})

	if err := s.send(ctx, email, code, mailer.SubjectRecovery); err != nil {
		s.log.Error(ctx, "recovery mail failed", "error", err)
		return models.Failure(models.MsgEmailFailed)
	}
	return models.AuthStatus{Success: true, NeedsOTP: true, Message: models.MsgResetCodeSent}
}

// ConfirmReset updates the secret of the account owning email when the code
// matches and the new secret is long enough.
func (s *AuthService) ConfirmReset(ctx context.Context, email, otp, pass string) models.AuthStatus {
	if _, ok := s.challenges.Resets.Matches(email, otp); !ok || !longEnough(pass) {
		return models.Failure(models.MsgResetRejected)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.GetUsernameByEmail(ctx, email); err != nil {
			return err
		}
		_, err := repo.UpdatePasswordByEmail(ctx, email, pass)
		return err
	})
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return models.Failure(models.MsgResetRejected)
	case err != nil:
		s.log.Error(ctx, "password update failed", "error", err)
		return models.Failure(models.MsgServerError)
	}

	s.log.Info(ctx, "password updated")
	return models.AuthStatus{Success: true, Message: models.MsgPasswordUpdated}
}

func (s *AuthService) send(ctx context.Context, to, code, subject string) error {
	if s.mailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.mailTimeout)
		defer cancel()
	}
	return s.mailer.Send(ctx, to, code, subject)
}

func checkSecret(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func longEnough(pass string) bool {
	return utf8.RuneCountInString(pass) >= common.MinPasswordLength
}
