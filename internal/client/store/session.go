package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/transport"
)

// Login authenticates, stores the issued credential pair and sets the
// identity. The shared error slot gets the server's reason when it sent one.
func (s *Store) Login(ctx context.Context, email, password string) error {
	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}
	return s.authenticate(ctx, MsgLogin, func() (models.AuthResult, error) {
		return s.api.Login(ctx, creds)
	})
}

func (s *Store) Register(ctx context.Context, reg models.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	return s.authenticate(ctx, MsgRegister, func() (models.AuthResult, error) {
		return s.api.Register(ctx, reg)
	})
}

func (s *Store) authenticate(ctx context.Context, msg string, call func() (models.AuthResult, error)) error {
	s.begin(CollUser)
	defer s.end()

	res, err := call()
	if err != nil {
		s.fail(ctx, CollUser, reason(err, msg), err)
		return err
	}
	if err := s.creds.Save(ctx, res.Tokens); err != nil {
		s.fail(ctx, CollUser, msg, err)
		return fmt.Errorf("save credentials: %w", err)
	}

	user := res.User
	s.update(func(st *State) {
		if st.User == nil || st.User.ID != user.ID {
			clear(s.unconfirmed)
		}
		st.User = &user
		st.Status[CollUser] = StatusReady
	})
	s.logger.Info(ctx, "signed in", "user_id", user.ID)
	return nil
}

func reason(err error, fallback string) string {
	var se *transport.StatusError
	if errors.As(err, &se) {
		if d := se.Detail(); d != "" {
			return d
		}
	}
	return fallback
}

// SetUser replaces the identity. nil signs the user out locally and drops
// the doses still waiting for confirmation, which belong to that user.
func (s *Store) SetUser(u *models.User) {
	s.update(func(st *State) {
		if u == nil {
			st.User = nil
			st.Status[CollUser] = StatusIdle
			clear(s.unconfirmed)
			return
		}
		c := *u
		st.User = &c
		st.Status[CollUser] = StatusReady
	})
}

// Logout clears the stored credential pair, the identity and the
// unconfirmed doses. It does not contact the server.
func (s *Store) Logout(ctx context.Context) error {
	err := s.creds.Clear(ctx)
	s.SetUser(nil)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// HandleSessionEnded is the transport's session-ended hook. Storage has
// already been cleared; the identity and unconfirmed doses are reset here.
func (s *Store) HandleSessionEnded(ctx context.Context) {
	s.logger.Info(ctx, "session ended, signing out")
	s.SetUser(nil)
}
