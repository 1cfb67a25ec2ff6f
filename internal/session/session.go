// Package session keeps the simulated login and the profile preferences of
// the single local user.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/pkg"
)

const (
	DefaultTheme    = "default"
	MaxNameLength   = 100
	profileImagePfx = "data:image/"
)

var (
	ErrNoSession    = errors.New("not logged in")
	ErrInvalidEmail = errors.New("a valid email address is required")
	ErrNameTooLong  = errors.New("name is too long")
	ErrInvalidImage = errors.New("profile image must be an image data URI")
	ErrUnknownTheme = errors.New("unknown theme")
)

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Theme struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Primary string `json:"primary"`
	Bg      string `json:"bg"`
}

var Themes = []Theme{
	{ID: "default", Name: "Default", Primary: "hsl(142, 71%, 45%)", Bg: "hsl(0, 0%, 3%)"},
	{ID: "ocean", Name: "Ocean Blue", Primary: "hsl(210, 100%, 50%)", Bg: "hsl(210, 50%, 5%)"},
	{ID: "sunset", Name: "Sunset", Primary: "hsl(25, 95%, 53%)", Bg: "hsl(25, 30%, 5%)"},
	{ID: "purple", Name: "Purple", Primary: "hsl(270, 70%, 60%)", Bg: "hsl(270, 30%, 5%)"},
	{ID: "rose", Name: "Rose", Primary: "hsl(350, 80%, 60%)", Bg: "hsl(350, 30%, 5%)"},
	{ID: "mint", Name: "Mint", Primary: "hsl(160, 60%, 50%)", Bg: "hsl(160, 30%, 5%)"},
}

func ThemeByID(id string) (Theme, bool) {
	for _, t := range Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

type Service struct {
	user         *kv.Value[*User]
	profileImage *kv.Text
	theme        *kv.Text
}

func NewService(store kv.Store) *Service {
	return &Service{
		user:         kv.NewValue[*User](store, kv.KeyUser, nil),
		profileImage: kv.NewText(store, kv.KeyProfileImage),
		theme:        kv.NewText(store, kv.KeyTheme),
	}
}

// Login stores the session. There are no credentials to check, a name left
// empty falls back to the local part of the email.
func (s *Service) Login(ctx context.Context, email, name string) (*User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") {
		return nil, ErrInvalidEmail
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = pkg.EmailLocalPart(email)
	}
	if len([]rune(name)) > MaxNameLength {
		return nil, ErrNameTooLong
	}

	user := &User{Email: email, Name: name}
	if err := s.user.Set(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Current reports false when nobody is logged in.
func (s *Service) Current(ctx context.Context) (*User, bool, error) {
	user, err := s.user.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	if user == nil || user.Email == "" {
		return nil, false, nil
	}
	return user, true, nil
}

// Email is the notification address of the logged-in user.
func (s *Service) Email(ctx context.Context) (string, bool, error) {
	user, ok, err := s.Current(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	return user.Email, true, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.user.Delete(ctx)
}

func (s *Service) Rename(ctx context.Context, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) > MaxNameLength {
		return nil, ErrNameTooLong
	}

	updated, err := s.user.Update(ctx, func(current *User) (*User, error) {
		if current == nil || current.Email == "" {
			return nil, ErrNoSession
		}
		return &User{Email: current.Email, Name: name}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) SetProfileImage(ctx context.Context, dataURI string) error {
	if !strings.HasPrefix(dataURI, profileImagePfx) {
		return ErrInvalidImage
	}
	return s.profileImage.Set(ctx, dataURI)
}

func (s *Service) ProfileImage(ctx context.Context) (string, bool, error) {
	return s.profileImage.Get(ctx)
}

func (s *Service) SetTheme(ctx context.Context, id string) (Theme, error) {
	theme, ok := ThemeByID(id)
	if !ok {
		return Theme{}, ErrUnknownTheme
	}
	if err := s.theme.Set(ctx, id); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// Theme falls back to the default theme when none or an unknown one is stored.
func (s *Service) Theme(ctx context.Context) (Theme, error) {
	id, _, err := s.theme.Get(ctx)
	if err != nil {
		return Theme{}, err
	}
	if theme, ok := ThemeByID(id); ok {
		return theme, nil
	}
	theme, _ := ThemeByID(DefaultTheme)
	return theme, nil
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrNameTooLong) ||
		errors.Is(err, ErrInvalidImage) ||
		errors.Is(err, ErrUnknownTheme)
}
