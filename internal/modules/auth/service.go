package auth

import (
	"context"
	"errors"
	"strings"

	"mentorhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	users  UserRepository
	tokens TokenIssuer
}

func NewService(users UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) RegisterMentee(ctx context.Context, req RegisterMenteeRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         domain.RoleMentee,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, mapCreateError(err)
	}
	return u, nil
}

func (s *Service) RegisterMentor(ctx context.Context, req RegisterMentorRequest) (*domain.User, error) {
	if req.HourlyRate <= 0 {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         domain.RoleMentor,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Bio:          strings.TrimSpace(req.Bio),
		HourlyRate:   req.HourlyRate,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, mapCreateError(err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (string, *domain.User, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) ListMentors(ctx context.Context, maxHourlyRate int64) ([]domain.User, error) {
	return s.users.ListMentors(ctx, maxHourlyRate)
}

// mapCreateError maps unique-email violations from either engine to
// ErrEmailTaken.
func mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique") {
		return ErrEmailTaken
	}
	return err
}

func ToPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:         u.ID,
		Role:       string(u.Role),
		Name:       u.Name,
		Email:      u.Email,
		Bio:        u.Bio,
		HourlyRate: u.HourlyRate,
	}
}
