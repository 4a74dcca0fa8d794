package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	rec := toRecord(user)
	res := p.db.WithContext(ctx).Create(&rec)
	if err := res.Error; err != nil {
		if isDuplicate(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists.At("UserRepo.CreateUser")
		}
		return uuid.Nil, customErrors.WrapInternal(err, "UserRepo.CreateUser")
	}
	return rec.ID, nil
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.first(ctx, "UserRepo.GetUserByEmail", "email = ?", email)
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return p.first(ctx, "UserRepo.GetUserByID", "id = ?", id)
}

func (p *PostgresUserRepo) first(ctx context.Context, at, query string, arg any) (model.User, error) {
	var rec userRecord
	res := p.db.WithContext(ctx).Where(query, arg).First(&rec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrRecordNotFound.At(at)
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, at)
	}
	return rec.toModel(), nil
}

func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user model.User) error {
	rec := toRecord(user)
	res := p.db.WithContext(ctx).Model(&userRecord{ID: user.ID}).Select("*").Omit("created_at").Updates(&rec)
	if err := res.Error; err != nil {
		if isDuplicate(err) {
			return customErrors.ErrAlreadyExists.At("UserRepo.UpdateUser")
		}
		return customErrors.WrapInternal(err, "UserRepo.UpdateUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrRecordNotFound.At("UserRepo.UpdateUser")
	}
	return nil
}

func (p *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&userRecord{}, "id = ?", id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UserRepo.DeleteUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrRecordNotFound.At("UserRepo.DeleteUser")
	}
	return nil
}

// ListUsers returns users in creation order.
func (p *PostgresUserRepo) ListUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	var recs []userRecord
	res := p.db.WithContext(ctx).Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&recs)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "UserRepo.ListUsers")
	}

	users := make([]model.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, r.toModel())
	}
	return users, nil
}

func (p *PostgresUserRepo) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
