package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

const userColumns = `id, first_name, last_name, email, phone, role, address, created_at, updated_at`

type UserParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      model.UserRole
	Address   *model.Address
}

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, params UserParams) (model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params UserParams) (model.User, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r userRepository) CreateUser(ctx context.Context, params UserParams) (model.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate user id: %w", err)
	}

	args, err := userArgs(params)
	if err != nil {
		return model.User{}, err
	}
	args["id"] = id

	rows, err := r.db.Query(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone, role, address)
		VALUES (@id, @first_name, @last_name, @email, @phone, @role, @address)
		RETURNING `+userColumns, args)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	return collectOneUser(rows)
}

func (r userRepository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return model.User{}, fmt.Errorf("select user: %w", err)
	}

	return collectOneUser(rows)
}

func (r userRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	userRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}

	users := make([]model.User, 0, len(userRows))
	for _, row := range userRows {
		user, err := userRowToModel(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (r userRepository) UpdateUser(ctx context.Context, id uuid.UUID, params UserParams) (model.User, error) {
	args, err := userArgs(params)
	if err != nil {
		return model.User{}, err
	}
	args["id"] = id

	rows, err := r.db.Query(ctx, `
		UPDATE users
		SET
			first_name = @first_name,
			last_name  = @last_name,
			email      = @email,
			phone      = @phone,
			role       = @role,
			address    = @address,
			updated_at = NOW()
		WHERE id = @id
		RETURNING `+userColumns, args)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}

	return collectOneUser(rows)
}

type userRow struct {
	ID        uuid.UUID       `db:"id"`
	FirstName string          `db:"first_name"`
	LastName  string          `db:"last_name"`
	Email     string          `db:"email"`
	Phone     string          `db:"phone"`
	Role      string          `db:"role"`
	Address   json.RawMessage `db:"address"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func userArgs(params UserParams) (pgx.NamedArgs, error) {
	role := params.Role
	if role == "" {
		role = model.UserRoleCustomer
	}

	var address []byte
	if params.Address != nil {
		b, err := json.Marshal(params.Address)
		if err != nil {
			return nil, fmt.Errorf("marshal address: %w", err)
		}
		address = b
	}

	return pgx.NamedArgs{
		"first_name": params.FirstName,
		"last_name":  params.LastName,
		"email":      params.Email,
		"phone":      params.Phone,
		"role":       string(role),
		"address":    address,
	}, nil
}

func collectOneUser(rows pgx.Rows) (model.User, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return model.User{}, fmt.Errorf("collect user: %w", notFoundOr(err))
	}

	return userRowToModel(row)
}

func userRowToModel(row userRow) (model.User, error) {
	var address *model.Address
	if len(row.Address) > 0 && string(row.Address) != "null" {
		address = &model.Address{}
		if err := json.Unmarshal(row.Address, address); err != nil {
			return model.User{}, fmt.Errorf("unmarshal address of user %s: %w", row.ID, err)
		}
	}

	return model.User{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Phone:     row.Phone,
		Role:      model.UserRole(row.Role),
		Address:   address,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
