package repository

import (
	"context"

	"bus-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	return database.RunInTx(ctx, t.db, func(tx pgx.Tx) error {
		repo := bind(tx, t.log)
		repo.Atomic = joinedTx{repo: repo}
		return fn(repo)
	})
}

// joinedTx lets code already inside a transaction call WithinTx again
// without opening a nested one.
type joinedTx struct {
	repo *Repository
}

func (j joinedTx) WithinTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}
