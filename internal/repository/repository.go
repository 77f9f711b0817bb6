// Пакет repository — слой доступа к данным PostgreSQL.
// Все запросы — чистый SQL через pgx, без ORM.
// Таблицы хост-системы записываются в запросах как {name} и получают
// настраиваемый префикс (по умолчанию mdl_).
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner позволяет выполнять операции в транзакции.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner для управления транзакциями.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx выполняет fn внутри транзакции.
// При ошибке fn — транзакция откатывается.
// При успехе — коммитится.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // откат после коммита — no-op

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Store — набор репозиториев хост-системы, разделяющих одно подключение
// (пул или транзакцию).
type Store struct {
	Services ServiceRepository
	Grants   GrantRepository
	Tokens   TokenRepository
	Users    UserRepository
	Site     SiteRepository
	Config   PluginConfigRepository
}

// NewStore создаёт набор репозиториев поверх db.
func NewStore(db DBTX, prefix string) *Store {
	return &Store{
		Services: NewServiceRepository(db, prefix),
		Grants:   NewGrantRepository(db, prefix),
		Tokens:   NewTokenRepository(db, prefix),
		Users:    NewUserRepository(db, prefix),
		Site:     NewSiteRepository(db, prefix),
		Config:   NewPluginConfigRepository(db, prefix),
	}
}

// StoreTxRunner выполняет fn с набором репозиториев, привязанных к транзакции.
type StoreTxRunner struct {
	runner *TxRunner
	prefix string
}

// NewStoreTxRunner создаёт StoreTxRunner.
func NewStoreTxRunner(pool *pgxpool.Pool, prefix string) *StoreTxRunner {
	return &StoreTxRunner{runner: NewTxRunner(pool), prefix: prefix}
}

// WithinTx выполняет fn в транзакции; ошибка fn откатывает все изменения.
func (r *StoreTxRunner) WithinTx(ctx context.Context, fn func(store *Store) error) error {
	return r.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStore(tx, r.prefix))
	})
}

// tableRe — ссылка на таблицу хост-системы в тексте запроса.
var tableRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// hostSQL подставляет префикс таблиц хост-системы: {user} -> mdl_user.
type hostSQL struct {
	prefix string
}

// q возвращает запрос с подставленным префиксом.
func (h hostSQL) q(query string) string {
	return tableRe.ReplaceAllString(query, h.prefix+"${1}")
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// collectInt64 читает одну колонку BIGINT из rows.
func collectInt64(rows pgx.Rows) ([]int64, error) {
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
