// AngelaMos | 2026
// store.go

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
)

// Store is the relational implementation. Queries are written with "?"
// placeholders and rebound for the connected driver.
type Store struct {
	database *core.Database
	db       *sqlx.DB
	now      func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(database *core.Database, opts ...Option) *Store {
	s := &Store{
		database: database,
		db:       database.DB,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) touch(prev time.Time) time.Time {
	next := s.timestamp()
	if !next.After(prev) {
		next = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return next
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return core.InTx(ctx, s.db, fn)
}

const userSummaryQuery = `
	SELECT u.id, u.name, u.created_at, COUNT(uc.id) AS subscription_count
	FROM "user" u
	LEFT JOIN user_currency uc ON uc.user_id = u.id`

func (s *Store) CreateUser(ctx context.Context, name string) (int64, error) {
	u, err := model.NewUser(name)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	var id int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO "user" (name, created_at) VALUES (?, ?) RETURNING id`)
		return tx.GetContext(ctx, &id, query, u.Name, s.timestamp())
	})
	if err != nil {
		return 0, wrap("create user", err)
	}

	return id, nil
}

func (s *Store) ReadUsers(ctx context.Context) ([]model.UserSummary, error) {
	query := userSummaryQuery + `
		GROUP BY u.id, u.name, u.created_at
		ORDER BY u.name, u.id`

	users := make([]model.UserSummary, 0)
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, wrap("read users", err)
	}

	return users, nil
}

func (s *Store) ReadUser(ctx context.Context, id int64) (*model.UserSummary, error) {
	query := s.db.Rebind(userSummaryQuery + `
		WHERE u.id = ?
		GROUP BY u.id, u.name, u.created_at`)

	var user model.UserSummary
	err := s.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("read user", err)
	}

	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, name string) (bool, error) {
	name, err := model.ValidateName(name)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	var updated bool
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE "user" SET name = ? WHERE id = ?`), name, id)
		if err != nil {
			return err
		}
		updated, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap("update user", err)
	}

	return updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`DELETE FROM user_currency WHERE user_id = ?`), id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM "user" WHERE id = ?`), id)
		if err != nil {
			return err
		}
		deleted, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap("delete user", err)
	}

	return deleted, nil
}

const currencyColumns = `id, num_code, char_code, name, value, nominal, last_updated`

func (s *Store) CreateCurrency(
	ctx context.Context,
	numCode, charCode, name string,
	value float64,
	nominal int,
) (int64, error) {
	c, err := model.NewCurrency(numCode, charCode, name, value, nominal)
	if err != nil {
		return 0, fmt.Errorf("create currency: %w", err)
	}

	var id int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO currency (num_code, char_code, name, value, nominal, last_updated)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`)
		return tx.GetContext(ctx, &id, query,
			c.NumCode, c.CharCode, c.Name, c.Value, c.Nominal, s.timestamp())
	})
	if err != nil {
		return 0, wrap("create currency "+c.CharCode, err)
	}

	return id, nil
}

func (s *Store) ReadCurrencies(ctx context.Context) ([]model.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currency ORDER BY char_code`

	currencies := make([]model.Currency, 0)
	if err := s.db.SelectContext(ctx, &currencies, query); err != nil {
		return nil, wrap("read currencies", err)
	}

	return currencies, nil
}

func (s *Store) ReadCurrency(ctx context.Context, id int64) (*model.Currency, error) {
	return getCurrency(ctx, s.db, "id", id)
}

func (s *Store) ReadCurrencyByCode(
	ctx context.Context,
	charCode string,
) (*model.Currency, error) {
	return getCurrency(ctx, s.db, "char_code", model.NormalizeCharCode(charCode))
}

func getCurrency(
	ctx context.Context,
	db core.DBTX,
	column string,
	key any,
) (*model.Currency, error) {
	query := db.Rebind(`SELECT ` + currencyColumns + ` FROM currency WHERE ` + column + ` = ?`)

	var c model.Currency
	err := db.GetContext(ctx, &c, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read currency %v: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("read currency", err)
	}

	return &c, nil
}

func (s *Store) UpdateCurrencyValue(
	ctx context.Context,
	charCode string,
	value float64,
) (bool, error) {
	code := model.NormalizeCharCode(charCode)
	if err := model.ValidateRate(value); err != nil {
		return false, fmt.Errorf("update currency %s: %w", code, err)
	}

	var updated bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getCurrency(ctx, tx, "char_code", code)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE currency SET value = ?, last_updated = ? WHERE id = ?`),
			value, s.touch(current.LastUpdated), current.ID)
		if err != nil {
			return err
		}
		updated, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap("update currency "+code, err)
	}

	return updated, nil
}

func (s *Store) UpdateCurrency(
	ctx context.Context,
	id int64,
	upd model.CurrencyUpdate,
) (bool, error) {
	if upd.IsEmpty() {
		return false, nil
	}

	upd, err := upd.Normalize()
	if err != nil {
		return false, fmt.Errorf("update currency %d: %w", id, err)
	}

	var updated bool
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getCurrency(ctx, tx, "id", id)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		next := upd.Apply(*current)
		if err := model.ValidateCurrency(next); err != nil {
			return err
		}

		query := tx.Rebind(`
			UPDATE currency
			SET num_code = ?, char_code = ?, name = ?, value = ?, nominal = ?, last_updated = ?
			WHERE id = ?`)
		res, err := tx.ExecContext(ctx, query,
			next.NumCode, next.CharCode, next.Name, next.Value, next.Nominal,
			s.touch(current.LastUpdated), id)
		if err != nil {
			return err
		}
		updated, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap(fmt.Sprintf("update currency %d", id), err)
	}

	return updated, nil
}

func (s *Store) DeleteCurrency(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`DELETE FROM user_currency WHERE currency_id = ?`), id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM currency WHERE id = ?`), id)
		if err != nil {
			return err
		}
		deleted, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap("delete currency", err)
	}

	return deleted, nil
}

func (s *Store) Subscribe(ctx context.Context, userID, currencyID int64) (bool, error) {
	var created bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := mustExist(ctx, tx, `SELECT COUNT(*) FROM "user" WHERE id = ?`, userID); err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		if err := mustExist(ctx, tx, `SELECT COUNT(*) FROM currency WHERE id = ?`, currencyID); err != nil {
			return fmt.Errorf("currency %d: %w", currencyID, err)
		}

		var existing int
		err := tx.GetContext(ctx, &existing,
			tx.Rebind(`SELECT COUNT(*) FROM user_currency WHERE user_id = ? AND currency_id = ?`),
			userID, currencyID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO user_currency (user_id, currency_id, created_at) VALUES (?, ?, ?)`),
			userID, currencyID, s.timestamp())
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, wrap("subscribe", err)
	}

	return created, nil
}

func mustExist(ctx context.Context, tx *sqlx.Tx, query string, id int64) error {
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(query), id); err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) Unsubscribe(ctx context.Context, userID, currencyID int64) (bool, error) {
	var removed bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind(`DELETE FROM user_currency WHERE user_id = ? AND currency_id = ?`),
			userID, currencyID)
		if err != nil {
			return err
		}
		removed, err = affected(res)
		return err
	})
	if err != nil {
		return false, wrap("unsubscribe", err)
	}

	return removed, nil
}

func (s *Store) ListSubscriptions(
	ctx context.Context,
	userID int64,
) ([]model.SubscribedCurrency, error) {
	query := s.db.Rebind(`
		SELECT c.id, c.num_code, c.char_code, c.name, c.value, c.nominal, c.last_updated,
		       uc.id AS subscription_id, uc.created_at AS subscribed_at
		FROM user_currency uc
		JOIN currency c ON c.id = uc.currency_id
		WHERE uc.user_id = ?
		ORDER BY c.char_code`)

	subs := make([]model.SubscribedCurrency, 0)
	if err := s.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, wrap("list subscriptions", err)
	}

	return subs, nil
}

type appRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Version     string `db:"version"`
	AuthorID    int64  `db:"author_id"`
	AuthorName  string `db:"author_name"`
	AuthorGroup string `db:"author_group"`
}

// SaveApp replaces the single app/author pair.
func (s *Store) SaveApp(ctx context.Context, app model.App) error {
	app, err := model.NewApp(app.Name, app.Version, app.Author)
	if err != nil {
		return fmt.Errorf("save app: %w", err)
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM app`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM author`); err != nil {
			return err
		}

		var authorID int64
		err := tx.GetContext(ctx, &authorID,
			tx.Rebind(`INSERT INTO author (name, group_name) VALUES (?, ?) RETURNING id`),
			app.Author.Name, app.Author.Group)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO app (name, version, author_id) VALUES (?, ?, ?)`),
			app.Name, app.Version, authorID)
		return err
	})

	return wrap("save app", err)
}

func (s *Store) ReadApp(ctx context.Context) (*model.App, error) {
	query := `
		SELECT a.id, a.name, a.version,
		       au.id AS author_id, au.name AS author_name, au.group_name AS author_group
		FROM app a
		JOIN author au ON au.id = a.author_id
		ORDER BY a.id DESC
		LIMIT 1`

	var row appRow
	err := s.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read app: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("read app", err)
	}

	return &model.App{
		ID:      row.ID,
		Name:    row.Name,
		Version: row.Version,
		Author: model.Author{
			ID:    row.AuthorID,
			Name:  row.AuthorName,
			Group: row.AuthorGroup,
		},
	}, nil
}

func (s *Store) Statistics(ctx context.Context) (model.Statistics, error) {
	var stats model.Statistics

	query := `
		SELECT
			(SELECT COUNT(*) FROM "user")        AS user_count,
			(SELECT COUNT(*) FROM currency)      AS currency_count,
			(SELECT COUNT(*) FROM user_currency) AS subscription_count`
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return model.Statistics{}, wrap("statistics", err)
	}

	var updates []time.Time
	if err := s.db.SelectContext(ctx, &updates, `SELECT last_updated FROM currency`); err != nil {
		return model.Statistics{}, wrap("statistics", err)
	}

	for _, ts := range updates {
		if stats.LastUpdate == nil || ts.After(*stats.LastUpdate) {
			last := ts
			stats.LastUpdate = &last
		}
	}

	return stats, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.database.Ping(ctx)
}

func (s *Store) Close() error {
	return s.database.Close()
}

func affected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

var _ store.Store = (*Store)(nil)
