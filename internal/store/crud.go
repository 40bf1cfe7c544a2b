package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/game"
	"github.com/aa196883/boardgame-crud/internal/schema"
)

// GetGame fetches a single game by exact name.
func (s *Store) GetGame(ctx context.Context, name string) (*game.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(schema.Columns, ", "), schema.TableName, schema.NameColumn)

	result, err := s.ExecuteSelect(ctx, query, name)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, errors.NewGameNotFoundError(name)
	}

	g := game.FromRow(result.Rows[0].Map())
	return &g, nil
}

// CreateGame inserts a new game. A name collision returns a duplicate
// error rather than a bare constraint failure.
func (s *Store) CreateGame(ctx context.Context, g game.Game) error {
	params := g.ToParams()
	placeholders := make([]string, len(schema.Columns))
	args := make([]interface{}, len(schema.Columns))
	for i, col := range schema.Columns {
		placeholders[i] = "?"
		args[i] = params[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.TableName,
		strings.Join(schema.Columns, ", "),
		strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errors.NewDuplicateGameError(g.Name)
		}
		return errors.NewDatabaseExecutionError(err)
	}
	return nil
}

// UpdateGame replaces the record identified by name with the merged
// record g. Renaming onto an existing game is a duplicate error.
func (s *Store) UpdateGame(ctx context.Context, name string, g game.Game) error {
	params := g.ToParams()
	assignments := make([]string, len(schema.Columns))
	args := make([]interface{}, 0, len(schema.Columns)+1)
	for i, col := range schema.Columns {
		assignments[i] = col + " = ?"
		args = append(args, params[col])
	}
	args = append(args, name)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		schema.TableName, strings.Join(assignments, ", "), schema.NameColumn)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewDuplicateGameError(g.Name)
		}
		return errors.NewDatabaseExecutionError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NewGameNotFoundError(name)
	}
	return nil
}

// DeleteGame removes the record identified by name.
func (s *Store) DeleteGame(ctx context.Context, name string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", schema.TableName, schema.NameColumn)

	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return errors.NewDatabaseExecutionError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NewGameNotFoundError(name)
	}
	return nil
}

// CountGames reports the number of stored games, used by health checks.
func (s *Store) CountGames(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.TableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.NewDatabaseExecutionError(err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
