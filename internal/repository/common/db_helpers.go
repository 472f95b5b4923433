package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Where собирает условие WHERE с позиционными параметрами $1, $2, ...
type Where struct {
	clauses []string
	args    []interface{}
}

// Add добавляет условие; каждый "?" в clause заменяется очередным $N с тем же значением.
func (w *Where) Add(clause string, value interface{}) {
	placeholder := fmt.Sprintf("$%d", len(w.args)+1)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", placeholder))
	w.args = append(w.args, value)
}

func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *Where) Args() []interface{} {
	return append([]interface{}(nil), w.args...)
}

// Next возвращает номер следующего параметра (для LIMIT/OFFSET).
func (w *Where) Next() int {
	return len(w.args) + 1
}

// MarshalJSONB сериализует значение для JSONB колонки; nil превращается в fallback.
func MarshalJSONB(v interface{}, fallback string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte(fallback), nil
	}
	return data, nil
}

// LikePattern экранирует спецсимволы ILIKE.
func LikePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
