package save

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaStore хранит сохранения в таблице scenes базы MariaDB/MySQL
type MariaStore struct {
	db *sql.DB
}

// NewMariaStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname)
func NewMariaStore(dsn string) (*MariaStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return store, nil
}

func (m *MariaStore) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS scenes (
			name     VARCHAR(191) PRIMARY KEY,
			data     LONGBLOB     NOT NULL,
			saved_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			         ON UPDATE    CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы scenes: %w", err)
	}
	return nil
}

func (m *MariaStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO scenes (name, data)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			data = VALUES(data),
			saved_at = CURRENT_TIMESTAMP
	`
	if _, err := m.db.ExecContext(ctx, query, name, data); err != nil {
		return fmt.Errorf("ошибка сохранения сцены %s: %w", name, err)
	}
	return nil
}

func (m *MariaStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var data []byte
	err := m.db.QueryRowContext(ctx, `SELECT data FROM scenes WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки сцены %s: %w", name, err)
	}
	return data, nil
}

func (m *MariaStore) List(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM scenes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка сцен: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ошибка чтения списка сцен: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (m *MariaStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	result, err := m.db.ExecContext(ctx, `DELETE FROM scenes WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("ошибка удаления сцены %s: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка удаления сцены %s: %w", name, err)
	}
	if affected == 0 {
		return notFound(name)
	}
	return nil
}

func (m *MariaStore) Close() error {
	return m.db.Close()
}
