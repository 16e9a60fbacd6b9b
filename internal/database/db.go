package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=Local so creado_en
	// matches the local-time stamps written by the lifecycle service
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the reservas and admins tables when they do not
// exist yet.  fecha/hora are stored as the submitted strings and the
// terminal-state stamps as "2006-01-02 15:04:05" text in server-local
// time, so string ordering matches the submission ordering the admin
// panel relies on.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reservas (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			numero_reserva VARCHAR(191) NULL,
			nombre VARCHAR(191) NOT NULL,
			email VARCHAR(191) NULL,
			telefono VARCHAR(64) NULL,
			fecha VARCHAR(10) NOT NULL,
			hora VARCHAR(8) NOT NULL,
			servicio VARCHAR(191) NULL,
			notas TEXT NULL,
			rango_desde VARCHAR(64) NULL,
			rango_hasta VARCHAR(64) NULL,
			nombre_archivo TEXT NULL,
			cajas VARCHAR(64) NULL,
			responsable VARCHAR(191) NULL,
			documento VARCHAR(191) NULL,
			estado VARCHAR(20) NOT NULL DEFAULT 'pendiente',
			fecha_confirmacion VARCHAR(19) NULL,
			fecha_cancelacion VARCHAR(19) NULL,
			creado_en TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_reservas_numero (numero_reserva)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(191) NOT NULL,
			password VARCHAR(191) NOT NULL,
			nombre_completo VARCHAR(191) NULL,
			token VARCHAR(64) NULL,
			UNIQUE KEY uq_admins_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
