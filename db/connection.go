package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/config"
	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
)

// InitDB abre la base sqlite. En modo desarrollo recrea las tablas y crea el
// administrador por defecto.
func InitDB(cfg config.Config) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creando directorio de la base de datos: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("error abriendo la base de datos: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error conectando a la base de datos: %w", err)
	}

	if !cfg.Production {
		log.Info("Modo desarrollo activado, eliminando tablas y creando nuevas")
		if err := deleteTables(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if err := createTables(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if !cfg.Production {
		log.Info("Creando administrador por defecto: ", cfg.DefaultAdminUsername)
		if err := CreateUser(conn, cfg.DefaultAdminUsername, cfg.DefaultAdminPassword, models.RoleAdmin); err != nil {
			conn.Close()
			return nil, fmt.Errorf("error creando administrador por defecto: %w", err)
		}
	}

	return conn, nil
}

func deleteTables(conn *sql.DB) error {
	query := `
	DROP TABLE IF EXISTS users;
	DROP TABLE IF EXISTS ultimas_posiciones;
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("error eliminando tablas: %w", err)
	}
	return nil
}

func createTables(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT CHECK(role IN ('admin', 'operador')) NOT NULL,
		active BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS ultimas_posiciones (
		vehiculo_id TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		fuente TEXT NOT NULL,
		recibido_en DATETIME NOT NULL,
		actualizado_en DATETIME
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("error creando tablas: %w", err)
	}
	return nil
}

// CreateUser inserta un usuario del panel con la contraseña ya hasheada.
func CreateUser(conn *sql.DB, username, password, role string) error {
	if role != models.RoleAdmin && role != models.RoleOperador {
		return fmt.Errorf("rol inválido: %q", role)
	}
	hash := pkg.GeneratePassword(password)
	if hash == "" {
		return fmt.Errorf("no se pudo generar el hash de la contraseña")
	}
	_, err := conn.Exec("INSERT INTO users (username, password, role) VALUES (?, ?, ?)", username, hash, role)
	return err
}
