package db

import (
	"database/sql"
	"fmt"

	"flota-municipal-api/models"
)

// PositionRepository guarda la última foto del mapa de posiciones.
type PositionRepository struct {
	DB *sql.DB
}

func NewPositionRepository(conn *sql.DB) *PositionRepository {
	return &PositionRepository{DB: conn}
}

// SavePositions reemplaza la foto completa en una transacción.
func (r *PositionRepository) SavePositions(positions []models.Posicion) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ultimas_posiciones"); err != nil {
		return fmt.Errorf("error limpiando posiciones: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO ultimas_posiciones (vehiculo_id, lat, lng, fuente, recibido_en, actualizado_en) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range positions {
		var actualizado sql.NullTime
		if p.ActualizadoEn != nil {
			actualizado = sql.NullTime{Time: p.ActualizadoEn.UTC(), Valid: true}
		}
		if _, err := stmt.Exec(p.VehiculoID, p.Lat, p.Lng, p.Fuente, p.RecibidoEn.UTC(), actualizado); err != nil {
			return fmt.Errorf("error guardando posición de %s: %w", p.VehiculoID, err)
		}
	}
	return tx.Commit()
}

func (r *PositionRepository) LoadPositions() ([]models.Posicion, error) {
	rows, err := r.DB.Query("SELECT vehiculo_id, lat, lng, fuente, recibido_en, actualizado_en FROM ultimas_posiciones ORDER BY vehiculo_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Posicion
	for rows.Next() {
		var p models.Posicion
		var actualizado sql.NullTime
		if err := rows.Scan(&p.VehiculoID, &p.Lat, &p.Lng, &p.Fuente, &p.RecibidoEn, &actualizado); err != nil {
			return nil, err
		}
		if actualizado.Valid {
			t := actualizado.Time
			p.ActualizadoEn = &t
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
