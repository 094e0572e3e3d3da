package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flota-municipal-api/config"
	"flota-municipal-api/db"
	"flota-municipal-api/logger"
	"flota-municipal-api/models"
)

func usuariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usuarios",
		Short: "Administra los usuarios del panel",
	}

	var username, password, role string
	crear := &cobra.Command{
		Use:   "crear",
		Short: "Crea un usuario del panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cfg.Production)

			// Sin recrear tablas aunque no sea producción
			cfg.Production = true
			conn, err := db.InitDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.CreateUser(conn, username, password, role); err != nil {
				return fmt.Errorf("error creando el usuario %q: %w", username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Usuario %s creado con rol %s\n", username, role)
			return nil
		},
	}
	crear.Flags().StringVarP(&username, "username", "u", "", "nombre de usuario")
	crear.Flags().StringVarP(&password, "password", "p", "", "contraseña")
	crear.Flags().StringVarP(&role, "role", "r", models.RoleOperador, "rol: admin u operador")
	_ = crear.MarkFlagRequired("username")
	_ = crear.MarkFlagRequired("password")

	cmd.AddCommand(crear)
	return cmd
}
