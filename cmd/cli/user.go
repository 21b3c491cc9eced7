package main

import (
	"fmt"

	"motoboy/internal/logger"
	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/service"

	"github.com/spf13/cobra"
)

func createUserCmd() *cobra.Command {
	var req service.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a back-office account",
		Long: `Create a back-office account.

Roles:
  admin       manages users, endpoints and supervisors
  supervisor  approves, rejects and resets requests
  operador    registers requests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			users := service.NewUserService(repository.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.L())
			user, err := users.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (min 6 characters)")
	cmd.Flags().StringVar(&req.Role, "role", model.RoleOperator, "admin, supervisor or operador")
	cmd.Flags().StringVar(&req.Email, "email", "", "Optional e-mail")
	cmd.Flags().StringVar(&req.SupervisorCodigo, "supervisor", "", "Supervisor code linked to the account")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
