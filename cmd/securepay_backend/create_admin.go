package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/spf13/cobra"
)

const adminPINEnv = "SECUREPAY_ADMIN_PIN"

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an active administrator account",
	Long: `Create an active administrator account. Administrators cannot register through
the public API. The PIN is read from --pin or, preferably, from ` + adminPINEnv + `.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().String("name", "", "Administrator name")
	createAdminCmd.Flags().String("email", "", "Administrator email")
	createAdminCmd.Flags().String("mobile", "", "Administrator mobile number")
	createAdminCmd.Flags().String("pin", "", "Administrator PIN (4 to 6 digits)")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("mobile")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	mobile, _ := cmd.Flags().GetString("mobile")
	pin, _ := cmd.Flags().GetString("pin")
	if pin == "" {
		pin = os.Getenv(adminPINEnv)
	}
	if pin == "" {
		return errors.New("a PIN is required via --pin or " + adminPINEnv)
	}

	repos, closeStore, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	container := services.NewServiceContainer(cfg, repos)
	account, err := container.Account.CreateAdmin(cmd.Context(), dto.CreateAdminRequest{
		Name:         name,
		Email:        email,
		MobileNumber: mobile,
		PIN:          pin,
	})
	if err != nil {
		return err
	}
	logger.Info("Administrator created", slog.String("account_id", account.AccountID), slog.String("email", account.Email))
	return nil
}
