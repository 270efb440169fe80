package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nsheremet/zkpauth/internal/group"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new identity with the server",
	RunE:  runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	if username == "" {
		return fmt.Errorf("--username is required")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	params := group.Standard
	x := deriveSecret(params, username, password)
	y1 := params.ModExp(params.Alpha, x)
	y2 := params.ModExp(params.Beta, x)

	client := newAPIClient(serverAddr)
	if err := client.register(username, y1, y2); err != nil {
		return err
	}

	fmt.Printf("Registered %q.\n", username)
	return nil
}
