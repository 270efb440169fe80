package commands

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/nsheremet/zkpauth/internal/group"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Prove knowledge of the identity's secret and obtain a session token",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	if username == "" {
		return fmt.Errorf("--username is required")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	params := group.Standard
	x := deriveSecret(params, username, password)

	k, err := cryptoRandScalar(params.Q)
	if err != nil {
		return fmt.Errorf("zkpauthctl: failed to sample commitment: %w", err)
	}
	r1 := params.ModExp(params.Alpha, k)
	r2 := params.ModExp(params.Beta, k)

	client := newAPIClient(serverAddr)
	authID, c, err := client.createChallenge(username, r1, r2)
	if err != nil {
		return err
	}

	// s = (k - c*x) mod q
	s := new(big.Int).Mul(c, x)
	s.Sub(k, s)
	s.Mod(s, params.Q)

	token, err := client.verify(authID, s)
	if err != nil {
		return err
	}

	fmt.Printf("Authenticated as %q.\nSession token: %s\n", username, token)
	return nil
}
