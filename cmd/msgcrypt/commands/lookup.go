package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/gateway"
)

func lookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up identities and public keys",
	}
	cmd.AddCommand(lookupPubkeyCmd(a), lookupIDCmd(a))
	return cmd
}

func lookupPubkeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey <identity>",
		Short: "Fetch the public key of an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := crypto.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			gw, err := a.factory.CreateGatewayClient()
			if err != nil {
				return err
			}
			key, err := gw.LookupPublicKey(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key[:]))
			return nil
		},
	}
}

func lookupIDCmd(a *app) *cobra.Command {
	var phone, phoneHash, email, emailHash string
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Find the identity linked to a phone number or e-mail address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var criteria []gateway.LookupCriterion
			for kind, value := range map[gateway.LookupKind]string{
				gateway.LookupPhone:     phone,
				gateway.LookupPhoneHash: phoneHash,
				gateway.LookupEmail:     email,
				gateway.LookupEmailHash: emailHash,
			} {
				if value != "" {
					criteria = append(criteria, gateway.LookupCriterion{Kind: kind, Value: value})
				}
			}
			if len(criteria) != 1 {
				return fmt.Errorf("exactly one of --phone, --phone-hash, --email or --email-hash is required")
			}

			gw, err := a.factory.CreateGatewayClient()
			if err != nil {
				return err
			}
			id, err := gw.LookupID(cmd.Context(), criteria[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number (E.164, no leading +)")
	cmd.Flags().StringVar(&phoneHash, "phone-hash", "", "hex phone number hash")
	cmd.Flags().StringVar(&email, "email", "", "e-mail address")
	cmd.Flags().StringVar(&emailHash, "email-hash", "", "hex e-mail address hash")
	return cmd
}

func creditsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "Show the remaining gateway credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.factory.CreateGatewayClient()
			if err != nil {
				return err
			}
			n, err := gw.Credits(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
