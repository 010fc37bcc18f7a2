package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/gateway"
)

func sendCmd(a *app) *cobra.Command {
	var (
		key     keyFlags
		compose composeFlags
	)
	cmd := &cobra.Command{
		Use:   "send <identity>",
		Short: "Encrypt a message end to end and send it through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := crypto.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			kp, err := a.keyPair(key)
			if err != nil {
				return err
			}
			defer kp.Wipe()
			msg, err := compose.outgoing()
			if err != nil {
				return err
			}
			client, err := a.factory.CreateClient()
			if err != nil {
				return err
			}

			id, err := client.Send(cmd.Context(), to, msg, kp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	key.register(cmd, "sender")
	compose.register(cmd)
	return cmd
}

func sendSimpleCmd(a *app) *cobra.Command {
	var to, phone, email string
	cmd := &cobra.Command{
		Use:   "send-simple <text>",
		Short: "Send a text in basic mode, encrypted by the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recipient gateway.Recipient
			switch {
			case to != "" && phone == "" && email == "":
				id, err := crypto.ParseIdentity(to)
				if err != nil {
					return err
				}
				recipient = gateway.ToID(id)
			case phone != "" && to == "" && email == "":
				recipient = gateway.ToPhone(phone)
			case email != "" && to == "" && phone == "":
				recipient = gateway.ToEmail(email)
			default:
				return fmt.Errorf("exactly one of --to, --phone or --email is required")
			}

			gw, err := a.factory.CreateGatewayClient()
			if err != nil {
				return err
			}
			id, err := gw.SendSimple(cmd.Context(), recipient, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient identity")
	cmd.Flags().StringVar(&phone, "phone", "", "recipient phone number (E.164)")
	cmd.Flags().StringVar(&email, "email", "", "recipient e-mail address")
	return cmd
}
