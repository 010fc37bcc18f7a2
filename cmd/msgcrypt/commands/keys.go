package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/crypto"
)

func keygenCmd(a *app) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := crypto.GenerateKeyPair(nil)
			if err != nil {
				return err
			}
			defer kp.Wipe()
			out := cmd.OutOrStdout()

			if save != "" {
				ks, err := a.keyStore()
				if err != nil {
					return err
				}
				defer ks.Close()
				if err := ks.Save(save, kp); err != nil {
					return err
				}
				fmt.Fprintf(out, "saved:   %s\n", save)
			} else {
				fmt.Fprintf(out, "private: %s\n", hex.EncodeToString(kp.Private[:]))
			}
			fmt.Fprintf(out, "public:  %s\n", hex.EncodeToString(kp.Public[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "store the private key under this name instead of printing it")
	return cmd
}

func deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <private-key-hex>",
		Short: "Derive the public key of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := privateKey(args[0])
			if err != nil {
				return err
			}
			defer kp.Wipe()
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(kp.Public[:]))
			return nil
		},
	}
}
