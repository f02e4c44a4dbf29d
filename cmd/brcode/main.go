package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/PugTools/divinatory-agenda/pkg/brcode"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "brcode",
		Short:         "Build and inspect PIX BR Code payloads offline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(encodeCmd())
	root.AddCommand(crcCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(decodeCmd())
	return root
}

func encodeCmd() *cobra.Command {
	var key, name, city, amount, reference string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a static payload for a recipient key and amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			enc, err := brcode.NewEncoder(brcode.DefaultOptions())
			if err != nil {
				return err
			}
			payload, err := enc.Encode(brcode.Payload{Key: key, Name: name, City: city, Amount: value, ReferenceID: reference})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Recipient pix key")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Recipient label")
	cmd.Flags().StringVarP(&city, "city", "c", "BRASIL", "Merchant city")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 150.00")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Reference id")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func crcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crc [data]",
		Short: "Print the CRC-16/CCITT-FALSE of data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), brcode.CRC16(args[0]))
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [payload]",
		Short: "Check the checksum and layout of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := brcode.Verify(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [payload]",
		Short: "Print the fields of a payload, expanding nested templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := brcode.Decode(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fields {
				fmt.Fprintf(out, "%s %02d %s\n", f.Tag, len(f.Value), f.Value)
				if f.Tag != brcode.TagMerchantAccount && f.Tag != brcode.TagAdditionalData {
					continue
				}
				nested, err := brcode.Decode(f.Value)
				if err != nil {
					continue
				}
				for _, n := range nested {
					fmt.Fprintf(out, "  %s %02d %s\n", n.Tag, len(n.Value), n.Value)
				}
			}
			return nil
		},
	}
}
