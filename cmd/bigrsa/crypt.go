package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bigrsa/internal/primestore"
	"bigrsa/internal/rsakey"
)

func keyFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "key", "k", "", "key file (default from [key].file)")
}

func (s *session) keyPath(cmd *cobra.Command, flagValue string) string {
	if cmd.Flags().Changed("key") {
		return flagValue
	}
	return s.cfg.Resolve(s.cfg.Key.File)
}

func openStore(s *session) *primestore.File {
	return primestore.Open(s.cfg.Resolve(s.cfg.Prime.Store))
}

func newEncryptCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "encrypt <message>",
		Short: "Encrypt a message below the modulus with the public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			key, err := rsakey.LoadPublic(s.keyPath(cmd, keyPath))
			if err != nil {
				return err
			}
			m, err := s.operand("message", args[0])
			if err != nil {
				return err
			}
			done := s.phase("encrypt")
			c, err := key.Encrypt(m)
			done("")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)
			return nil
		},
	}
	keyFlag(cmd, &keyPath)
	return cmd
}

func newDecryptCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt a ciphertext with the private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			key, err := rsakey.Load(s.keyPath(cmd, keyPath))
			if err != nil {
				return err
			}
			c, err := s.operand("ciphertext", args[0])
			if err != nil {
				return err
			}
			done := s.phase("decrypt")
			m, err := key.Decrypt(c)
			done("")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
	keyFlag(cmd, &keyPath)
	return cmd
}

func newSignCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "sign <message>",
		Short: "Sign a message below the modulus with the private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			key, err := rsakey.Load(s.keyPath(cmd, keyPath))
			if err != nil {
				return err
			}
			m, err := s.operand("message", args[0])
			if err != nil {
				return err
			}
			done := s.phase("sign")
			sig, err := key.Sign(m)
			done("")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	keyFlag(cmd, &keyPath)
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "verify <message> <signature>",
		Short: "Check a signature with the public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			key, err := rsakey.LoadPublic(s.keyPath(cmd, keyPath))
			if err != nil {
				return err
			}
			vals, err := s.operands(args, "message", "signature")
			if err != nil {
				return err
			}
			done := s.phase("verify")
			err = key.Verify(vals[0], vals[1])
			done("")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), primeColor.Sprint("valid"))
			return nil
		},
	}
	keyFlag(cmd, &keyPath)
	return cmd
}
