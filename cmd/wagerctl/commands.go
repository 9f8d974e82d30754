package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/reqsign"
	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pub, key, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "identity: %s\n", escrow.Identity(pub))
			fmt.Fprintf(out, "secret:   %s\n", reqsign.EncodePrivateKey(key))

			return nil
		},
	}
}

func deriveCmd() *cobra.Command {
	var (
		gameID uint64
		player string
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the game, vault and participant addresses of a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			game, gameBump, err := escrow.GameAddress(gameID)
			if err != nil {
				return err
			}

			vault, vaultBump, err := escrow.VaultAddress(gameID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "game:        %s (bump %d)\n", game, gameBump)
			fmt.Fprintf(out, "vault:       %s (bump %d)\n", vault, vaultBump)

			if player == "" {
				return nil
			}

			id, err := escrow.ParseIdentity(player)
			if err != nil {
				return err
			}

			entry, entryBump, err := escrow.ParticipantAddress(game, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "participant: %s (bump %d)\n", entry, entryBump)

			return nil
		},
	}

	cmd.Flags().Uint64Var(&gameID, "game-id", 0, "game identifier")
	cmd.Flags().StringVar(&player, "player", "", "participant identity (base58)")
	_ = cmd.MarkFlagRequired("game-id")

	return cmd
}

func signCmd() *cobra.Command {
	var (
		secret, method, path, bodyFile string
		at                             int64
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature headers for an API request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := reqsign.DecodePrivateKey(secret)
			if err != nil {
				return err
			}

			var body []byte

			switch bodyFile {
			case "":
			case "-":
				body, err = io.ReadAll(cmd.InOrStdin())
			default:
				body, err = os.ReadFile(bodyFile)
			}

			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			when := time.Now()
			if at != 0 {
				when = time.Unix(at, 0)
			}

			h := reqsign.Sign(key, method, path, when, body)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", reqsign.HeaderIdentity, h.Identity)
			fmt.Fprintf(out, "%s: %s\n", reqsign.HeaderTimestamp, h.Timestamp)
			fmt.Fprintf(out, "%s: %s\n", reqsign.HeaderSignature, h.Signature)

			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "key", os.Getenv("WAGER_SECRET_KEY"), "base58 secret key (defaults to $WAGER_SECRET_KEY)")
	cmd.Flags().StringVar(&method, "method", "POST", "HTTP method")
	cmd.Flags().StringVar(&path, "path", "", "request path, e.g. /games/1/join")
	cmd.Flags().StringVar(&bodyFile, "body", "", "file holding the request body, - for stdin")
	cmd.Flags().Int64Var(&at, "timestamp", 0, "unix timestamp to sign at (default now)")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
