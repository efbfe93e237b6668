package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rdb/internal/server/models"
)

func newSubmitCmd(o *options) *cobra.Command {
	var (
		file        string
		secretStdin bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a mod described by a JSON file",
		Long: `Submit a mod described by a JSON file with the fields name, owner, version,
description, homepage, icon, binaries and optionally secret.

When the file has no secret it is read from stdin (--secret-stdin) or
prompted for without echo.

Examples:
  rdbctl submit --file mod.json
  echo "$RDB_SECRET" | rdbctl submit --file mod.json --secret-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			var sub models.Submission
			if err := json.Unmarshal(data, &sub); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			switch {
			case secretStdin:
				if sub.Secret, err = readLine(o.in); err != nil {
					return fmt.Errorf("read secret: %w", err)
				}
			case strings.TrimSpace(sub.Secret) == "":
				pw, err := GetPassword(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read secret: %w", err)
				}
				sub.Secret = string(pw)
			}

			msg, err := o.client().Submit(cmd.Context(), sub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the submission JSON")
	cmd.Flags().BoolVar(&secretStdin, "secret-stdin", false, "read the secret from the first line of stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
