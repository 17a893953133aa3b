// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quillpress/internal/models"
	"quillpress/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

// newUserFlags holds the flags of `user add`.
var newUserFlags struct {
	username    string
	email       string
	password    string
	displayName string
	role        string
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Long: `Create an account. The password is read from --password or, when that
is empty, from the QUILLPRESS_PASSWORD environment variable.`,
	RunE: runUserAdd,
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&newUserFlags.username, "username", "", "login name (required)")
	f.StringVar(&newUserFlags.email, "email", "", "email address (required)")
	f.StringVar(&newUserFlags.password, "password", "", "initial password")
	f.StringVar(&newUserFlags.displayName, "display-name", "", "name shown on posts (defaults to the username)")
	f.StringVar(&newUserFlags.role, "role", string(models.RoleAuthor), "admin, editor, or author")
	userAddCmd.MarkFlagRequired("username") //nolint:errcheck // flag exists
	userAddCmd.MarkFlagRequired("email")    //nolint:errcheck // flag exists

	userCmd.AddCommand(userAddCmd)
}

// newUserFromFlags validates the flags and builds the account to create.
func newUserFromFlags(getenv func(string) string) (store.NewUser, error) {
	in := store.NewUser{
		Username:    strings.TrimSpace(newUserFlags.username),
		Email:       strings.TrimSpace(newUserFlags.email),
		Password:    newUserFlags.password,
		DisplayName: strings.TrimSpace(newUserFlags.displayName),
		Role:        models.Role(newUserFlags.role),
	}
	if in.Password == "" {
		in.Password = getenv("QUILLPRESS_PASSWORD")
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	switch {
	case in.Username == "":
		return in, fmt.Errorf("--username is required")
	case !strings.Contains(in.Email, "@"):
		return in, fmt.Errorf("--email must be an email address")
	case len(in.Password) < 8 || len(in.Password) > 72:
		return in, fmt.Errorf("password must be between 8 and 72 bytes")
	case !in.Role.Valid():
		return in, fmt.Errorf("--role must be admin, editor, or author, got %q", in.Role)
	}
	return in, nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	in, err := newUserFromFlags(os.Getenv)
	if err != nil {
		return err
	}

	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := store.NewUserStore(db).Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	slog.Info("user created", "id", u.ID, "username", u.Username, "role", u.Role)
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", u.Username, u.Role, u.ID)
	return nil
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account together with its posts and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users := store.NewUserStore(db)
		u, err := users.FindByUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := users.Delete(cmd.Context(), u.ID); err != nil {
			return err
		}
		slog.Info("user deleted", "id", u.ID, "username", u.Username)

		// The user's posts are gone and category counts changed.
		if err := flushResponses(cmd.Context(), cfg); err != nil {
			slog.Warn("response cache not flushed", "error", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", u.Username)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userDeleteCmd)
}
