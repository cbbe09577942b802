package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultServerURL = "http://localhost:8080"

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, statusCmd, profileCmd)
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileDeleteCmd, profileSelectCmd, profileShowCmd)

	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted for when omitted)")
	loginCmd.Flags().StringP("server", "s", defaultServerURL, "Server URL")
	loginCmd.Flags().String("name", fallbackProfileName, "Profile to store the session under")

	logoutCmd.Flags().Bool("keep-profile", false, "Revoke the token but keep the profile entry")

	profileCreateCmd.Flags().StringP("server", "s", "", "Server URL")
	profileCreateCmd.Flags().StringP("token", "t", "", "Access token")
	_ = profileCreateCmd.MarkFlagRequired("server")
	_ = profileCreateCmd.MarkFlagRequired("token")
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sessions and connection profiles",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session in a profile",
	Long: `Sign in with email and password. Missing credentials are prompted for.

The access and refresh tokens are stored in the profile. Logging into the same
server again keeps the profile's selected project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		profileName, _ := cmd.Flags().GetString("name")
		w := out(cmd)

		email, password, err := promptCredentials(cmd, w)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Authenticating with %s...\n", serverURL)
		result, err := NewAPIClient(serverURL, "").Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		profile := Profile{
			Name:         profileName,
			ServerURL:    serverURL,
			Email:        result.User.Email,
			Token:        result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
		}
		if prev, err := findProfile(profileName); err == nil && prev.ServerURL == serverURL {
			profile.ProjectID = prev.ProjectID
		}

		if err := AddProfile(profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		Success(w, "Successfully authenticated as %s", result.User.Email)
		Success(w, "Session saved to profile '%s'", profileName)
		return nil
	},
}

// promptCredentials fills in the email and password flags that were not given. The
// password is read without echo when stdin is a terminal.
func promptCredentials(cmd *cobra.Command, w io.Writer) (email, password string, err error) {
	email, _ = cmd.Flags().GetString("email")
	password, _ = cmd.Flags().GetString("password")
	reader := bufio.NewReader(cmd.InOrStdin())

	if email == "" {
		fmt.Fprint(w, "Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprint(w, "Password: ")
		if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
			raw, readErr := term.ReadPassword(fd)
			if readErr != nil {
				return "", "", fmt.Errorf("failed to read password: %w", readErr)
			}
			password = string(raw)
		} else {
			line, _ := reader.ReadString('\n')
			password = strings.TrimRight(line, "\r\n")
		}
		fmt.Fprintln(w)
	}

	switch {
	case email == "":
		return "", "", fmt.Errorf("email is required")
	case password == "":
		return "", "", fmt.Errorf("password is required")
	}
	return email, password, nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Revoke the session and remove its profile",
	Long: `Revoke the access token on the server, then remove the profile. With
--keep-profile only its tokens are cleared. Defaults to the current profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := profileFromArgs(args)
		if err != nil {
			return err
		}

		w := out(cmd)
		if profile.Token != "" {
			if err := NewAPIClient(profile.ServerURL, profile.Token).Logout(cmd.Context()); err != nil {
				Warning(w, "Server did not revoke the token: %v", err)
			}
		}

		if keep, _ := cmd.Flags().GetBool("keep-profile"); keep {
			profile.Token, profile.RefreshToken = "", ""
			if err := AddProfile(*profile); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			Success(w, "Logged out of profile '%s'", profile.Name)
			return nil
		}

		if err := RemoveProfile(profile.Name); err != nil {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
		Success(w, "Profile '%s' removed", profile.Name)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the current profile against its server",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := out(cmd)
		profile, err := GetCurrentProfile()
		if err != nil {
			fmt.Fprintln(w, "Status: Not authenticated")
			fmt.Fprintf(w, "Error: %v\n", err)
			return nil
		}

		client := NewAPIClientFromProfile(profile)
		if err := client.Health(cmd.Context()); err != nil {
			writeStatus(w, "Server unreachable", profile, err)
			return nil
		}

		user, err := client.Me(cmd.Context())
		if err != nil {
			writeStatus(w, "Token rejected", profile, err)
			return nil
		}

		writeStatus(w, "✓ Authenticated", profile, nil)
		fmt.Fprintf(w, "User ID: %s\n", user.UserID)
		return nil
	},
}

func writeStatus(w io.Writer, status string, profile *Profile, err error) {
	fmt.Fprintf(w, "Status: %s\n", status)
	writeProfile(w, profile, "")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

// writeProfile prints the non-secret fields of a profile.
func writeProfile(w io.Writer, profile *Profile, indent string) {
	fmt.Fprintf(w, "%sProfile: %s\n", indent, profile.Name)
	fmt.Fprintf(w, "%sServer: %s\n", indent, profile.ServerURL)
	if profile.Email != "" {
		fmt.Fprintf(w, "%sUser: %s\n", indent, profile.Email)
	}
	if profile.ProjectID != "" {
		fmt.Fprintf(w, "%sProject: %s\n", indent, profile.ProjectID)
	}
}

// findProfile returns the named profile from the config file.
func findProfile(name string) (*Profile, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	profile, err := config.lookup(name)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// profileFromArgs returns the profile named by the first argument, else the current one.
func profileFromArgs(args []string) (*Profile, error) {
	if len(args) > 0 {
		return findProfile(args[0])
	}
	return GetCurrentProfile()
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage connection profiles",
	Long:  `A profile is one server account with its tokens and selected project.`,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List profiles",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		w := out(cmd)
		names := config.names()
		if len(names) == 0 {
			fmt.Fprintln(w, "No profiles configured")
			return nil
		}

		fmt.Fprintln(w, "Available profiles:")
		for _, name := range names {
			marker := " "
			if name == config.DefaultProfile {
				marker = "*"
			}
			profile := config.Profiles[name]
			fmt.Fprintf(w, "%s %s\n", marker, name)
			writeProfile(w, &profile, "    ")
		}
		return nil
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a profile from an existing access token",
	Long:  `Create a profile from an existing access token. The token is checked against the server first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		token, _ := cmd.Flags().GetString("token")
		profile := Profile{Name: args[0], ServerURL: serverURL, Token: token}

		if err := ValidateProfile(&profile); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}

		user, err := NewAPIClient(profile.ServerURL, profile.Token).Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to connect to server: %w", err)
		}
		profile.Email = user.Email

		if err := AddProfile(profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		Success(out(cmd), "Profile '%s' created successfully", profile.Name)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Short:   "Delete a profile without contacting the server",
	Aliases: []string{"remove", "rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := RemoveProfile(args[0]); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		Success(out(cmd), "Profile '%s' deleted", args[0])
		return nil
	},
}

var profileSelectCmd = &cobra.Command{
	Use:     "select [name]",
	Short:   "Make a profile the default",
	Aliases: []string{"switch", "use"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := SetCurrentProfile(args[0]); err != nil {
			return fmt.Errorf("failed to select profile: %w", err)
		}
		Success(out(cmd), "Profile '%s' selected as default", args[0])
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile with its tokens masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := profileFromArgs(args)
		if err != nil {
			return err
		}

		w := out(cmd)
		writeProfile(w, profile, "")
		fmt.Fprintf(w, "Token: %s\n", maskToken(profile.Token))
		fmt.Fprintf(w, "Refresh token: %s\n", maskToken(profile.RefreshToken))
		return nil
	},
}
