package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tadweer/tadweer-site/pkg/suggestions"
)

// Settings keys; each can come from a flag or from its TDW_* environment variable.
const (
	keyAPIURL     = "api_url"
	keyAdminKey   = "admin_key"
	keyCache      = "cache"
	keyOwnerEmail = "owner_email"
)

// app carries the resolved settings to subcommands.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "tdwctl",
		Short: "Submit, track and review Tadweer suggestions",
		Long: `tdwctl talks to the Tadweer suggestions API.

Visitors can submit a suggestion and later track it by its TDW- code. Codes of
your own submissions are remembered locally, so tracking still answers when
the API is unreachable. Admin commands need the admin key.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "suggestions endpoint, e.g. https://tadweer.org/api/suggestions (env TDW_API_URL)")
	flags.String("admin-key", "", "admin key for list and set-status (env TDW_ADMIN_KEY)")
	flags.String("cache", "", "tracking history file (env TDW_CACHE, default ~/.tadweer/tracking.json)")
	flags.String("owner-email", "", "address for the email fallback (env TDW_OWNER_EMAIL)")

	for key, flag := range map[string]string{
		keyAPIURL:     "api-url",
		keyAdminKey:   "admin-key",
		keyCache:      "cache",
		keyOwnerEmail: "owner-email",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
	a.v.SetEnvPrefix("TDW")
	a.v.AutomaticEnv()

	root.AddCommand(
		newSubmitCmd(a),
		newTrackCmd(a),
		newHistoryCmd(a),
		newListCmd(a),
		newSetStatusCmd(a),
	)
	return root
}

// client returns nil when no API URL is configured.
func (a *app) client() *suggestions.Client {
	apiURL := a.v.GetString(keyAPIURL)
	if apiURL == "" {
		return nil
	}
	return suggestions.NewClient(apiURL, a.v.GetString(keyAdminKey))
}

func (a *app) adminClient() (*suggestions.Client, error) {
	client := a.client()
	if client == nil {
		return nil, fmt.Errorf("--api-url or TDW_API_URL is required")
	}
	if a.v.GetString(keyAdminKey) == "" {
		return nil, fmt.Errorf("--admin-key or TDW_ADMIN_KEY is required")
	}
	return client, nil
}

func (a *app) tracker() (*suggestions.Tracker, error) {
	path := a.v.GetString(keyCache)
	if path == "" {
		var err error
		if path, err = suggestions.DefaultCachePath(); err != nil {
			return nil, err
		}
	}
	cache := suggestions.NewTrackingCache(path)

	// A nil *Client must not become a non-nil interface
	var client suggestions.ClientInterface
	if c := a.client(); c != nil {
		client = c
	}
	return suggestions.NewTracker(client, cache, a.v.GetString(keyOwnerEmail)), nil
}
