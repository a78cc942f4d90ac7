package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterConfig = `# embywatch configuration
#
# Values of the form ${VAR} are replaced from the environment at load
# time, which keeps secrets out of this file.

[log]
level = "info"

[state]
path = "./data/embywatch.db"

[catalog]
url = "${EMBY_SERVER_URL}"
api_key = "${EMBY_API_KEY}"

[poll]
interval = "15m"
concurrency = 4
# recent_window = "24h"   # only announce items added within this window

[tmdb]
api_key = "${TMDB_API_KEY}"
language = "en"
fallback_language = "en"

[trakt]
api_key = "${TRAKT_API_KEY}"

[telegram]
bot_token = "${TELEGRAM_BOT_TOKEN}"
chat_id = "${TELEGRAM_CHAT_ID}"
parse_mode = "Markdown"

[http]
timeout = "10s"
max_retries = 3
retry_delay = "500ms"
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := os.WriteFile(configPath, []byte(starterConfig), 0o600); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", configPath)
		fmt.Println("Set the referenced environment variables, then try 'embywatch run'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
