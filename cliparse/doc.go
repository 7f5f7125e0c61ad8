// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: record store connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ChangefeedURL: Redis URL for change notifications (required)
  - AdminUsername, AdminPassword: admin login (default: admin / admin6108)
  - RefreshInterval: live view full refresh period (default: 30s)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-changefeed      Change feed URL
	-admin-user      Admin username
	-admin-password  Admin password
	-refresh         Refresh interval
	-env             dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables, which may come from the dotenv
file. Variables already set in the process environment are not overridden
by the file.

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	CHANGEFEED_URL   → -changefeed
	ADMIN_USERNAME   → -admin-user
	ADMIN_PASSWORD   → -admin-password
	REFRESH_INTERVAL → -refresh

# Validation

Missing or malformed values return an *apperr.ConfigError naming the key.
DATABASE_URL and CHANGEFEED_URL must both be provided.
*/
package cliparse
