package config

import (
	"errors"
	"fmt"
	"os"
)

const template = `# IdleMMO client configuration

# Required unless USE_ROTATING_TOKENS=true
API_KEY=

# Identification sent as "<name>/<version> (Contact: <email>)"
APPLICATION_NAME=
APPLICATION_VERSION=
CONTACT_EMAIL=

# Rotate between the tokens listed in TOKEN_FILE, one per line
USE_ROTATING_TOKENS=false
TOKEN_FILE=idlemmo-tokens.txt

# Optional
#BASE_URL=https://api.idle-mmo.com/v1
#REQUESTS_PER_SECOND=0
#REDIS_URL=redis://localhost:6379/0
#CACHE_TTL=5m
#JOURNAL_PATH=idlemmo-journal.db
#LOG_LEVEL=info
#LOG_PRETTY=false
`

// WriteTemplate writes an empty configuration file to path. An existing file
// is only replaced when overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists", path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteString(template); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
