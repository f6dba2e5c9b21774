// Package scaffold writes a starter .blogflow/ directory.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/blogflow/internal/config"
	"github.com/jorge-barreto/blogflow/internal/ux"
)

var configTemplate = `name: my-blog

endpoints:
  discovery: https://api.example.com/keywords/discover
  clustering: https://api.example.com/keywords/cluster
  titles: https://api.example.com/content/titles
  outline: https://api.example.com/content/outline
  final_article: https://api.example.com/content/article

# Request bounds in seconds. Discovery defaults to 60, everything else to 300.
timeouts:
  discovery: 60
  final_article: 300

discovery:
  language: en
  country: us
  depth: 1
  limit: 100

retry:
  max: 2

breaker:
  max-failures: 5
  cooldown: 30

store:
  driver: sqlite3
  dsn: .blogflow/articles.db

log:
  level: info
  format: console
`

var envTemplate = `# Copy to .env and fill in. Real environment variables take precedence.
BLOGFLOW_USER_ID=
BLOGFLOW_SESSION_TOKEN=
BLOGFLOW_API_KEY=
# BLOGFLOW_STORE_DRIVER=postgres
# BLOGFLOW_STORE_DSN=postgres://blogflow@localhost/blogflow?sslmode=disable
`

// EnvExample is the file name of the environment template.
const EnvExample = ".env.example"

// Init creates a new .blogflow/ directory with an example config, and an
// environment template next to it unless one already exists.
func Init(targetDir string) error {
	dir := filepath.Join(targetDir, config.Dir)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%s directory already exists in %s", config.Dir, targetDir)
	}
	if err := os.MkdirAll(filepath.Join(dir, "artifacts"), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", config.Dir, err)
	}

	if err := os.WriteFile(config.Path(targetDir), []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", config.ConfigFile, err)
	}

	envCreated := false
	envPath := filepath.Join(targetDir, EnvExample)
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if err := os.WriteFile(envPath, []byte(envTemplate), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", EnvExample, err)
		}
		envCreated = true
	}

	fmt.Fprintf(ux.Out, "\n%s%s✓ Initialized %s/ directory%s\n\n", ux.Bold, ux.Green, config.Dir, ux.Reset)
	fmt.Fprintf(ux.Out, "  Created:\n")
	fmt.Fprintf(ux.Out, "    %s%s/%s%s    stage endpoints and settings\n", ux.Cyan, config.Dir, config.ConfigFile, ux.Reset)
	if envCreated {
		fmt.Fprintf(ux.Out, "    %s%s%s           credentials template\n", ux.Cyan, EnvExample, ux.Reset)
	}
	fmt.Fprintf(ux.Out, "\n  Next steps:\n")
	fmt.Fprintf(ux.Out, "    1. Point %sendpoints%s at your generation services\n", ux.Cyan, ux.Reset)
	fmt.Fprintf(ux.Out, "    2. Copy %s to %s and set your user id\n", EnvExample, config.EnvFile)
	fmt.Fprintf(ux.Out, "    3. Run %sblogflow run \"<keyword>\"%s\n\n", ux.Cyan, ux.Reset)
	return nil
}
