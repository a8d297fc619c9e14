package auth

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/joho/godotenv"
)

const (
	EnvAccessToken  = "FYERS_ACCESS_TOKEN"
	EnvRefreshToken = "FYERS_REFRESH_TOKEN"
)

// TokenPersister stores a token pair somewhere durable.
type TokenPersister interface {
	Persist(pair models.MTokenPair) error
}

// TokenFile upserts the two token keys of a KEY=value env file and leaves
// every other line untouched.
type TokenFile struct {
	Path string
	mu   sync.Mutex
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{Path: path}
}

// -----------------------------------------------------------------------------

// Load reads the current tokens back from the file.
func (f *TokenFile) Load() (models.MTokenPair, error) {
	values, err := godotenv.Read(f.Path)
	if err != nil {
		return models.MTokenPair{}, err
	}
	return models.MTokenPair{
		AccessToken:  values[EnvAccessToken],
		RefreshToken: values[EnvRefreshToken],
	}, nil
}

// -----------------------------------------------------------------------------

// Persist writes the non-empty members of pair.
func (f *TokenFile) Persist(pair models.MTokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	mode := fs.FileMode(0600)
	var lines []string
	data, err := os.ReadFile(f.Path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(f.Path); statErr == nil {
			mode = info.Mode().Perm()
		}
		content := string(data)
		content = strings.TrimSuffix(content, "\n")
		if content != "" {
			lines = strings.Split(content, "\n")
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return helpers.NewPersistenceError("failed to read token file "+f.Path, err)
	}

	if pair.AccessToken != "" {
		lines = upsertLine(lines, EnvAccessToken, pair.AccessToken)
	}
	if pair.RefreshToken != "" {
		lines = upsertLine(lines, EnvRefreshToken, pair.RefreshToken)
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(f.Path, []byte(out), mode); err != nil {
		return helpers.NewPersistenceError("failed to write token file "+f.Path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func upsertLine(lines []string, key, value string) []string {
	re := regexp.MustCompile(`^\s*(export\s+)?` + regexp.QuoteMeta(key) + `\s*=`)
	entry := key + "=" + value
	for i, line := range lines {
		if re.MatchString(strings.TrimSuffix(line, "\r")) {
			lines[i] = entry
			return lines
		}
	}
	return append(lines, entry)
}
