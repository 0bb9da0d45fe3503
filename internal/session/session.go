// Package session supplies and persists the timetable session credential.
//
// The core pipeline never touches a specific storage mechanism; it sees only
// the Store interface. The default implementation keeps the token in a local
// .env file under the MYTIMETABLE_SESSION key, matching what the timetable
// site itself calls the cookie.
package session

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvKey is the key the session token is stored under.
const EnvKey = "MYTIMETABLE_SESSION"

// Store loads and saves the session token. An empty loaded token means no
// token has been persisted yet.
type Store interface {
	Load() (string, error)
	Save(token string) error
}

// EnvStore persists the session token in a dotenv file.
type EnvStore struct {
	path string
}

// NewEnvStore creates a store backed by the dotenv file at path.
func NewEnvStore(path string) *EnvStore {
	return &EnvStore{path: path}
}

// Path returns the dotenv file location, for user-facing messages.
func (s *EnvStore) Path() string {
	return s.path
}

// Load reads the persisted token. A missing file is not an error; it simply
// means nothing has been saved.
func (s *EnvStore) Load() (string, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", s.path, err)
	}
	return values[EnvKey], nil
}

// Save writes the token to the dotenv file, replacing any previous value.
func (s *EnvStore) Save(token string) error {
	if err := godotenv.Write(map[string]string{EnvKey: token}, s.path); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
