package mailbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/iksnae/dm-session/internal"
	"gopkg.in/yaml.v3"
)

// Seed describes accounts and threads to load into a mailbox
type Seed struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Threads  []SeedThread  `yaml:"threads"`
}

// SeedAccount is an account with a plaintext password
type SeedAccount struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SeedThread is a thread between usernames
type SeedThread struct {
	Title        string        `yaml:"title"`
	Participants []string      `yaml:"participants"`
	Messages     []SeedMessage `yaml:"messages"`
}

// SeedMessage is one item of a seeded thread. Kind defaults to text.
type SeedMessage struct {
	From  string    `yaml:"from"`
	Kind  string    `yaml:"kind,omitempty"`
	Text  string    `yaml:"text,omitempty"`
	Media string    `yaml:"media,omitempty"`
	At    time.Time `yaml:"at,omitempty"`
}

// SeedResult reports what ApplySeed created
type SeedResult struct {
	AccountsCreated int
	AccountsSkipped int
	Threads         int
	Messages        int
}

// LoadSeed reads a seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML and checks that thread members are declared
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for i, th := range seed.Threads {
		if len(th.Participants) == 0 {
			return nil, fmt.Errorf("thread %d (%q) has no participants", i, th.Title)
		}
		for _, m := range th.Messages {
			if !slices.Contains(th.Participants, m.From) {
				return nil, fmt.Errorf("thread %q: message from %q who is not a participant", th.Title, m.From)
			}
		}
	}
	return &seed, nil
}

// ApplySeed creates the seed's accounts and threads. Accounts that already
// exist are reused with their current password.
func (s *Store) ApplySeed(ctx context.Context, seed *Seed) (SeedResult, error) {
	var res SeedResult
	ids := make(map[string]string)

	for _, a := range seed.Accounts {
		acct, err := s.CreateAccount(ctx, a.Username, a.Password)
		if errors.Is(err, ErrAccountExists) {
			acct, err = s.AccountByUsername(ctx, a.Username)
			res.AccountsSkipped++
		} else if err == nil {
			res.AccountsCreated++
		}
		if err != nil {
			return res, err
		}
		ids[acct.Username] = acct.ID
	}

	for _, th := range seed.Threads {
		var members []string
		for _, name := range th.Participants {
			id, ok := ids[name]
			if !ok {
				acct, err := s.AccountByUsername(ctx, name)
				if err != nil {
					return res, fmt.Errorf("thread %q: %w", th.Title, err)
				}
				id = acct.ID
				ids[name] = id
			}
			members = append(members, id)
		}

		threadID, err := s.CreateThread(ctx, th.Title, members)
		if err != nil {
			return res, err
		}
		res.Threads++

		for _, m := range th.Messages {
			kind := internal.KindText
			if m.Kind != "" {
				kind = internal.MessageKind(m.Kind)
			}
			if _, err := s.PostMessage(ctx, threadID, ids[m.From], kind, m.Text, m.Media, m.At); err != nil {
				return res, err
			}
			res.Messages++
		}
	}

	internal.LogInfo("Seeded %d accounts, %d threads, %d messages", res.AccountsCreated, res.Threads, res.Messages)
	return res, nil
}
