package internal

import "sync"

// UnknownSender is shown for senders that are not in the directory
const UnknownSender = "A User"

// Directory maps account ids to usernames. Entries are only ever added:
// a username seen once is kept for the lifetime of the process.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewDirectory creates an empty Directory
func NewDirectory() *Directory {
	return &Directory{
		accounts: make(map[string]Account),
	}
}

// Merge adds accounts whose id is not present yet. Existing entries are never overwritten.
func (d *Directory) Merge(accounts []Account) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := 0
	for _, account := range accounts {
		if account.ID == "" {
			continue
		}
		if _, ok := d.accounts[account.ID]; ok {
			continue
		}
		d.accounts[account.ID] = account
		added++
	}
	return added
}

// Lookup returns the username for id and whether it is known
func (d *Directory) Lookup(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.accounts[id]
	return account.Username, ok
}

// Resolve returns the username for id, or UnknownSender
func (d *Directory) Resolve(id string) string {
	if username, ok := d.Lookup(id); ok {
		return username
	}
	return UnknownSender
}

// Len returns the number of known accounts
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}
