// Package accounts is the SQLite-backed player account store: names,
// emails, salted password hashes, privilege sets and character stats.
package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/storyloom/storyloom/pkg/crypt"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

// ErrInvalidLogin is the single uninformative login failure. Name
// lookup failures and password mismatches are indistinguishable.
var ErrInvalidLogin = errors.New("Invalid name or password.")

// Account is one stored player account.
type Account struct {
	ID         int64
	Name       string
	Email      string
	PwHash     string
	PwSalt     string
	Created    time.Time
	LoggedIn   time.Time
	Banned     bool
	Privileges map[string]bool

	Gender lang.Gender
	Race   string
	Stats  world.Stats
}

// IsWizard reports whether the account carries the wizard privilege.
func (a *Account) IsWizard() bool { return a.Privileges["wizard"] }

const schema = `
CREATE TABLE IF NOT EXISTS account (
	id INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL UNIQUE,
	email VARCHAR NOT NULL,
	pw_hash VARCHAR NOT NULL,
	pw_salt VARCHAR NOT NULL,
	created TIMESTAMP NOT NULL,
	logged_in TIMESTAMP,
	banned BOOLEAN NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS privilege (
	id INTEGER PRIMARY KEY,
	account_fk INTEGER NOT NULL REFERENCES account(id) ON DELETE CASCADE,
	privilege VARCHAR NOT NULL,
	UNIQUE(account_fk, privilege)
);
CREATE TABLE IF NOT EXISTS charstat (
	id INTEGER PRIMARY KEY,
	account_fk INTEGER NOT NULL UNIQUE REFERENCES account(id) ON DELETE CASCADE,
	gender CHAR(1) NOT NULL,
	race VARCHAR NOT NULL,
	level INTEGER NOT NULL,
	xp INTEGER NOT NULL,
	hp INTEGER NOT NULL,
	ac INTEGER NOT NULL,
	maxhp_dice VARCHAR,
	attack_dice VARCHAR,
	agi INTEGER NOT NULL,
	cha INTEGER NOT NULL,
	intl INTEGER NOT NULL,
	lck INTEGER NOT NULL,
	spd INTEGER NOT NULL,
	sta INTEGER NOT NULL,
	str INTEGER NOT NULL,
	wis INTEGER NOT NULL,
	alignment INTEGER NOT NULL
);
`

// Store manages the accounts database connection.
type Store struct {
	db      *sql.DB
	mu      sync.Mutex
	path    string
	timeout time.Duration
}

// Open opens (or creates) the accounts database, sets WAL mode and a
// busy timeout, and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying accounts schema: %w", err)
	}
	return &Store{db: db, path: path, timeout: 5 * time.Second}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the filesystem path of the accounts database.
func (s *Store) Path() string { return s.path }

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get fetches one account by name with its privileges and stats.
func (s *Store) Get(name string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(strings.ToLower(name))
}

func (s *Store) getLocked(name string) (*Account, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	a := &Account{Privileges: map[string]bool{}}
	var loggedIn sql.NullTime
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, pw_hash, pw_salt, created, logged_in, banned
		 FROM account WHERE name=?`, name)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PwHash, &a.PwSalt,
		&a.Created, &loggedIn, &a.Banned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", name, ErrUnknownAccount)
	}
	if err != nil {
		return nil, fmt.Errorf("loading account %q: %w", name, err)
	}
	if loggedIn.Valid {
		a.LoggedIn = loggedIn.Time
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT privilege FROM privilege WHERE account_fk=?`, a.ID)
	if err != nil {
		return nil, fmt.Errorf("loading privileges for %q: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		a.Privileges[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var gender string
	row = s.db.QueryRowContext(ctx,
		`SELECT gender, race, level, xp, hp, ac, maxhp_dice, attack_dice,
		        agi, cha, intl, lck, spd, sta, str, wis, alignment
		 FROM charstat WHERE account_fk=?`, a.ID)
	err = row.Scan(&gender, &a.Race, &a.Stats.Level, &a.Stats.XP,
		&a.Stats.HP, &a.Stats.AC, &a.Stats.MaxHPDice, &a.Stats.AttackDice,
		&a.Stats.Agi, &a.Stats.Cha, &a.Stats.Int, &a.Stats.Lck,
		&a.Stats.Spd, &a.Stats.Sta, &a.Stats.Str, &a.Stats.Wis,
		&a.Stats.Alignment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading stats for %q: %w", name, err)
	}
	if gender != "" {
		a.Gender = lang.Gender(gender[0])
	}
	return a, nil
}

// ErrUnknownAccount marks a lookup for a name that does not exist.
var ErrUnknownAccount = errors.New("no such account")

// All lists every account, or only accounts holding the given
// privilege when it is non-empty.
func (s *Store) All(privilege string) ([]*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()

	query := `SELECT name FROM account ORDER BY name`
	args := []any{}
	if privilege != "" {
		query = `SELECT a.name FROM account a
			 JOIN privilege p ON p.account_fk = a.id
			 WHERE p.privilege=? ORDER BY a.name`
		args = append(args, privilege)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*Account, 0, len(names))
	for _, n := range names {
		a, err := s.getLocked(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Create validates and inserts a new account with its stats row and
// privileges. The password is stored as sha1(salt+password) hex.
func (s *Store) Create(name, password, email string, gender lang.Gender, race string, stats world.Stats, privileges map[string]bool) (*Account, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()

	salt := newSalt()
	created := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("creating account %q: %w", name, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO account (name, email, pw_hash, pw_salt, created, banned)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		name, email, HashPassword(password, salt), salt, created)
	if err != nil {
		return nil, fmt.Errorf("creating account %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO charstat (account_fk, gender, race, level, xp, hp, ac,
		        maxhp_dice, attack_dice, agi, cha, intl, lck, spd, sta, str, wis, alignment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, gender.String(), race, stats.Level, stats.XP, stats.HP, stats.AC,
		stats.MaxHPDice, stats.AttackDice, stats.Agi, stats.Cha, stats.Int,
		stats.Lck, stats.Spd, stats.Sta, stats.Str, stats.Wis, stats.Alignment)
	if err != nil {
		return nil, fmt.Errorf("creating stats for %q: %w", name, err)
	}
	for p := range privileges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO privilege (account_fk, privilege) VALUES (?, ?)`, id, p); err != nil {
			return nil, fmt.Errorf("granting %q to %q: %w", p, name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("creating account %q: %w", name, err)
	}
	return s.getLocked(name)
}

// ValidPassword checks the password for the named account. Any failure
// is reported as ErrInvalidLogin. Hashes produced by earlier releases
// (bcrypt, DES crypt) still verify and are rewritten to the current
// scheme on success.
func (s *Store) ValidPassword(name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getLocked(strings.ToLower(name))
	if err != nil {
		return ErrInvalidLogin
	}
	if a.Banned {
		return ErrInvalidLogin
	}
	switch {
	case a.PwHash == HashPassword(password, a.PwSalt):
		return nil
	case strings.HasPrefix(a.PwHash, "$2") &&
		bcrypt.CompareHashAndPassword([]byte(a.PwHash), []byte(password)) == nil:
		return s.rehashLocked(a, password)
	case len(a.PwHash) == 13 && crypt.CheckPassword(password, a.PwHash):
		return s.rehashLocked(a, password)
	}
	return ErrInvalidLogin
}

func (s *Store) rehashLocked(a *Account, password string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	salt := newSalt()
	_, err := s.db.ExecContext(ctx,
		`UPDATE account SET pw_hash=?, pw_salt=? WHERE id=?`,
		HashPassword(password, salt), salt, a.ID)
	if err != nil {
		return fmt.Errorf("rehashing password for %q: %w", a.Name, err)
	}
	return nil
}

// ChangePasswordEmail updates the password and/or email after
// verifying the old password. Empty arguments leave the field alone.
func (s *Store) ChangePasswordEmail(name, oldPassword, newPassword, newEmail string) error {
	if err := s.ValidPassword(name, oldPassword); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.getLocked(strings.ToLower(name))
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx()
	defer cancel()

	if newPassword != "" {
		if err := ValidatePassword(newPassword); err != nil {
			return err
		}
		salt := newSalt()
		if _, err := s.db.ExecContext(ctx,
			`UPDATE account SET pw_hash=?, pw_salt=? WHERE id=?`,
			HashPassword(newPassword, salt), salt, a.ID); err != nil {
			return fmt.Errorf("changing password for %q: %w", name, err)
		}
	}
	if newEmail != "" {
		if err := ValidateEmail(newEmail); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE account SET email=? WHERE id=?`, newEmail, a.ID); err != nil {
			return fmt.Errorf("changing email for %q: %w", name, err)
		}
	}
	return nil
}

// UpdatePrivileges replaces the account's privilege set. It reports
// whether the set actually changed; a changed set forces the affected
// player to reconnect.
func (s *Store) UpdatePrivileges(name string, privileges map[string]bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getLocked(strings.ToLower(name))
	if err != nil {
		return false, err
	}
	same := len(a.Privileges) == len(privileges)
	if same {
		for p := range privileges {
			if !a.Privileges[p] {
				same = false
				break
			}
		}
	}
	if same {
		return false, nil
	}

	ctx, cancel := s.ctx()
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("updating privileges for %q: %w", name, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM privilege WHERE account_fk=?`, a.ID); err != nil {
		return false, err
	}
	for p := range privileges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO privilege (account_fk, privilege) VALUES (?, ?)`, a.ID, p); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("updating privileges for %q: %w", name, err)
	}
	return true, nil
}

// Ban marks the account banned; banned accounts fail login.
func (s *Store) Ban(name string) error { return s.setBanned(name, true) }

// Unban clears the banned mark.
func (s *Store) Unban(name string) error { return s.setBanned(name, false) }

func (s *Store) setBanned(name string, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()
	res, err := s.db.ExecContext(ctx,
		`UPDATE account SET banned=? WHERE name=?`, banned, strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("setting ban for %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", name, ErrUnknownAccount)
	}
	return nil
}

// LoggedIn stamps the account's last-login time with now.
func (s *Store) LoggedIn(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()
	res, err := s.db.ExecContext(ctx,
		`UPDATE account SET logged_in=? WHERE name=?`, time.Now(), strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("stamping login for %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", name, ErrUnknownAccount)
	}
	return nil
}

// HashPassword is the canonical password hash: sha1(salt+password) in
// lowercase hex.
func HashPassword(password, salt string) string {
	sum := sha1.Sum([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// newSalt mixes the clock with random bytes.
func newSalt() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// rand failing leaves the time component only
		for i := range buf {
			buf[i] = 0
		}
	}
	return fmt.Sprintf("%x%s", time.Now().UnixNano(), hex.EncodeToString(buf))
}
