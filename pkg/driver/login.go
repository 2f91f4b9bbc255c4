package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/storyloom/storyloom/pkg/accounts"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/savegame"
	"github.com/storyloom/storyloom/pkg/world"
)

const loginAttempts = 3

// exitCodeSaveMismatch is the process exit code for an unloadable
// savegame.
const exitCodeSaveMismatch = 10

var connSeq atomic.Uint64

// NewConnection is the entry point I/O adapters call for a fresh
// transport. Single-user stories go straight into character creation;
// multi-user stories get the account login dialog. Until the dialog
// completes the session holds a placeholder player parked in Limbo, so
// a stalled login is reaped like any other lingering soul.
func (d *Driver) NewConnection(conn Connection) *Session {
	placeholder := world.NewPlayer(fmt.Sprintf("somebody-%d", connSeq.Add(1)), lang.Neuter, "elemental")
	placeholder.MoveTo(d.limbo, nil)
	s := d.Attach(placeholder, conn, nil)
	if d.Mode == ModeIF {
		d.startSinglePlayer(s)
	} else {
		s.Player.Tell(fmt.Sprintf("Welcome to %s.", d.Config.Name))
		d.StartDialog(s, d.loginNameDialog(s, loginAttempts))
	}
	return s
}

// promote swaps the placeholder for the real player. Output buffered
// on the placeholder carries over.
func (d *Driver) promote(s *Session, p *world.Player, acct *accounts.Account) {
	pending := s.Player.DrainOutput()
	d.mu.Lock()
	delete(d.sessions, s.Player.Name)
	old := s.Player
	s.Player = p
	s.Account = acct
	d.sessions[p.Name] = s
	d.mu.Unlock()
	old.Destroy()
	for _, msg := range pending {
		p.Tell(msg)
	}
}

// --- Single-user entry ---

// startSinglePlayer creates the player character, from config presets
// when the story names them, otherwise through the character builder.
func (d *Driver) startSinglePlayer(s *Session) {
	cfg := d.Config
	if cfg.PlayerName != "" {
		gender := lang.Neuter
		if cfg.PlayerGender != "" {
			gender, _ = lang.ParseGender(cfg.PlayerGender)
		}
		d.finishCharacter(d.context(s), s, characterSheet{
			Name:   cfg.PlayerName,
			Gender: gender,
			Race:   cfg.PlayerRace,
		})
		return
	}
	d.StartDialog(s, d.characterBuilderDialog(s))
}

// characterSheet is the result of the character builder.
type characterSheet struct {
	Name   string
	Gender lang.Gender
	Race   string
}

// characterBuilderDialog asks for name, gender and race, then confirms
// the lot.
func (d *Driver) characterBuilderDialog(s *Session) *Dialog {
	var sheet characterSheet
	var nameDlg *Dialog
	nameDlg = &Dialog{
		Prompt:   "What shall you be known as?",
		Validate: accounts.ValidateName,
		Resume: func(ctx *Context, answer string) (*Dialog, error) {
			sheet.Name = answer
			return &Dialog{
				Prompt: "What is your gender (m/f/n)?",
				Validate: func(answer string) error {
					_, err := lang.ParseGender(answer)
					return err
				},
				Resume: func(ctx *Context, answer string) (*Dialog, error) {
					sheet.Gender, _ = lang.ParseGender(answer)
					return &Dialog{
						Prompt: "What is your race (just press enter for human)?",
						Resume: func(ctx *Context, answer string) (*Dialog, error) {
							sheet.Race = answer
							if sheet.Race == "" {
								sheet.Race = "human"
							}
							adj := sheet.Gender.Adjective()
							prompt := fmt.Sprintf("You will be %s, %s %s %s. Is that correct?",
								lang.Capitalize(sheet.Name), lang.Article(adj), adj, sheet.Race)
							return YesNoDialog(prompt, func(ctx *Context, yes bool) (*Dialog, error) {
								if !yes {
									return nameDlg, nil
								}
								d.finishCharacter(ctx, s, sheet)
								return nil, nil
							}), nil
						},
					}, nil
				},
			}, nil
		},
	}
	return nameDlg
}

// finishCharacter turns a completed sheet into the playing character,
// offering to restore a saved game first when one exists.
func (d *Driver) finishCharacter(ctx *Context, s *Session, sheet characterSheet) {
	race := sheet.Race
	if race == "" {
		race = "human"
	}
	p := world.NewPlayer(sheet.Name, sheet.Gender, race)
	p.Money = d.Config.PlayerMoney
	d.promote(s, p, nil)
	d.Story.InitPlayer(p)

	if d.Config.SavegamesEnabled && d.hasSavegame() {
		d.StartDialog(s, YesNoDialog("There is a saved game. Do you want to load it?",
			func(ctx *Context, yes bool) (*Dialog, error) {
				if yes {
					if err := d.LoadSnapshot(p); err != nil {
						if errors.Is(err, savegame.ErrVersionMismatch) {
							p.Tell("This saved game was written by a different version and cannot be loaded.")
							d.Detach(s, false)
							d.Stop(exitCodeSaveMismatch)
							return nil, nil
						}
						p.Tell("The saved game could not be loaded. Starting over.")
						d.enterWorld(ctx, s, false)
						return nil, nil
					}
					if msg := d.Story.WelcomeSavegame(p); msg != "" {
						p.Tell(msg)
					}
					lookAround(ctx, p, true)
					return nil, nil
				}
				d.enterWorld(ctx, s, false)
				return nil, nil
			}))
		return
	}
	d.enterWorld(ctx, s, false)
}

func (d *Driver) hasSavegame() bool {
	_, err := os.Stat(d.savegamePath())
	return err == nil
}

// ReadMOTD returns the message of the day from the game directory.
// Empty when none is configured.
func (d *Driver) ReadMOTD() (string, error) {
	data, err := os.ReadFile(filepath.Join(d.SaveDir, "motd.txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// enterWorld places a freshly created player at the story's start
// location and greets them.
func (d *Driver) enterWorld(ctx *Context, s *Session, wizard bool) {
	p := s.Player
	start := d.Config.StartLocationPlayer
	if wizard && d.Config.StartLocationWizard != "" {
		start = d.Config.StartLocationWizard
	}
	loc, ok := d.FindLocation(start)
	if !ok {
		loc = d.limbo
	}
	p.MoveTo(loc, nil)
	loc.Broadcast(p.Title+" appears.", &p.Living)
	if msg := d.Story.Welcome(p); msg != "" {
		d.StartDialog(s, PressEnterDialog(msg, nil))
	}
	lookAround(ctx, p, false)
}

// --- Multi-user login ---

// loginNameDialog starts the account login conversation. Attempts are
// shared across the name and password steps; when they run out the
// connection is dropped.
func (d *Driver) loginNameDialog(s *Session, attempts int) *Dialog {
	return &Dialog{
		Prompt:   "Please type in your name.",
		Validate: accounts.ValidateName,
		Resume: func(ctx *Context, name string) (*Dialog, error) {
			if _, ok := d.Session(name); ok {
				s.Player.Tell("You are already connected elsewhere. Get off.")
				return d.loginNameDialog(s, attempts), nil
			}
			_, err := d.Accounts.Get(name)
			switch {
			case err == nil:
				return d.passwordDialog(s, name, attempts), nil
			case errors.Is(err, accounts.ErrUnknownAccount):
				return YesNoDialog("There is no account with that name. Do you want to create a new character?",
					func(ctx *Context, yes bool) (*Dialog, error) {
						if !yes {
							return d.loginNameDialog(s, attempts), nil
						}
						return d.newAccountDialog(s, name), nil
					}), nil
			default:
				return nil, err
			}
		},
	}
}

func (d *Driver) passwordDialog(s *Session, name string, attempts int) *Dialog {
	return &Dialog{
		Prompt: "Please type in your password.",
		NoEcho: true,
		Resume: func(ctx *Context, password string) (*Dialog, error) {
			if err := d.Accounts.ValidPassword(name, password); err != nil {
				attempts--
				if attempts <= 0 {
					s.Player.Tell("Too many failed attempts. Goodbye.")
					d.Detach(s, false)
					return nil, nil
				}
				s.Player.Tell(err.Error())
				return d.loginNameDialog(s, attempts), nil
			}
			acct, err := d.Accounts.Get(name)
			if err != nil {
				return nil, err
			}
			return nil, d.finishLogin(ctx, s, acct)
		},
	}
}

// newAccountDialog walks through password, email and gender, then
// creates the account and logs it in.
func (d *Driver) newAccountDialog(s *Session, name string) *Dialog {
	var password string
	return &Dialog{
		Prompt:   "Please type in the desired password.",
		NoEcho:   true,
		Validate: accounts.ValidatePassword,
		Resume: func(ctx *Context, answer string) (*Dialog, error) {
			password = answer
			return &Dialog{
				Prompt: "Please retype the password.",
				NoEcho: true,
				Resume: func(ctx *Context, again string) (*Dialog, error) {
					if again != password {
						s.Player.Tell("The passwords don't match.")
						return d.newAccountDialog(s, name), nil
					}
					return &Dialog{
						Prompt:   "Please type in your email address.",
						Validate: accounts.ValidateEmail,
						Resume: func(ctx *Context, email string) (*Dialog, error) {
							return &Dialog{
								Prompt: "What is the gender of your character (m/f/n)?",
								Validate: func(answer string) error {
									_, err := lang.ParseGender(answer)
									return err
								},
								Resume: func(ctx *Context, answer string) (*Dialog, error) {
									gender, _ := lang.ParseGender(answer)
									acct, err := d.Accounts.Create(name, password, email, gender, "human", world.Stats{}, nil)
									if err != nil {
										return nil, err
									}
									s.Player.Tell("Your account is ready. Welcome!")
									return nil, d.finishLogin(ctx, s, acct)
								},
							}, nil
						},
					}, nil
				},
			}, nil
		},
	}
}

// finishLogin builds the playing character from the account record and
// drops it into the world.
func (d *Driver) finishLogin(ctx *Context, s *Session, acct *accounts.Account) error {
	if err := d.Accounts.LoggedIn(acct.Name); err != nil {
		return err
	}
	p := world.NewPlayer(acct.Name, acct.Gender, acct.Race)
	p.Stats = acct.Stats
	for priv := range acct.Privileges {
		p.Privileges[priv] = true
	}
	d.promote(s, p, acct)
	if motd, err := d.ReadMOTD(); err == nil && motd != "" {
		p.Tell(motd)
	}
	d.Story.InitPlayer(p)
	d.enterWorld(ctx, s, p.IsWizard())
	return nil
}
