package driver

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storyloom/storyloom/pkg/lang"
)

// Mode is the server interaction mode.
type Mode string

const (
	ModeIF  Mode = "if"  // single player, command paced
	ModeMUD Mode = "mud" // multi user, timer paced
)

// MoneyType selects the currency vocabulary of a story.
type MoneyType string

const (
	MoneyModern  MoneyType = "modern"
	MoneyFantasy MoneyType = "fantasy"
	MoneyNone    MoneyType = "none"
)

// TickMethod selects how the server tick is triggered.
type TickMethod string

const (
	TickCommand TickMethod = "command" // tick after each player command
	TickTimer   TickMethod = "timer"   // tick on a wall-clock interval
)

// StoryConfig holds a story's declared configuration.
type StoryConfig struct {
	// --- Identity ---
	Name           string `yaml:"name"`
	Author         string `yaml:"author"`
	AuthorAddress  string `yaml:"author_address"`
	Version        string `yaml:"version"`
	RequiresEngine string `yaml:"requires_engine"`

	// --- Modes ---
	SupportedModes []Mode `yaml:"supported_modes"`

	// --- The player character (IF mode presets; empty means ask) ---
	PlayerName   string  `yaml:"player_name"`
	PlayerGender string  `yaml:"player_gender"`
	PlayerRace   string  `yaml:"player_race"`
	PlayerMoney  float64 `yaml:"player_money"`

	MoneyType MoneyType `yaml:"money_type"`

	// --- Clock ---
	ServerTickMethod   TickMethod `yaml:"server_tick_method"`
	ServerTickTime     float64    `yaml:"server_tick_time"` // seconds
	GametimeToRealtime int        `yaml:"gametime_to_realtime"`
	MaxWaitHours       int        `yaml:"max_wait_hours"`
	DisplayGametime    bool       `yaml:"display_gametime"`
	Epoch              time.Time  `yaml:"epoch"`

	// --- World entry points ---
	StartLocationPlayer string `yaml:"startlocation_player"`
	StartLocationWizard string `yaml:"startlocation_wizard"`

	// --- Features ---
	SavegamesEnabled bool   `yaml:"savegames_enabled"`
	ShowExitsInLook  bool   `yaml:"show_exits_in_look"`
	LicenseFile      string `yaml:"license_file"`

	// --- MUD networking ---
	MudHost string `yaml:"mud_host"`
	MudPort int    `yaml:"mud_port"`
}

// DefaultStoryConfig returns a config with sensible defaults; a story
// overrides what it cares about.
func DefaultStoryConfig() *StoryConfig {
	return &StoryConfig{
		Version:            "1.0",
		SupportedModes:     []Mode{ModeIF},
		PlayerMoney:        0.0,
		MoneyType:          MoneyNone,
		ServerTickMethod:   TickCommand,
		ServerTickTime:     5.0,
		GametimeToRealtime: 1,
		MaxWaitHours:       2,
		DisplayGametime:    false,
		SavegamesEnabled:   true,
		ShowExitsInLook:    true,
		MudHost:            "localhost",
		MudPort:            8180,
	}
}

// LoadStoryConfig reads a YAML story config over the defaults.
func LoadStoryConfig(path string) (*StoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sc := DefaultStoryConfig()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the config for contradictions. Called once at
// startup; failures are fatal.
func (sc *StoryConfig) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("story config: name is required")
	}
	if len(sc.SupportedModes) == 0 {
		return fmt.Errorf("story config: at least one supported mode is required")
	}
	for _, m := range sc.SupportedModes {
		if m != ModeIF && m != ModeMUD {
			return fmt.Errorf("story config: unknown mode %q", m)
		}
	}
	switch sc.MoneyType {
	case MoneyModern, MoneyFantasy, MoneyNone:
	default:
		return fmt.Errorf("story config: unknown money_type %q", sc.MoneyType)
	}
	switch sc.ServerTickMethod {
	case TickCommand, TickTimer:
	default:
		return fmt.Errorf("story config: unknown server_tick_method %q", sc.ServerTickMethod)
	}
	if sc.ServerTickTime < 0.1 {
		return fmt.Errorf("story config: server_tick_time must be at least 0.1 seconds")
	}
	if sc.GametimeToRealtime < 0 {
		return fmt.Errorf("story config: gametime_to_realtime must not be negative")
	}
	if sc.MaxWaitHours < 0 {
		return fmt.Errorf("story config: max_wait_hours must not be negative")
	}
	if sc.PlayerGender != "" {
		if _, err := lang.ParseGender(sc.PlayerGender); err != nil {
			return fmt.Errorf("story config: %w", err)
		}
	}
	if sc.StartLocationPlayer == "" {
		return fmt.Errorf("story config: startlocation_player is required")
	}
	if sc.Supports(ModeMUD) && sc.MudPort <= 0 {
		return fmt.Errorf("story config: mud_port is required for mud mode")
	}
	return nil
}

// Supports reports whether the story supports the given mode.
func (sc *StoryConfig) Supports(mode Mode) bool {
	for _, m := range sc.SupportedModes {
		if m == mode {
			return true
		}
	}
	return false
}

// TickInterval returns the tick time as a duration.
func (sc *StoryConfig) TickInterval() time.Duration {
	return time.Duration(sc.ServerTickTime * float64(time.Second))
}

// MoneyName renders an amount in the story's currency vocabulary.
func (sc *StoryConfig) MoneyName(amount float64) string {
	switch sc.MoneyType {
	case MoneyModern:
		return fmt.Sprintf("$%.2f", amount)
	case MoneyFantasy:
		gold := int(amount)
		silver := int((amount - float64(gold)) * 10)
		return fmt.Sprintf("%d gold, %d silver", gold, silver)
	default:
		return "nothing"
	}
}
