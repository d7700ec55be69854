package config

import (
	"fmt"
	"math"
	"os"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/hellsmelody/geom"
	"github.com/robmorgan/hellsmelody/rhythm"
	"github.com/robmorgan/hellsmelody/timing"
	"gopkg.in/yaml.v3"
)

// GameConfig represents options that configure a run of the game
type GameConfig struct {
	Timing   timing.Windows `yaml:"timing"`
	Approach ApproachConfig `yaml:"approach"`

	// LeadIn is the silence before song time zero, in seconds
	LeadIn float64 `yaml:"lead_in"`
	// RestartLeadIn is the lead-in used when a run is retried
	RestartLeadIn float64 `yaml:"restart_lead_in"`
	// LatencyOffset is added to every clock read, bounded to ±0.2s
	LatencyOffset float64 `yaml:"latency_offset"`

	Stage    StageConfig    `yaml:"stage"`
	Clash    ClashConfig    `yaml:"clash"`
	Volley   VolleyConfig   `yaml:"volley"`
	Despawn  DespawnConfig  `yaml:"despawn"`
	Pool     PoolConfig     `yaml:"pool"`
	Health   HealthConfig   `yaml:"health"`
	Autoplay AutoplayConfig `yaml:"autoplay"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ApproachConfig describes how notes travel toward the hit line. Notes move from right to left.
type ApproachConfig struct {
	UnitsPerSecond float64 `yaml:"units_per_second"`
	// ApproachTime is how long a note is visible before its target time
	ApproachTime float64 `yaml:"approach_time"`
	HitX         float64 `yaml:"hit_x"`
	FieldLeft    float64 `yaml:"field_left"`
	FieldRight   float64 `yaml:"field_right"`
	SpawnPadding float64 `yaml:"spawn_padding"`
}

// StageConfig holds the world positions of the fight. Nil positions fall back to defaults.
type StageConfig struct {
	BossRest     geom.Vec  `yaml:"boss_rest"`
	BossMouth    *geom.Vec `yaml:"boss_mouth"`
	PlayerCenter *geom.Vec `yaml:"player_center"`
}

type ClashConfig struct {
	Windup             float64 `yaml:"windup"`
	PreStepDistance    float64 `yaml:"pre_step_distance"`
	LungeDistance      float64 `yaml:"lunge_distance"`
	LungeDuration      float64 `yaml:"lunge_duration"`
	LingerDuration     float64 `yaml:"linger_duration"`
	RetreatDuration    float64 `yaml:"retreat_duration"`
	RecoilDistance     float64 `yaml:"recoil_distance"`
	RecoilDuration     float64 `yaml:"recoil_duration"`
	RecoilReturnTime   float64 `yaml:"recoil_return_time"`
	ParryFollowThrough float64 `yaml:"parry_follow_through"`
	ParryFollowTime    float64 `yaml:"parry_follow_time"`
	ParryHitStop       float64 `yaml:"parry_hit_stop"`
}

type VolleyConfig struct {
	Count           int     `yaml:"count"`
	Interval        float64 `yaml:"interval"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
}

// DespawnConfig decides when judged entities leave the field.
type DespawnConfig struct {
	Instant bool    `yaml:"instant"`
	Grace   float64 `yaml:"grace"`
}

type PoolConfig struct {
	Initial int `yaml:"initial"`
}

type HealthConfig struct {
	Lives  int `yaml:"lives"`
	BossHP int `yaml:"boss_hp"`
}

// AutoplayConfig is the hit distribution of the autoplayer, in percent.
type AutoplayConfig struct {
	Perfect int     `yaml:"perfect"`
	Great   int     `yaml:"great"`
	Good    int     `yaml:"good"`
	Miss    int     `yaml:"miss"`
	Window  float64 `yaml:"window"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives log output while the terminal UI owns the screen; empty discards it
	File string `yaml:"file"`
}

// Create a new GameConfig object with reasonable defaults for real usage
func NewGameConfig() (*GameConfig, error) {
	return &GameConfig{
		Timing: timing.DefaultWindows(),
		Approach: ApproachConfig{
			UnitsPerSecond: 6,
			ApproachTime:   1.1,
			HitX:           -4,
			FieldLeft:      -8,
			FieldRight:     8,
			SpawnPadding:   1,
		},
		LeadIn:        1.0,
		RestartLeadIn: 0.8,
		Stage: StageConfig{
			BossRest:     geom.Vec{X: 6, Y: 0},
			BossMouth:    &geom.Vec{X: 5.5, Y: 0.5},
			PlayerCenter: &geom.Vec{X: -4, Y: 0},
		},
		Clash: ClashConfig{
			Windup:             1.2,
			PreStepDistance:    0.2,
			LungeDistance:      1.5,
			LungeDuration:      0.12,
			LingerDuration:     0.1,
			RetreatDuration:    0.2,
			RecoilDistance:     0.6,
			RecoilDuration:     0.15,
			RecoilReturnTime:   0.2,
			ParryFollowThrough: 0.35,
			ParryFollowTime:    0.08,
			ParryHitStop:       0.06,
		},
		Volley: VolleyConfig{
			Count:           3,
			Interval:        0.3,
			ProjectileSpeed: 7,
		},
		Despawn: DespawnConfig{
			Grace: 0.55,
		},
		Pool: PoolConfig{
			Initial: 64,
		},
		Health: HealthConfig{
			Lives:  3,
			BossHP: 8,
		},
		Autoplay: AutoplayConfig{
			Perfect: 60,
			Great:   25,
			Good:    10,
			Miss:    5,
			Window:  0.02,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}, nil
}

// LoadGameConfig reads a YAML file over the defaults. Keys missing from the file keep their default.
func LoadGameConfig(path string) (*GameConfig, error) {
	cfg, err := NewGameConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithStackTrace(fmt.Errorf("parsing %s: %w", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot start a run as a ConfigurationFault.
func (c *GameConfig) Validate() error {
	if err := c.Timing.Validate(); err != nil {
		return Fault("timing", err.Error())
	}
	if c.Approach.UnitsPerSecond <= 0 {
		return Fault("approach.units_per_second", "must be positive")
	}
	if c.Approach.ApproachTime <= 0 {
		return Fault("approach.approach_time", "must be positive")
	}
	if c.Approach.FieldLeft >= c.Approach.FieldRight {
		return Fault("approach", "field_left must be left of field_right")
	}
	if c.LeadIn < 0 || c.RestartLeadIn < 0 {
		return Fault("lead_in", "must not be negative")
	}
	if c.LatencyOffset < -rhythm.MaxLatencyOffset || c.LatencyOffset > rhythm.MaxLatencyOffset {
		return Fault("latency_offset", fmt.Sprintf("must be within ±%.1fs", rhythm.MaxLatencyOffset))
	}
	if c.Clash.Windup <= 0 || c.Clash.LungeDuration <= 0 {
		return Fault("clash", "windup and lunge_duration must be positive")
	}
	if c.Clash.ParryFollowThrough < 0 || c.Clash.ParryFollowThrough > 1 {
		return Fault("clash.parry_follow_through", "must be within [0, 1]")
	}
	if c.Volley.Count < 1 || c.Volley.Interval < 0 || c.Volley.ProjectileSpeed <= 0 {
		return Fault("volley", "count and projectile_speed must be positive, interval not negative")
	}
	if c.Pool.Initial < 0 {
		return Fault("pool.initial", "must not be negative")
	}
	if c.Health.Lives < 1 || c.Health.BossHP < 1 {
		return Fault("health", "lives and boss_hp must be at least 1")
	}
	a := c.Autoplay
	if a.Perfect < 0 || a.Great < 0 || a.Good < 0 || a.Miss < 0 || a.Perfect+a.Great+a.Good+a.Miss == 0 {
		return Fault("autoplay", "buckets must be non-negative and not all zero")
	}
	return nil
}

// DespawnGrace is the delay between a judgment and the release of its entity.
func (c *GameConfig) DespawnGrace() float64 {
	if c.Despawn.Instant {
		return 0
	}
	return c.Despawn.Grace
}

// EffectiveApproach widens, never narrows, the requested approach so a note spawned at its
// activation time starts outside the right edge of the field.
func (a ApproachConfig) EffectiveApproach(requested float64) float64 {
	approach := requested
	if approach <= 0 {
		approach = a.ApproachTime
	}
	speed := math.Max(math.Abs(a.UnitsPerSecond), minSpeed)
	minApproach := (math.Abs(a.FieldRight-a.HitX) + a.SpawnPadding) / speed
	return math.Max(approach, minApproach)
}

const minSpeed = 0.0001
