// Package config provides preset and file-based configuration for the
// atmospherics simulation and optimizer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownConfig is returned when the argument is neither a known preset
// name nor a readable YAML file.
var ErrUnknownConfig = errors.New("config: unknown preset and unreadable file")

// presets are named server configurations applied on top of the embedded
// defaults. Update PresetNames if you add more.
var presets = map[string]string{
	// goob is just the defaults
	"goob": "",
	// Up to date as of 14.02.2026
	"wizden": `
tritium:
  fire_energy_released: 2840000
  burn_fuel_ratio: 2
`,
	// Up to date as of 14.02.2026
	"frontier": `
plasma:
  super_saturation_threshold: 30
  upper_temperature: 700
reactions:
  tritium_fire_temp: 700
`,
	// Identical to frontier but 10 liter tanks
	"monolith": `
plasma:
  super_saturation_threshold: 30
  upper_temperature: 700
reactions:
  tritium_fire_temp: 700
tank:
  volume: 10
`,
}

// Config holds all simulation and optimizer constants.
type Config struct {
	Atmosim      AtmosimConfig      `yaml:"atmosim"`
	Cvars        CvarsConfig        `yaml:"cvars"`
	Atmospherics AtmosphericsConfig `yaml:"atmospherics"`
	Plasma       PlasmaConfig       `yaml:"plasma"`
	Tritium      TritiumConfig      `yaml:"tritium"`
	Frezon       FrezonConfig       `yaml:"frezon"`
	N2O          N2OConfig          `yaml:"n2o"`
	Nitrium      NitriumConfig      `yaml:"nitrium"`
	Reactions    ReactionsConfig    `yaml:"reactions"`
	Canister     CanisterConfig     `yaml:"canister"`
	Tank         TankConfig         `yaml:"tank"`
	Misc         MiscConfig         `yaml:"misc"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// AtmosimConfig holds tool-level settings.
type AtmosimConfig struct {
	DefaultTolerance float64 `yaml:"default_tolerance"`
}

// CvarsConfig holds server cvars that scale the simulation.
type CvarsConfig struct {
	HeatScale float64 `yaml:"heat_scale"` // multiplier on all combustion energy releases
}

// AtmosphericsConfig holds physical constants.
type AtmosphericsConfig struct {
	R                   float64 `yaml:"r"` // J/(mol*K)
	OneAtmosphere       float64 `yaml:"one_atmosphere"`
	TCMB                float64 `yaml:"tcmb"`
	T0C                 float64 `yaml:"t0c"`
	T20C                float64 `yaml:"t20c"`
	MinimumHeatCapacity float64 `yaml:"minimum_heat_capacity"`
}

// PlasmaConfig holds plasma fire parameters.
type PlasmaConfig struct {
	FireEnergyReleased       float64 `yaml:"fire_energy_released"`
	SuperSaturationThreshold float64 `yaml:"super_saturation_threshold"`
	SuperSaturationEnds      float64 `yaml:"super_saturation_ends"` // 0 = threshold / 3
	OxygenBurnRateBase       float64 `yaml:"oxygen_burn_rate_base"`
	MinimumBurnTemperature   float64 `yaml:"minimum_burn_temperature"`
	UpperTemperature         float64 `yaml:"upper_temperature"`
	OxygenFullburn           float64 `yaml:"oxygen_fullburn"`
	BurnRateDelta            float64 `yaml:"burn_rate_delta"`
}

// TritiumConfig holds tritium fire parameters.
type TritiumConfig struct {
	FireEnergyReleased   float64 `yaml:"fire_energy_released"`
	MinimumOxyburnEnergy float64 `yaml:"minimum_oxyburn_energy"`
	BurnOxyFactor        float64 `yaml:"burn_oxy_factor"`
	BurnTritFactor       float64 `yaml:"burn_trit_factor"`
	BurnFuelRatio        float64 `yaml:"burn_fuel_ratio"`
}

// FrezonConfig holds frezon cooling and production parameters.
type FrezonConfig struct {
	CoolLowerTemperature             float64 `yaml:"cool_lower_temperature"`
	CoolMidTemperature               float64 `yaml:"cool_mid_temperature"`
	CoolMaximumEnergyModifier        float64 `yaml:"cool_maximum_energy_modifier"`
	NitrogenCoolRatio                float64 `yaml:"nitrogen_cool_ratio"`
	CoolEnergyReleased               float64 `yaml:"cool_energy_released"` // negative
	CoolRateModifier                 float64 `yaml:"cool_rate_modifier"`
	ProductionTemp                   float64 `yaml:"production_temp"`
	ProductionMaxEfficiencyTemperature float64 `yaml:"production_max_efficiency_temperature"`
	ProductionNitrogenRatio          float64 `yaml:"production_nitrogen_ratio"`
	ProductionTritRatio              float64 `yaml:"production_trit_ratio"`
	ProductionConversionRate         float64 `yaml:"production_conversion_rate"`
}

// N2OConfig holds nitrous oxide decomposition parameters.
type N2OConfig struct {
	DecompositionRate float64 `yaml:"decomposition_rate"`
}

// NitriumConfig holds nitrium decomposition parameters.
type NitriumConfig struct {
	DecompositionEnergy float64 `yaml:"decomposition_energy"`
}

// ReactionsConfig holds reaction trigger thresholds.
type ReactionsConfig struct {
	ReactionMinGas           float64 `yaml:"reaction_min_gas"`
	PlasmaFireTemp           float64 `yaml:"plasma_fire_temp"`
	TritiumFireTemp          float64 `yaml:"tritium_fire_temp"`
	FrezonCoolTemp           float64 `yaml:"frezon_cool_temp"`
	N2ODecompositionTemp     float64 `yaml:"n2o_decomposition_temp"`
	NitriumDecompositionTemp float64 `yaml:"nitrium_decomposition_temp"`
}

// CanisterConfig holds canister transfer parameters.
type CanisterConfig struct {
	TransferPressureCap    float64 `yaml:"transfer_pressure_cap"`
	RequiredTransferVolume float64 `yaml:"required_transfer_volume"`
}

// TankConfig holds gas tank thresholds.
type TankConfig struct {
	Volume           float64 `yaml:"volume"` // liters
	LeakPressure     float64 `yaml:"leak_pressure"`
	RupturePressure  float64 `yaml:"rupture_pressure"`
	FragmentPressure float64 `yaml:"fragment_pressure"`
	FragmentScale    float64 `yaml:"fragment_scale"`
	Integrity        int     `yaml:"integrity"`  // ticks above rupture pressure before venting
	LeakRatio        float64 `yaml:"leak_ratio"` // fraction lost per tick above leak pressure
}

// MiscConfig holds miscellaneous settings.
type MiscConfig struct {
	Tickrate float64 `yaml:"tickrate"`
}

// DerivedConfig holds values computed after loading. Combustion energies
// carry the heat-scale cvar so reactions never re-apply it. The heat scale
// covers combustion only: frezon cooling energy and the tritium oxyburn
// threshold are used as configured.
type DerivedConfig struct {
	PlasmaFireEnergy    float64 // Plasma.FireEnergyReleased * HeatScale
	TritiumFireEnergy   float64 // Tritium.FireEnergyReleased * HeatScale
	SuperSaturationEnds float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from a preset name or YAML file path.
// Must be called before Cfg().
func Init(nameOrPath string) error {
	cfg, err := Load(nameOrPath)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(nameOrPath string) {
	if err := Init(nameOrPath); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a preset name or a YAML file, merging over
// the embedded defaults. An empty string loads defaults only.
func Load(nameOrPath string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if nameOrPath != "" {
		overlay, ok := presets[nameOrPath]
		if !ok {
			data, err := os.ReadFile(nameOrPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownConfig, nameOrPath)
			}
			overlay = string(data)
		}
		// Unmarshal into the same struct - only overwrites fields present
		if err := yaml.Unmarshal([]byte(overlay), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", nameOrPath, err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// PresetNames lists the built-in preset names.
func PresetNames() []string {
	return []string{"goob", "wizden", "frontier", "monolith"}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	hs := c.Cvars.HeatScale
	c.Derived.PlasmaFireEnergy = c.Plasma.FireEnergyReleased * hs
	c.Derived.TritiumFireEnergy = c.Tritium.FireEnergyReleased * hs

	c.Derived.SuperSaturationEnds = c.Plasma.SuperSaturationEnds
	if c.Derived.SuperSaturationEnds == 0 {
		c.Derived.SuperSaturationEnds = c.Plasma.SuperSaturationThreshold / 3
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
