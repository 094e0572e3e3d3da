package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Production           bool
	JwtSecret            string
	DefaultAdminUsername string
	DefaultAdminPassword string
	GoogleMapsApiKey     string
	BackendEndpoint      string
	GeocodeURL           string
	DBPath               string
	LogLevel             string
	Tracking             TrackingConfig
}

// TrackingConfig agrupa las fuentes de posiciones del mapa en vivo
type TrackingConfig struct {
	PollInterval      time.Duration
	TeamPollInterval  time.Duration
	SocketInterval    time.Duration
	SimulatorInterval time.Duration
	FlushInterval     time.Duration
	PositionTTL       time.Duration
	ReconnectDelay    time.Duration
	SocketURL         string
	SocketVehicleID   string
	DemoVehicles      []DemoVehicle
}

// DemoVehicle es un vehículo simulado con su posición de partida
type DemoVehicle struct {
	ID  string  `mapstructure:"id"`
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("production", false)
	v.SetDefault("jwt_secret", "super_secret_default_jwt_secret")
	v.SetDefault("default_admin_username", "admin")
	v.SetDefault("default_admin_password", "admin")
	v.SetDefault("google_maps_api_key", "")
	v.SetDefault("backend_endpoint", "")
	v.SetDefault("geocode_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("db_path", "db/database.db")
	v.SetDefault("log_level", "info")

	v.SetDefault("tracking.poll_interval", 5*time.Second)
	v.SetDefault("tracking.team_poll_interval", 10*time.Second)
	v.SetDefault("tracking.socket_interval", 5*time.Second)
	v.SetDefault("tracking.simulator_interval", 5*time.Second)
	v.SetDefault("tracking.flush_interval", 30*time.Second)
	v.SetDefault("tracking.position_ttl", 30*time.Minute)
	v.SetDefault("tracking.reconnect_delay", 5*time.Second)
	v.SetDefault("tracking.socket_url", "")
	v.SetDefault("tracking.socket_vehicle_id", "")
}

// Load lee el .env (si existe), las variables de entorno y opcionalmente un
// archivo YAML. Las variables de entorno tienen prioridad sobre el archivo.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error cargando el archivo .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error leyendo %s: %w", file, err)
		}
		log.Info("Configuración cargada desde ", file)
	}

	cfg := Config{
		Port:                 v.GetString("port"),
		Production:           v.GetBool("production"),
		JwtSecret:            v.GetString("jwt_secret"),
		DefaultAdminUsername: v.GetString("default_admin_username"),
		DefaultAdminPassword: v.GetString("default_admin_password"),
		GoogleMapsApiKey:     v.GetString("google_maps_api_key"),
		BackendEndpoint:      strings.TrimRight(v.GetString("backend_endpoint"), "/"),
		GeocodeURL:           v.GetString("geocode_url"),
		DBPath:               v.GetString("db_path"),
		LogLevel:             v.GetString("log_level"),
		Tracking: TrackingConfig{
			PollInterval:      v.GetDuration("tracking.poll_interval"),
			TeamPollInterval:  v.GetDuration("tracking.team_poll_interval"),
			SocketInterval:    v.GetDuration("tracking.socket_interval"),
			SimulatorInterval: v.GetDuration("tracking.simulator_interval"),
			FlushInterval:     v.GetDuration("tracking.flush_interval"),
			PositionTTL:       v.GetDuration("tracking.position_ttl"),
			ReconnectDelay:    v.GetDuration("tracking.reconnect_delay"),
			SocketURL:         v.GetString("tracking.socket_url"),
			SocketVehicleID:   v.GetString("tracking.socket_vehicle_id"),
		},
	}

	if err := v.UnmarshalKey("tracking.demo_vehicles", &cfg.Tracking.DemoVehicles); err != nil {
		return Config{}, fmt.Errorf("tracking.demo_vehicles inválido: %w", err)
	}

	return cfg, nil
}
