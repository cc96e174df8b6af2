package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen      string      `koanf:"listen"`
	Database    Database    `koanf:"db"`
	Permissions Permissions `koanf:"permissions"`
}

// Database selects the provider store backend. Driver is "sqlite" or "postgres".
// Path is used by sqlite; the remaining fields by postgres.
type Database struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
}

// Permissions mirrors the host permission state the adapter is deployed with.
type Permissions struct {
	ReadGranted  bool `koanf:"readgranted"`
	WriteGranted bool `koanf:"writegranted"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8181",
		Database: Database{
			Driver: "sqlite",
			Path:   "calendar.db",
			Host:   "localhost",
			Port:   5432,
			User:   "calendar",
			Name:   "calendar",
		},
		Permissions: Permissions{
			ReadGranted:  true,
			WriteGranted: true,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.ProviderWithValue("MCE_", ".", func(k, v string) (string, interface{}) {
		k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "MCE_")), "_", ".")
		return k, v
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
