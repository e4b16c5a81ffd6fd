package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulokuong/airflow-run/models"
)

// Engine environment keys whose values double as container-side mount
// targets, so they must be present in the global env block.
const (
	EnvDagsFolder    = "AIRFLOW__CORE__DAGS_FOLDER"
	EnvBaseLogFolder = "AIRFLOW__CORE__BASE_LOG_FOLDER"
)

type checker struct {
	errs []error
}

func (c *checker) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.errs = append(c.errs, &ValidationError{Field: field, Message: "required"})
	}
}

func (c *checker) port(field string, v int) {
	if v <= 0 || v > 65535 {
		c.errs = append(c.errs, &ValidationError{Field: field, Message: fmt.Sprintf("invalid port %d", v)})
	}
}

// ValidateFor checks the fields the requested service actually needs.
// Problems in parts of the config the request never touches are not
// errors; dependency fields are checked later, by environment resolution.
func ValidateFor(cfg *models.ClusterConfig, service models.Service) error {
	c := &checker{}

	switch service {
	case models.ServicePostgreSQL:
		c.require("postgresql.name", cfg.PostgreSQL.Name)
		c.require("postgresql.image", cfg.PostgreSQL.Image)
		c.require("postgresql.data", cfg.PostgreSQL.Data)
		c.port("postgresql.port", cfg.PostgreSQL.Port)

	case models.ServiceRabbitMQ:
		c.require("rabbitmq.name", cfg.RabbitMQ.Name)
		c.require("rabbitmq.image", cfg.RabbitMQ.Image)
		c.require("rabbitmq.home", cfg.RabbitMQ.Home)
		c.port("rabbitmq.port", cfg.RabbitMQ.Port)

	default:
		c.require("registry_url", cfg.RegistryURL)
		c.require("repository", cfg.Repository)
		c.require("tag", cfg.Tag)
		c.require("local_dir", cfg.LocalDir)
		c.require("env."+EnvDagsFolder, cfg.Env[EnvDagsFolder])
		c.require("env."+EnvBaseLogFolder, cfg.Env[EnvBaseLogFolder])

		for i, v := range cfg.CustomMountVolumes {
			c.require(fmt.Sprintf("custom_mount_volumes[%d].host_path", i), v.HostPath)
			c.require(fmt.Sprintf("custom_mount_volumes[%d].container_path", i), v.ContainerPath)
		}

		switch service {
		case models.ServiceWebserver:
			c.port("webserver_port", cfg.WebserverPort)
		case models.ServiceFlower:
			c.port("flower_port", cfg.FlowerPort)
		}
	}

	return errors.Join(c.errs...)
}

// ValidateBuild checks the fields an image build and push need. A private
// registry requires credentials before the build is even attempted.
func ValidateBuild(cfg *models.ClusterConfig) error {
	c := &checker{}
	c.require("registry_url", cfg.RegistryURL)
	c.require("repository", cfg.Repository)
	c.require("image", cfg.Image)
	c.require("tag", cfg.Tag)
	if cfg.PrivateRegistry {
		c.require("username", cfg.Username)
		c.require("password", cfg.Password)
	}
	return errors.Join(c.errs...)
}
