package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paulokuong/airflow-run/models"
)

func TestBuildArgs(t *testing.T) {
	op := models.BuildOperation{
		ContextDir: "/srv/airflow",
		Dockerfile: "/srv/airflow/Dockerfile",
		LocalRef:   "airflow-run:v1",
		ImageRef:   "registry.hub.docker.com/team/airflow-run:v1",
		BuildArgs: map[string]string{
			"AIRFLOW__CORE__SQL_ALCHEMY_CONN": "postgresql+psycopg2://u:p@db:5432/postgres",
			"AIRFLOW__CELERY__RESULT_BACKEND": "db+postgresql://u:p@db:5432/postgres",
			"AIRFLOW__CELERY__BROKER_URL":     "pyamqp://u:p@mq:5672//",
		},
	}

	got := buildArgs(op)
	want := []string{
		"build", "-t", "airflow-run:v1", "-f", "/srv/airflow/Dockerfile",
		"--build-arg", "AIRFLOW__CELERY__BROKER_URL=pyamqp://u:p@mq:5672//",
		"--build-arg", "AIRFLOW__CELERY__RESULT_BACKEND=db+postgresql://u:p@db:5432/postgres",
		"--build-arg", "AIRFLOW__CORE__SQL_ALCHEMY_CONN=postgresql+psycopg2://u:p@db:5432/postgres",
		"/srv/airflow",
	}
	assert.Equal(t, want, got)
}

func TestBuildArgs_NoBuildArgs(t *testing.T) {
	op := models.BuildOperation{
		ContextDir: "/srv/airflow",
		Dockerfile: "/srv/airflow/Dockerfile",
		LocalRef:   "airflow:dev",
	}

	assert.Equal(t, []string{
		"build", "-t", "airflow:dev", "-f", "/srv/airflow/Dockerfile", "/srv/airflow",
	}, buildArgs(op))
}

func TestTagArgs(t *testing.T) {
	op := models.BuildOperation{
		LocalRef: "airflow-run:v1",
		ImageRef: "registry.example.com/team/airflow-run:v1",
	}

	assert.Equal(t, []string{
		"tag", "airflow-run:v1", "registry.example.com/team/airflow-run:v1",
	}, tagArgs(op))
}

func TestLoginArgs_PasswordStaysOffArgv(t *testing.T) {
	op := models.BuildOperation{
		RegistryURL: "registry.example.com",
		Username:    "bot",
		Password:    "hunter2",
	}

	got := loginArgs(op)
	assert.Equal(t, []string{"login", "registry.example.com", "--username", "bot", "--password-stdin"}, got)
	assert.NotContains(t, got, "hunter2")
}
